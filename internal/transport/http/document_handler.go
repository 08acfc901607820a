package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "marketdesk/internal/errors"
)

// documentTypes are the rendered bulletin formats that may be served
var documentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".pdf":  "application/pdf",
	".md":   "text/markdown; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
}

// GetDocument handles GET /api/v1/bulletins/{id}/document. It serves the
// already rendered file named by the bulletin's path, relative to the
// manifest directory.
func (h *BulletinHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.service.Bulletin(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(r, err))
		return
	}
	if b.Path == "" || h.documentsDir == "" {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("document of bulletin "+id))
		return
	}

	rel := filepath.Clean(filepath.FromSlash(b.Path))
	if !filepath.IsLocal(rel) {
		h.logger.WarnContext(r.Context(), "bulletin path escapes documents directory",
			slog.String("id", id),
			slog.String("path", b.Path))
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "bulletin path must stay inside the documents directory"))
		return
	}

	contentType, ok := documentTypes[strings.ToLower(filepath.Ext(rel))]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "unsupported document type"))
		return
	}

	full := filepath.Join(h.documentsDir, rel)
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("document of bulletin "+id))
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("open bulletin document", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("stat bulletin document", err))
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
