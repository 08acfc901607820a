package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "marketdesk/internal/errors"
)

// BulletinHandler lists the newsletter bulletins that select active dates
type BulletinHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	documentsDir string
}

// NewBulletinHandler creates a new bulletin handler. Documents are served
// from documentsDir; an empty dir disables the document route.
func NewBulletinHandler(service DashboardServiceInterface, documentsDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BulletinHandler {
	return &BulletinHandler{
		service:      service,
		documentsDir: documentsDir,
		logger:       logger.With(slog.String("component", "bulletin_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the bulletin routes
func (h *BulletinHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListBulletins)
	r.Get("/{id}", h.GetBulletin)
	r.Get("/{id}/document", h.GetDocument)

	return r
}

// ListBulletins handles GET /api/v1/bulletins
func (h *BulletinHandler) ListBulletins(w http.ResponseWriter, r *http.Request) {
	list := h.service.Bulletins(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   list,
		"count":  len(list),
	})
}

// GetBulletin handles GET /api/v1/bulletins/{id}
func (h *BulletinHandler) GetBulletin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.service.Bulletin(r.Context(), id)
	if err != nil {
		h.logger.WarnContext(r.Context(), "bulletin lookup failed",
			slog.String("id", id),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, mapServiceError(r, err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   b,
	})
}
