package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/zstd"
)

// compressibleTypes are the response types worth compressing
var compressibleTypes = []string{
	"application/json",
	"application/problem+json",
	"text/html",
	"text/plain",
	"text/markdown",
	"text/csv",
}

// Compress encodes responses with zstd when the client accepts it and
// with chi's gzip/deflate compressor otherwise
func Compress(level int, logger *slog.Logger) func(next http.Handler) http.Handler {
	encoderLevel := zstd.EncoderLevelFromZstd(level)
	pool := &sync.Pool{
		New: func() interface{} {
			enc, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(encoderLevel),
				zstd.WithEncoderConcurrency(1))
			if err != nil {
				// Only invalid options fail
				panic(err)
			}
			return enc
		},
	}
	fallback := middleware.Compress(level, compressibleTypes...)

	return func(next http.Handler) http.Handler {
		gz := fallback(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsZstd(r.Header.Get("Accept-Encoding")) {
				gz.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			zw := &zstdResponseWriter{ResponseWriter: w, pool: pool}
			defer func() {
				if err := zw.close(); err != nil {
					logger.WarnContext(r.Context(), "zstd stream close failed",
						"path", r.URL.Path,
						"error", err.Error())
				}
			}()

			next.ServeHTTP(zw, r)
		})
	}
}

// acceptsZstd reports whether an Accept-Encoding header allows zstd
func acceptsZstd(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "zstd") {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
	}
	return false
}

func compressible(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	for _, t := range compressibleTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// zstdResponseWriter takes an encoder from the pool on the first body byte.
// Responses without a body or of incompressible types pass through.
type zstdResponseWriter struct {
	http.ResponseWriter
	pool        *sync.Pool
	enc         *zstd.Encoder
	wroteHeader bool
	passthrough bool
}

func (w *zstdResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	switch {
	case code < http.StatusOK, code == http.StatusNoContent, code == http.StatusNotModified:
		w.passthrough = true
	case h.Get("Content-Encoding") != "", h.Get("Content-Range") != "":
		w.passthrough = true
	case !compressible(h.Get("Content-Type")):
		w.passthrough = true
	default:
		h.Set("Content-Encoding", "zstd")
		h.Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *zstdResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}
	if w.enc == nil {
		w.enc = w.pool.Get().(*zstd.Encoder)
		w.enc.Reset(w.ResponseWriter)
	}
	return w.enc.Write(b)
}

// Flush implements http.Flusher
func (w *zstdResponseWriter) Flush() {
	if w.enc != nil {
		_ = w.enc.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// close ends the zstd frame and returns the encoder to the pool
func (w *zstdResponseWriter) close() error {
	if w.enc == nil {
		return nil
	}
	err := w.enc.Close()
	w.pool.Put(w.enc)
	w.enc = nil
	return err
}
