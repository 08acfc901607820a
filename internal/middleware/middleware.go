package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apierrors "marketdesk/internal/errors"
	"marketdesk/internal/infrastructure"
)

// maxRequestIDLen bounds client-supplied X-Request-ID values
const maxRequestIDLen = 128

// RequestID assigns every request an id, reusing X-Request-ID when the
// client sent one. The id is stored where chi's GetReqID finds it and
// doubles as the trace id until OTelMiddleware replaces it with a span's.
// This should be the FIRST middleware in the chain.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(middleware.RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(infrastructure.WithTraceID(ctx, id)))
	})
}

// StructuredLogger logs each completed request once, at warn for 4xx and
// error for 5xx. The trace id comes from the context through the logger's
// handler.
func StructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", r.URL.RawQuery))
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}

// clientLimiter is the token bucket of one client address
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives every client address its own token bucket. Buckets
// idle for longer than idleTTL are dropped on the next sweep.
type RateLimiter struct {
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. Rejections are answered through errorHandler.
func NewRateLimiter(rps float64, burst int, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      10 * time.Minute,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "rate_limiter")),
		clients:      make(map[string]*clientLimiter),
		lastSweep:    time.Now(),
	}
}

func (rl *RateLimiter) limiterFor(client string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.idleTTL {
		for k, c := range rl.clients {
			if now.Sub(c.lastSeen) > rl.idleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter
}

// retryAfter is the whole number of seconds until one token refills
func (rl *RateLimiter) retryAfter() int {
	if rl.rps <= 0 {
		return 60
	}
	return int(math.Ceil(1 / float64(rl.rps)))
}

// Handler implements rate limiting middleware. It must run after RealIP.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if rl.limiterFor(client, time.Now()).Allow() {
			next.ServeHTTP(w, r)
			return
		}

		wait := rl.retryAfter()
		rl.logger.WarnContext(r.Context(), "rate limit exceeded",
			slog.String("client", client),
			slog.String("path", r.URL.Path))
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		rl.errorHandler.HandleError(w, r, apierrors.ErrRateLimited(wait))
	})
}

// clientAddr strips the port from RemoteAddr
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
	Logger           *slog.Logger
}

// CORS answers preflight requests and sets the CORS response headers. The
// API is read-only, so only GET, HEAD and OPTIONS are allowed by default.
// An empty AllowedOrigins list allows every origin.
func CORS(config CORSConfig) func(next http.Handler) http.Handler {
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	}
	if len(config.AllowedHeaders) == 0 {
		config.AllowedHeaders = []string{"Accept", "Accept-Encoding", "Content-Type", middleware.RequestIDHeader}
	}
	if len(config.ExposedHeaders) == 0 {
		config.ExposedHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 300
	}

	methods := strings.Join(config.AllowedMethods, ", ")
	allowHeaders := strings.Join(config.AllowedHeaders, ", ")
	exposeHeaders := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	originAllowed := func(origin string) bool {
		if len(config.AllowedOrigins) == 0 {
			return true
		}
		for _, o := range config.AllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := origin != "" && originAllowed(origin)

			h := w.Header()
			h.Add("Vary", "Origin")
			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", exposeHeaders)
				if config.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				h.Set("Access-Control-Max-Age", maxAge)
			}
			if config.Logger != nil {
				config.Logger.DebugContext(r.Context(), "CORS preflight request",
					slog.String("origin", origin),
					slog.Bool("allowed", allowed))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
