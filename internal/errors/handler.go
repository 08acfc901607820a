package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
)

// Problem types (RFC 7807 "type" member)
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"

	TypeBulletinNotFound   = "/errors/bulletin/not-found"
	TypeDatasetNotFound    = "/errors/data/not-found"
	TypeInstrumentNotFound = "/errors/data/instrument-not-found"
	TypeDataUnavailable    = "/errors/data/unavailable"
	TypeDataCorrupted      = "/errors/data/corrupted"
)

var problemTypes = map[string]string{
	CodeValidation:         TypeValidation,
	CodeNotFound:           TypeNotFound,
	CodeBulletinNotFound:   TypeBulletinNotFound,
	CodeDatasetNotFound:    TypeDatasetNotFound,
	CodeInstrumentNotFound: TypeInstrumentNotFound,
	CodeNoActiveDate:       TypeDataUnavailable,
	CodeRateLimited:        TypeRateLimit,
	CodeServiceUnavailable: TypeServiceDown,
}

// ErrorHandler writes every failed request as problem+json
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds the
// goroutine stack to responses and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts err to problem details and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	// Client errors are expected traffic
	level := slog.LevelError
	if problem.Status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("type", problem.Type),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	writeProblem(w, problem)
}

// ErrorToProblem maps an error to problem details. APIErrors keep their
// status and code, AppErrors are mapped by type, and a request that ran out
// of time answers 504.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, r)
	}

	if errors.Is(err, fs.ErrNotExist) {
		return NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", err.Error(), r.URL.Path)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := problemTypes[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

func appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeValidation:
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation, "Validation Failed", appErr.Message, r.URL.Path)
	case ErrTypeNotFound:
		problem = NewProblemDetails(http.StatusNotFound, TypeNotFound, "Resource Not Found", appErr.Message, r.URL.Path)
	case ErrTypeParsing:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeDataCorrupted, "Data Corrupted", appErr.Message, r.URL.Path)
	case ErrTypeStorage:
		problem = NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Data Unavailable", appErr.Message, r.URL.Path)
	default:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
			"An unexpected error occurred while processing your request", r.URL.Path)
	}
	problem.WithExtension("error_type", string(appErr.Type))
	return problem
}

// Recoverer turns a panic in a view or handler into a 500 problem response.
// http.ErrAbortHandler is re-raised so the server aborts the connection.
func (h *ErrorHandler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// HandlePanic logs a recovered panic and answers 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	writeProblem(w, problem)
}

// NotFound answers unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	writeProblem(w, problem)
}

// MethodNotAllowed answers known routes hit with another method. The API
// is read-only.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	w.Header().Set("Allow", "GET, HEAD")
	writeProblem(w, problem)
}

// writeProblem responds with problem as application/problem+json
func writeProblem(w http.ResponseWriter, problem *ProblemDetails) {
	body, err := json.Marshal(problem)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(problem.Status)
	_, _ = w.Write(append(body, '\n'))
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
