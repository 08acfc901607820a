package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "marketdesk/internal/errors"
)

// QueryParamValidator validates query parameters and answers 400 through the
// API error handler when one is malformed
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt validates an integer query parameter
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max int, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be an integer", param))
		return 0, false
	}

	if intValue < min || intValue > max {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be between %d and %d", param, min, max))
		return 0, false
	}

	return intValue, true
}

// ValidateEnum validates an enum query parameter, ignoring case. The
// canonical spelling from allowed is returned.
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}

	v.reject(w, r, param, value, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
	return "", false
}

// ValidateDate validates a YYYY-MM-DD query parameter
func (v *QueryParamValidator) ValidateDate(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return time.Time{}, true
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		v.reject(w, r, param, value, fmt.Sprintf("%s must be formatted YYYY-MM-DD", param))
		return time.Time{}, false
	}
	return t, true
}

func (v *QueryParamValidator) reject(w http.ResponseWriter, r *http.Request, param, value, msg string) {
	v.logger.DebugContext(r.Context(), "invalid query parameter",
		slog.String("param", param),
		slog.String("value", value),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, msg))
}
