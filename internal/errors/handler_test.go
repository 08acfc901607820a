package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "validation api error",
			err:        ErrValidation("date", "date must be formatted YYYY-MM-DD"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "bulletin not found",
			err:        ErrBulletinNotFound("2025-w01"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeBulletinNotFound,
			wantCode:   "BULLETIN_NOT_FOUND",
		},
		{
			name:       "unknown dataset",
			err:        ErrDatasetNotFound("bonds"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeDatasetNotFound,
			wantCode:   "DATASET_NOT_FOUND",
		},
		{
			name:       "no active date",
			err:        ErrNoActiveDate(),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDataUnavailable,
			wantCode:   "NO_ACTIVE_DATE",
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("handler: %w", New(http.StatusTooManyRequests, CodeRateLimited, "slow down")),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:       "context deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "instrument not found",
			err:        ErrInstrumentNotFound("treasury", "US99Y"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeInstrumentNotFound,
			wantCode:   "INSTRUMENT_NOT_FOUND",
		},
		{
			name:       "unknown code falls back to internal type",
			err:        New(http.StatusConflict, "SOMETHING_ELSE", "odd"),
			wantStatus: http.StatusConflict,
			wantType:   TypeInternal,
			wantCode:   "SOMETHING_ELSE",
		},
		{
			name:       "missing file",
			err:        fmt.Errorf("open 2025-w01.pdf: %w", fs.ErrNotExist),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/credit", nil)
			rec := httptest.NewRecorder()
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/v1/credit", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.Contains(t, body, "trace_id")
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestErrorHandler_NilError(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, handler.Count())
}

func TestErrorHandler_LogLevel(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	h.HandleError(httptest.NewRecorder(), req, ErrValidation("date", "bad"))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Empty(t, handler.GetRecordsByLevel(slog.LevelError))

	h.HandleError(httptest.NewRecorder(), req, fmt.Errorf("boom"))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
}

func TestErrorHandler_AppErrors(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/treasury", nil)

	tests := []struct {
		err        *AppError
		wantStatus int
		wantType   string
	}{
		{NewAppError(ErrTypeValidation, "bad weeks", nil), http.StatusBadRequest, TypeValidation},
		{NewNotFoundError("bulletin"), http.StatusNotFound, TypeNotFound},
		{NewParsingError("treasury.csv", fmt.Errorf("bad row")), http.StatusInternalServerError, TypeDataCorrupted},
		{NewStorageError("read credit.csv", fmt.Errorf("io")), http.StatusServiceUnavailable, TypeDataUnavailable},
		{NewConfigError("bad yaml", nil), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			problem := h.ErrorToProblem(fmt.Errorf("wrapped: %w", tt.err), req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, string(tt.err.Type), problem.Extensions["error_type"])
		})
	}
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	body := decodeProblem(t, rec)
	assert.Contains(t, body["stack"], "goroutine")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/credit", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestRecoverer(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("view exploded")
	})
	srv := middleware.RequestID(h.Recoverer(panicking))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotEmpty(t, body["trace_id"])
	assert.True(t, handler.ContainsMessage("panic recovered"))
}

func TestRecoverer_AbortHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)

	aborting := h.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		aborting.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
