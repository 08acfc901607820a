package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/infrastructure"
	"marketdesk/internal/shared/testutil"
)

func TestOTelMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		MetricExporter: "prometheus",
		TraceExporter:  "none",
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	m, err := NewOTelMiddleware(providers, metrics)
	require.NoError(t, err)

	var traceID string
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(m.Handler)
	r.Get("/api/v1/series/{dataset}/{key}", func(w http.ResponseWriter, r *http.Request) {
		traceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/series/credit/XX", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), traceID, "unsampled requests keep the request id")

	rec = httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/v1/series/{dataset}/{key}"`)
	assert.Contains(t, body, `status_code="404"`)
}

func TestNewOTelMiddleware_RequiresMetrics(t *testing.T) {
	_, err := NewOTelMiddleware(&infrastructure.OTelProviders{}, nil)
	assert.Error(t, err)
}
