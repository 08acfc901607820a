package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/config"
	"marketdesk/internal/shared/testutil"
)

const testConfig = `
server:
  port: 18080
  compression: true
security:
  enable_cors: false
  rate_limit:
    enabled: false
telemetry:
  trace_exporter: none
  metric_exporter: %s
data:
  dir: data
  bulletins: bulletins.yaml
  treasury: [yields.csv]
  rates: [market.csv]
  credit: [market.csv]
  watchlist: [market.csv]
  industries: [market.csv]
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// setupApp writes a config file next to a small data directory and builds
// the application from it
func setupApp(t *testing.T, metricExporter string) *Application {
	t.Helper()

	root := t.TempDir()
	data := filepath.Join(root, "data")
	writeFile(t, data, "yields.csv", `Date,1 MO,2 YR,10 YR
12/31/2024,4.37,4.24,4.58
1/2/2025,4.45,4.25,4.57
1/3/2025,4.44,4.28,4.60
`)
	writeFile(t, data, "market.csv", `date,name,ticker,category,value,extra
45658,US IG,LUACOAS Index,spread,82,
45659,US IG,LUACOAS Index,spread,81,
45658,S&P 500,SPX Index,stox,5881.63,
45658,Banks,SX7P Index,einx,180.2,
45658,EFFR,FEDL01 Index,rate,4.33,
`)
	writeFile(t, data, "bulletins.yaml", `bulletins:
  - id: 2025-w01
    title: New year, same curve
    sort_date: 2025-01-03
    path: 2025-w01.html
`)
	writeFile(t, data, "2025-w01.html", "<h1>Week 1</h1>")

	cfgPath := filepath.Join(root, "config.yaml")
	writeFile(t, root, "config.yaml", fmt.Sprintf(testConfig, metricExporter))

	cfg, err := config.LoadFrom(cfgPath)
	require.NoError(t, err)
	require.Equal(t, data, cfg.Data.Dir)

	logger, _ := testutil.NewTestLogger(t)
	a, err := NewApplication(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if a.OTelProviders != nil {
			_ = a.OTelProviders.Shutdown(context.Background())
		}
	})
	return a
}

func serve(a *Application, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewApplication(t *testing.T) {
	a := setupApp(t, "none")

	assert.NotNil(t, a.Registry)
	assert.Equal(t, 1, a.Bulletins.Len())
	assert.NotNil(t, a.DashboardService)
	assert.NotNil(t, a.HealthService)
	assert.Equal(t, ":18080", a.Server.Addr)
	assert.Equal(t, a.Router, a.Server.Handler)
}

func TestNewApplication_BadData(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bulletins.yaml", "bulletins: [\n")

	cfg := config.Default()
	cfg.Data.Dir = root
	cfg.Data.Bulletins = filepath.Join(root, "bulletins.yaml")
	cfg.Telemetry.MetricExporter = "none"

	logger, _ := testutil.NewTestLogger(t)
	_, err := NewApplication(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bulletins.yaml")
}

func TestApplication_Routes(t *testing.T) {
	a := setupApp(t, "none")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "health",
			target:     "/api/health",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
			},
		},
		{
			name:       "readiness",
			target:     "/api/health/ready",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
			},
		},
		{
			name:       "version",
			target:     "/api/version",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, config.AppVersion, body["version"])
			},
		},
		{
			name:       "dashboard follows latest bulletin",
			target:     "/api/v1/dashboard",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "success", body["status"])
				active := body["active"].(map[string]interface{})
				assert.Equal(t, "latest_bulletin", active["source"])
				assert.Equal(t, "2025-W01", active["week"])
			},
		},
		{
			name:       "bulletins",
			target:     "/api/v1/bulletins",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(1), body["count"])
			},
		},
		{
			name:       "unknown route",
			target:     "/api/v1/nowhere",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(http.StatusNotFound), body["status"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.target, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			tt.check(t, decode(t, rec))
		})
	}
}

func TestApplication_Document(t *testing.T) {
	a := setupApp(t, "none")

	rec := serve(a, "/api/v1/bulletins/2025-w01/document", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Week 1</h1>", rec.Body.String())
}

func TestApplication_Compression(t *testing.T) {
	a := setupApp(t, "none")

	rec := serve(a, "/api/v1/dashboard", map[string]string{"Accept-Encoding": "zstd, gzip"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "zstd", rec.Header().Get("Content-Encoding"))

	dec, err := zstd.NewReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.True(t, json.Valid(plain))
}

func TestApplication_Metrics(t *testing.T) {
	a := setupApp(t, "prometheus")

	serve(a, "/api/v1/credit", nil)

	rec := serve(a, config.MetricsEndpoint, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/v1/credit"`)
	assert.Contains(t, body, "view_builds_total")
}
