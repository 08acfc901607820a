package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultMaxGapDays, cfg.Views.MaxGapDays)
	assert.Equal(t, DefaultCycleMonths, cfg.Views.CycleMonths)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, filepath.IsAbs(cfg.Data.Dir), "data dir resolved against working directory")
	assert.Equal(t, filepath.Join(cfg.Data.Dir, DefaultBulletinsFile), cfg.Data.Bulletins)
}

func TestLoadFrom_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
logging:
  level: debug
  format: text
data:
  dir: exports
  treasury: [yields_2024.csv, yields_2025.csv]
  fed_futures: [/abs/futures.csv]
views:
  cycle_months: 18
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	base := filepath.Dir(path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(base, "exports"), cfg.Data.Dir)
	assert.Equal(t, 18, cfg.Views.CycleMonths)
	assert.Equal(t, []string{"yields_2024.csv", "yields_2025.csv"}, cfg.Data.Treasury)
	assert.Equal(t, filepath.Join(base, "exports", "yields_2024.csv"), cfg.Data.DataFile(cfg.Data.Treasury[0]))
	assert.Equal(t, "/abs/futures.csv", cfg.Data.DataFile(cfg.Data.FedFutures[0]))
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\nviews:\n  chart_weeks: 26\n")

	t.Setenv("MARKETDESK_SERVER_PORT", "7070")
	t.Setenv("MARKETDESK_DATA_CREDIT", "a.csv,b.csv")
	t.Setenv("MARKETDESK_SECURITY_RATE_LIMIT_RPS", "5")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 26, cfg.Views.ChartWeeks)
	assert.Equal(t, []string{"a.csv", "b.csv"}, cfg.Data.Credit)
	assert.Equal(t, 5.0, cfg.Security.RateLimit.RPS)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "port out of range", content: "server:\n  port: 70000\n"},
		{name: "unknown log output", content: "logging:\n  output: syslog\n"},
		{name: "zero cycle months", content: "views:\n  cycle_months: 0\n"},
		{name: "negative gap", content: "views:\n  max_gap_days: -1\n"},
		{name: "unknown trace exporter", content: "telemetry:\n  trace_exporter: otlp\n"},
		{name: "malformed yaml", content: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFilePath_Env(t *testing.T) {
	t.Setenv("MARKETDESK_CONFIG", "/etc/marketdesk/config.yaml")
	assert.Equal(t, "/etc/marketdesk/config.yaml", getConfigFilePath())
}
