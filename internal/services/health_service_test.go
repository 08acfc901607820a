package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/registry"
	"marketdesk/internal/shared/testutil"
)

func TestHealthService(t *testing.T) {
	hs := NewHealthService("1.4.0", "2025-06-01T00:00:00Z", testRegistry(), testCatalog(t), testLogger())
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		status := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "1.4.0", status.Version)
	})

	t.Run("readiness", func(t *testing.T) {
		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)
		require.Contains(t, status.Components, "registry")
		reg := status.Components["registry"]
		assert.Equal(t, "ready", reg.Status)
		assert.Contains(t, reg.Message, "3 datasets")

		b := status.Components["bulletins"]
		assert.Contains(t, b.Message, "latest 2025-23")
	})

	t.Run("liveness", func(t *testing.T) {
		status := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", status.Status)
		require.NotNil(t, status.Runtime)
		assert.Positive(t, status.Runtime.Goroutines)
	})

	t.Run("version", func(t *testing.T) {
		v := hs.Version()
		assert.Equal(t, "1.4.0", v.Version)
		assert.Equal(t, "2025-06-01T00:00:00Z", v.BuildTime)
		assert.NotEmpty(t, v.Datasets)
		assert.NotNil(t, v.DataLoadedAt)
	})
}

func TestHealthService_NotReady(t *testing.T) {
	ctx := context.Background()
	logger, logs := testutil.NewTestLogger(t)

	empty := NewHealthService("dev", "", registry.FromSeries(nil, nil), nil, logger)
	status := empty.ReadinessCheck(ctx)
	assert.False(t, status.Ready())
	assert.Equal(t, "no dataset has observations", status.Components["registry"].Message)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Readiness check failed")

	missing := NewHealthService("dev", "", nil, nil, testLogger())
	assert.Equal(t, StatusNotReady, missing.ReadinessCheck(ctx).Status)
	assert.Empty(t, missing.Version().Datasets)
	assert.Nil(t, missing.Version().DataLoadedAt)
}
