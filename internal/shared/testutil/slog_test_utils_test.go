package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("dataset loaded", slog.String("dataset", "treasury"))
		logger.Error("load failed", slog.Int("files", 2))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("dataset loaded"))
		assert.True(t, handler.ContainsAttr("dataset", "treasury"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("keeps attributes added with With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		scoped := logger.With(slog.String("component", "registry"))
		scoped.Info("loaded")
		logger.WithGroup("view").Info("built", slog.Int("missing", 3))

		records := handler.GetRecords()
		require.Len(t, records, 2)
		assert.Equal(t, "registry", records[0].Attrs["component"])
		assert.Equal(t, int64(3), records[1].Attrs["view.missing"])
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.With(slog.String("k", "v")).Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Zero(t, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}
