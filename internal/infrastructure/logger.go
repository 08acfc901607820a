package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"marketdesk/internal/config"
)

var (
	loggerMu   sync.Mutex
	rootLogger *slog.Logger
	logFile    *lumberjack.Logger
)

type contextKey string

// TraceIDContextKey carries the request or span trace id
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as
// the slog default. Later calls return the first logger unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if rootLogger != nil {
		return rootLogger, nil
	}

	w, file, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}
	logger := NewLogger(w, cfg.Format, opts)

	rootLogger, logFile = logger, file
	slog.SetDefault(logger)
	return logger, nil
}

// logOutput resolves where log lines go. file is nil for console output.
func logOutput(cfg config.LoggingConfig) (w io.Writer, file *lumberjack.Logger, err error) {
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		file, err = openLogFile(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		if strings.EqualFold(cfg.Output, "both") {
			return io.MultiWriter(os.Stdout, file), file, nil
		}
		return file, file, nil
	default:
		return os.Stdout, nil, nil
	}
}

// NewLogger builds a logger on w in the given format ("text" or JSON for
// anything else). Records logged with a context carrying a trace id get a
// trace_id attribute.
func NewLogger(w io.Writer, format string, opts *slog.HandlerOptions) *slog.Logger {
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(traceHandler{h})
}

type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID stores id for log correlation
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, id)
}

// GetTraceID returns the id stored by WithTraceID, or ""
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}

// CloseLogFile closes the rotating log file, if any. lumberjack reopens
// it on the next write, so this belongs at shutdown.
func CloseLogFile() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so the next
// InitializeLogger call builds a fresh one.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	loggerMu.Lock()
	rootLogger = nil
	loggerMu.Unlock()
}

// openLogFile prepares a size-rotated log file. The directory is created
// up front so a bad path fails at startup rather than on first write.
func openLogFile(cfg config.LoggingConfig) (*lumberjack.Logger, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, nil
}
