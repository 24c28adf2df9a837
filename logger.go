package pixelquant

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pixelquant-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithImage adds width/height fields to the logger.
func (l *Logger) WithImage(width, height int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width, "height", height),
	}
}

// WithClusters adds a cluster-count field to the logger.
func (l *Logger) WithClusters(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("clusters", k),
	}
}

// LogQuantize logs a quantization run.
func (l *Logger) LogQuantize(ctx context.Context, width, height, clusters, iterations int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "quantize failed",
			"width", width,
			"height", height,
			"clusters", clusters,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "quantize completed",
			"width", width,
			"height", height,
			"clusters", clusters,
			"iterations", iterations,
		)
	}
}
