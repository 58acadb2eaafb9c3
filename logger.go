package voxphase

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/voxphase/grid"
)

// Logger wraps slog.Logger with voxphase-specific context.
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
	return NewWriterLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewWriterLogger(os.Stderr, "text", level)
}

// NewWriterLogger creates a Logger writing to w in the given format
// ("json" or "text").
func NewWriterLogger(w io.Writer, format string, level slog.Level) *Logger {
	hopts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithGeneration adds the grid generation to the logger.
func (l *Logger) WithGeneration(gen uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("generation", gen),
	}
}

// WithSource adds the name of the voxel file or snapshot to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// LogLoad logs a grid load.
func (l *Logger) LogLoad(ctx context.Context, records int, stats grid.Stats, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"records", records,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "grid loaded",
		"records", records,
		"layout", stats.Layout.String(),
		"covered", stats.Covered,
		"collisions", stats.Collisions,
		"phases", len(stats.Phases),
		"memory", humanize.IBytes(stats.MemoryBytes),
		"duration", d,
	)
	if stats.Collisions > 0 {
		l.WarnContext(ctx, "voxel centers share bins, last write wins",
			"collisions", stats.Collisions,
		)
	}
}

// LogFilter logs a completed or failed filter run.
func (l *Logger) LogFilter(ctx context.Context, target float32, matched, scanned uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter failed",
			"target", target,
			"scanned", scanned,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "filter completed",
		"target", target,
		"matched", matched,
		"scanned", scanned,
		"duration", d,
	)
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "snapshot "+op,
		"name", name,
	)
}
