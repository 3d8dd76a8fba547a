package sdci

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithParams adds the index parameters to the logger.
func (l *Logger) WithParams(sigma, q, k uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("sigma", sigma, "q", q, "k", k),
	}
}

// WithTextLen adds a text length field to the logger.
func (l *Logger) WithTextLen(n uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("text_len", n),
	}
}

// LogInitialize logs a parameter change.
func (l *Logger) LogInitialize(ctx context.Context, sigma, q, k uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "initialize failed",
			"sigma", sigma,
			"q", q,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "initialize completed",
			"sigma", sigma,
			"q", q,
			"k", k,
		)
	}
}

// LogAppend logs an append call.
func (l *Logger) LogAppend(ctx context.Context, symbols int, textLen uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"symbols", symbols,
			"text_len", textLen,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "append completed",
			"symbols", symbols,
			"text_len", textLen,
		)
	}
}

// LogLocate logs a locate or count query.
func (l *Logger) LogLocate(ctx context.Context, patternLen int, matches uint64, err error) {
	if err != nil {
		l.WarnContext(ctx, "locate rejected",
			"pattern_len", patternLen,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "locate completed",
			"pattern_len", patternLen,
			"matches", matches,
		)
	}
}

// LogSnapshot logs a snapshot write.
func (l *Logger) LogSnapshot(ctx context.Context, target string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"target", target,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a snapshot read.
func (l *Logger) LogLoad(ctx context.Context, source string, textLen uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed, index reset",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"source", source,
			"text_len", textLen,
		)
	}
}

// LogReset logs a rollback to the empty index after a failed mutation.
func (l *Logger) LogReset(ctx context.Context, op string, cause error) {
	l.WarnContext(ctx, "index reset to empty",
		"op", op,
		"cause", cause,
	)
}
