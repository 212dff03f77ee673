// Package logging provides small helpers around log/slog so that error and
// operation logging stays uniform across the application.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

var loggerKey contextKey

// WithLogger stores a logger in the context for downstream handlers.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger stored by WithLogger, falling back to
// slog.Default when none was set.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogError logs an error with a message and optional attributes.
func LogError(logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs = append(attrs, slog.Any("error", err))
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// LogOperation logs a named operation at info level.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// LogHTTPRequest logs a completed HTTP request with standard fields.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	all := append([]slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", all...)
}

// SafeCloseWithLogging closes c and logs (rather than ignores) a close error.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close "+name, err)
	}
}
