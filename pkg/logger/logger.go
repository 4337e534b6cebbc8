// Package logger wraps log/slog with the defaults this service uses:
// JSON output on stdout and a level parsed from configuration.
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey string

// RequestIDKey is the context key under which middleware stores request IDs.
const RequestIDKey ctxKey = "request_id"

// Logger is a thin wrapper so call sites depend on one type.
type Logger struct {
	*slog.Logger
}

// New creates a JSON logger at the given level ("debug", "info", "warn",
// "error"); anything else means info.
func New(level string) *Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	return &Logger{Logger: slog.New(handler)}
}

// WithContext returns a logger carrying the request ID from ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return &Logger{Logger: l.With("request_id", requestID)}
	}
	return l
}
