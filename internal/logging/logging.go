// Package logging configures the process-wide structured logger and carries
// it through request contexts. Handlers write to stderr so stdout stays free
// for command output (recall ask prints the answer there).
//
// Environment variables:
//
//	LOG_LEVEL  = debug | info | warn | error  (default: info)
//	LOG_FORMAT = json | text                  (default: json)
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// loggerKey is the unexported context key for the request-scoped logger.
type loggerKey struct{}

// New builds a [*slog.Logger] from LOG_LEVEL and LOG_FORMAT. The json
// handler is the default; text is meant for local development.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, falling back to
// [slog.Default] so callers never need a nil check.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// levelFromEnv maps LOG_LEVEL to a [slog.Level]. Unknown values mean Info.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
