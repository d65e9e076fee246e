// Package logging carries a request-scoped slog.Logger through context so
// every layer of the portal logs with the same request attributes. The HTTP
// middleware attaches the logger; services and the responder read it back.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger stores the logger in a derived context. Nil inputs leave
// the context untouched so callers never need to guard the attach.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the attached logger, or nil when the context carries
// none. Callers fall back to their own logger in that case.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}
