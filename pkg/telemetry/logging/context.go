package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// RefreshIDKey is the context key for refresh cycle IDs.
	RefreshIDKey contextKey = "refresh_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRefreshID adds a refresh cycle ID to the context.
func WithRefreshID(ctx context.Context, refreshID string) context.Context {
	return context.WithValue(ctx, RefreshIDKey, refreshID)
}

// GetRefreshID retrieves the refresh cycle ID from the context.
func GetRefreshID(ctx context.Context) string {
	if refreshID, ok := ctx.Value(RefreshIDKey).(string); ok {
		return refreshID
	}
	return ""
}

// contextHandler adds context fields to every record logged through one of
// the *Context methods.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if id := GetRequestID(ctx); id != "" {
		rec.AddAttrs(slog.String("request_id", id))
	}
	if id := GetRefreshID(ctx); id != "" {
		rec.AddAttrs(slog.String("refresh_id", id))
	}
	return h.Handler.Handle(ctx, rec)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}
