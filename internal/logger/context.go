package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Attach stores l in ctx for handlers further down the request.
func Attach(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or a no-op logger when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// ForRequest derives the per-request logger from base, tagged with the request ID
// when there is one, and attaches it to ctx.
func ForRequest(ctx context.Context, base *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := base
	if requestID != "" {
		l = base.With(zap.String("request_id", requestID))
	}
	return Attach(ctx, l), l
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return Attach(ctx, FromContext(ctx).With(fields...))
}
