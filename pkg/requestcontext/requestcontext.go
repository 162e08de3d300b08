// Package requestcontext carries request-scoped values through context so
// services, stores and logs agree on them.
package requestcontext

import (
	"context"
	"time"
)

type (
	contextKeyRequestID   struct{}
	contextKeyRequestTime struct{}
	contextKeyClient      struct{}
)

type clientMetadata struct {
	ip        string
	userAgent string
}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request id, or "" outside of a request.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

// WithTime pins "now" for everything that runs under ctx.
// Used by the request middleware, workers and tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now returns the request-scoped time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithClientMetadata stores the client address and user agent in ctx.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, contextKeyClient{}, clientMetadata{ip: ip, userAgent: userAgent})
}

// ClientIP returns the client address recorded by the metadata middleware.
func ClientIP(ctx context.Context) string {
	m, _ := ctx.Value(contextKeyClient{}).(clientMetadata)
	return m.ip
}

func UserAgent(ctx context.Context) string {
	m, _ := ctx.Value(contextKeyClient{}).(clientMetadata)
	return m.userAgent
}
