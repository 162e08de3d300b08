// Package tracer is a small tracing abstraction used by the tenant and user
// services so they emit spans without depending on OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: tests and tools
//   - OTelTracer: OpenTelemetry adapter for the server
package tracer

import "context"

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names.
const (
	SpanTenantModify  = "tenant.modify"
	SpanTenantCreate  = "tenant.create"
	SpanUserChangeset = "user.changeset"
	SpanUserPersist   = "user.persist"
	SpanUserList      = "user.list"
)

// Attribute keys.
const (
	AttrTenantID    = "tenant.id"
	AttrUserID      = "user.id"
	AttrAccountType = "user.account_type"
	AttrFieldErrors = "changeset.field_errors"
	AttrResultCount = "result.count"
)
