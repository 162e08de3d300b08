package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "tenantry/pkg/domain-errors"
)

// AttrErrorCode is set on spans that ended with a domain error.
const AttrErrorCode = "error.code"

// OTelTracer adapts an OpenTelemetry tracer to Tracer.
type OTelTracer struct {
	otel trace.Tracer
}

// OTelOption configures NewOTel.
type OTelOption func(*otelConfig)

type otelConfig struct {
	provider trace.TracerProvider
}

// WithTracerProvider makes NewOTel draw its tracer from p instead of the
// global provider.
func WithTracerProvider(p trace.TracerProvider) OTelOption {
	return func(c *otelConfig) { c.provider = p }
}

// NewOTel returns a Tracer named after the instrumentation scope. Without
// options it follows whatever provider is installed globally.
func NewOTel(scope string, opts ...OTelOption) *OTelTracer {
	var cfg otelConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return &OTelTracer{otel: cfg.provider.Tracer(scope)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.otel.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(keyValues(attrs)...),
	)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

// End closes the span. Domain errors a caller caused (validation, conflict,
// not found and the like) are tagged with their code but leave the status
// unset; anything else marks the span failed.
func (s otelSpan) End(err error) {
	defer s.span.End()
	if err == nil {
		return
	}
	if code := dErrors.CodeOf(err); code != "" {
		s.span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
		if callerFault(code) {
			return
		}
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func callerFault(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		return false
	}
	return true
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(keyValues(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

// keyValues converts attributes, falling back to fmt for types OpenTelemetry
// has no native kind for.
func keyValues(attrs []Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		key := attribute.Key(a.Key)
		switch v := a.Value.(type) {
		case string:
			out[i] = key.String(v)
		case bool:
			out[i] = key.Bool(v)
		case int:
			out[i] = key.Int(v)
		case int64:
			out[i] = key.Int64(v)
		case float64:
			out[i] = key.Float64(v)
		case []string:
			out[i] = key.StringSlice(v)
		case fmt.Stringer:
			out[i] = key.String(v.String())
		default:
			out[i] = key.String(fmt.Sprint(v))
		}
	}
	return out
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = otelSpan{}
)
