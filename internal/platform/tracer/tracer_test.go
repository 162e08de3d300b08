package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantry/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanUserChangeset, tracer.String(tracer.AttrAccountType, "agent"))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Int(tracer.AttrFieldErrors, 2))
	span.AddEvent("hashed")
	span.End(errors.New("boom"))
}

func TestOTelTracerWithGlobalProvider(t *testing.T) {
	tr := tracer.NewOTel("tenantry/test")

	ctx, span := tr.Start(context.Background(), tracer.SpanTenantModify,
		tracer.String(tracer.AttrTenantID, "t-1"),
		tracer.Bool("authorized", true),
		tracer.Int(tracer.AttrResultCount, 3),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.AddEvent("persisted")
	span.End(nil)
}
