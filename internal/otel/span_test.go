package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// newTestTracerProvider creates a tracer provider with an in-memory exporter
func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	resultCtx, span := StartSpan(context.Background(), nil, "mxn-svg.transform")

	require.NotNil(t, resultCtx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid(), "nil tracer should return no-op span")
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_ValidTracer(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := StartSpan(context.Background(), tp.Tracer("test"), "mxn-svg.transform",
		trace.WithAttributes(AttrFileID.String("icons/logo.svg")),
	)
	require.True(t, span.SpanContext().IsValid())
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mxn-svg.transform", spans[0].Name)

	var found bool
	for _, attr := range spans[0].Attributes {
		if attr.Key == AttrFileID && attr.Value.AsString() == "icons/logo.svg" {
			found = true
		}
	}
	assert.True(t, found, "should carry the file id")
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })
	assert.NotPanics(t, func() { RecordError(nil, nil) })

	exporter, tp := newTestTracerProvider(t)
	tracer := tp.Tracer("test")

	_, clean := tracer.Start(context.Background(), "clean")
	RecordError(clean, nil)
	clean.End()

	_, failed := tracer.Start(context.Background(), "failed")
	RecordError(failed, errors.New("clean did not return a string"))
	failed.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)

	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "clean did not return a string", spans[1].Status.Description)
	require.NotEmpty(t, spans[1].Events)
	assert.Equal(t, "exception", spans[1].Events[0].Name)
}

func TestHostFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, HostFromContext(context.Background()))

	ctx := WithHost(context.Background(), HostESBuild)
	assert.Equal(t, HostESBuild, HostFromContext(ctx))
	assert.Equal(t, HostConvert, HostFromContext(WithHost(ctx, HostConvert)))
}
