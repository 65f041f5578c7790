// Package otel provides OpenTelemetry span helpers shared by the transform hosts.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys attached to transform spans
const (
	AttrFileID       = attribute.Key("file.id")
	AttrFileSize     = attribute.Key("file.size")
	AttrOutcome      = attribute.Key("transform.outcome")
	AttrFilterReason = attribute.Key("filter.reason")
	AttrHost         = attribute.Key("transform.host")
)

// Hosts that drive transforms
const (
	HostESBuild = "esbuild"
	HostConvert = "convert"
)

type hostKey struct{}

// WithHost marks ctx with the host driving the transform
func WithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, hostKey{}, host)
}

// HostFromContext returns the host set with WithHost, or ""
func HostFromContext(ctx context.Context) string {
	host, _ := ctx.Value(hostKey{}).(string)
	return host
}

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the
// span already carried by ctx, which is a no-op span when there is none.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed.
// Nil spans and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
