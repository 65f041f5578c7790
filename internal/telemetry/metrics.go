// Package telemetry provides OpenTelemetry instrumentation for mxn-svg.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// TransformMetricsMeterName is the name used for the transform metrics meter
	TransformMetricsMeterName = "github.com/stacklok/mxn-svg/transform"

	// TracerName is the name used for transform spans
	TracerName = "github.com/stacklok/mxn-svg/plugin"
)

// Outcome classifies a single transform call
type Outcome string

const (
	// OutcomeTransformed means a component module was produced
	OutcomeTransformed Outcome = "transformed"
	// OutcomeSkipped means the inclusion filter rejected the file
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the transform returned an error
	OutcomeFailed Outcome = "failed"
)

// TransformMetrics holds the OpenTelemetry instruments for transform metrics
type TransformMetrics struct {
	filesTotal metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewTransformMetrics creates a new TransformMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewTransformMetrics(provider metric.MeterProvider) (*TransformMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(TransformMetricsMeterName)

	filesTotal, err := meter.Int64Counter(
		"mxn_svg_files_total",
		metric.WithDescription("Number of files seen by the transform, by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"mxn_svg_transform_duration_seconds",
		metric.WithDescription("Duration of file transforms in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30),
	)
	if err != nil {
		return nil, err
	}

	return &TransformMetrics{
		filesTotal: filesTotal,
		duration:   duration,
	}, nil
}

// RecordFile counts one file with the given outcome
func (m *TransformMetrics) RecordFile(ctx context.Context, outcome Outcome) {
	if m == nil || m.filesTotal == nil {
		return
	}

	m.filesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

// RecordDuration records how long a transform of an included file took
func (m *TransformMetrics) RecordDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.duration == nil {
		return
	}

	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}
