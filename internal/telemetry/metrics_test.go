package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewTransformMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewTransformMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("creates metrics with SDK provider", func(t *testing.T) {
		t.Parallel()

		mp := sdkmetric.NewMeterProvider()
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewTransformMetrics(mp)
		require.NoError(t, err)
		assert.NotNil(t, metrics)
		assert.NotNil(t, metrics.filesTotal)
		assert.NotNil(t, metrics.duration)
	})
}

func TestTransformMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var metrics *TransformMetrics
	// Should not panic
	metrics.RecordFile(context.Background(), OutcomeTransformed)
	metrics.RecordDuration(context.Background(), time.Millisecond, true)
}

func TestTransformMetrics_Record(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewTransformMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	ctx := context.Background()
	metrics.RecordFile(ctx, OutcomeTransformed)
	metrics.RecordFile(ctx, OutcomeTransformed)
	metrics.RecordFile(ctx, OutcomeSkipped)
	metrics.RecordFile(ctx, OutcomeFailed)
	metrics.RecordDuration(ctx, 20*time.Millisecond, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	var histogramSeen bool
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != TransformMetricsMeterName {
			continue
		}
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				assert.Equal(t, "mxn_svg_files_total", m.Name)
				for _, dp := range data.DataPoints {
					v, ok := dp.Attributes.Value("outcome")
					require.True(t, ok)
					counts[v.AsString()] = dp.Value
				}
			case metricdata.Histogram[float64]:
				assert.Equal(t, "mxn_svg_transform_duration_seconds", m.Name)
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, uint64(1), data.DataPoints[0].Count)
				histogramSeen = true
			}
		}
	}

	assert.Equal(t, map[string]int64{"transformed": 2, "skipped": 1, "failed": 1}, counts)
	assert.True(t, histogramSeen)
}
