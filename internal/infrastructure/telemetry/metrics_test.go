package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/greetingsmith/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter backed by a manual reader so tests can collect
// exactly what was recorded.
func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumWhere totals the int64 sum data points whose attributes include every given pair.
func sumWhere(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		matches := true
		for _, want := range attrs {
			got, found := dp.Attributes.Value(want.Key)
			if !found || got != want.Value {
				matches = false
				break
			}
		}
		if matches {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Minute,
		ServiceName:       "greetingsmith-test",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	counter, err := telemetry.NewCounter(provider.Meter("test"), "requests_total", "Requests", "{request}")
	require.NoError(t, err)

	counter.Add(ctx, 5, attribute.String("method", "GET"))
	counter.Inc(ctx, attribute.String("method", "GET"))
	counter.Inc(ctx, attribute.String("method", "POST"))

	m := collect(t, reader)["requests_total"]
	assert.Equal(t, int64(6), sumWhere(t, m, attribute.String("method", "GET")))
	assert.Equal(t, int64(1), sumWhere(t, m, attribute.String("method", "POST")))
}

func TestHistogram_CustomBoundaries(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	histogram, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:        "render_seconds",
		Description: "Render duration",
		Unit:        "s",
		Boundaries:  telemetry.GenerationDurationBuckets,
	})
	require.NoError(t, err)

	histogram.Record(ctx, 0.2)
	histogram.RecordDuration(ctx, 3*time.Second)

	hist, ok := collect(t, reader)["render_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 3.2, dp.Sum, 1e-9)
	assert.Equal(t, telemetry.GenerationDurationBuckets, dp.Bounds)
}

func TestHistogram_NoBoundaries(t *testing.T) {
	_, provider := newTestMeter(t)

	histogram, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{Name: "plain"})
	require.NoError(t, err)
	assert.NotPanics(t, func() { histogram.Record(context.Background(), 1) })
}

func TestDurationBucketsAreSorted(t *testing.T) {
	for _, buckets := range [][]float64{telemetry.HTTPDurationBuckets, telemetry.GenerationDurationBuckets} {
		for i := 1; i < len(buckets); i++ {
			assert.Less(t, buckets[i-1], buckets[i])
		}
	}
}
