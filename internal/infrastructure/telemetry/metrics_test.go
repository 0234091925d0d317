package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, attr attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounter_IgnoresNonPositive(t *testing.T) {
	reader, mp := newManualMeter(t)
	c, err := NewCounter(mp.Meter("test"), "test_total", "test", "1")
	require.NoError(t, err)

	c.Add(context.Background(), 0)
	c.Add(context.Background(), -3)
	c.Add(context.Background(), 2, AttrScope.String("zone"))
	c.Inc(context.Background(), AttrScope.String("zone"))

	data := collect(t, reader)
	assert.Equal(t, int64(3), sumFor(t, data["test_total"], AttrScope.String("zone")))
}

func TestPricingMetrics(t *testing.T) {
	reader, mp := newManualMeter(t)
	m, err := NewPricingMetrics(mp.Meter("pricing"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBatch(ctx, "zone", 4, 1, 0, 3, 25*time.Millisecond)
	m.RecordResolution(ctx, "OVERWRITE")
	m.RecordResolution(ctx, "OVERWRITE")
	m.RecordResolution(ctx, "RELATIVE")
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
	m.RecordCacheLookup(ctx, false)

	data := collect(t, reader)
	zone := AttrShape.String("zone")
	assert.Equal(t, int64(4), sumFor(t, data["pricing_updates_applied_total"], zone))
	assert.Equal(t, int64(1), sumFor(t, data["pricing_updates_skipped_total"], zone))
	assert.Equal(t, int64(3), sumFor(t, data["pricing_conflicts_detected_total"], zone))
	assert.Equal(t, int64(2), sumFor(t, data["pricing_resolutions_total"], AttrStrategy.String("OVERWRITE")))
	assert.Equal(t, int64(1), sumFor(t, data["pricing_resolutions_total"], AttrStrategy.String("RELATIVE")))
	assert.Equal(t, int64(2), sumFor(t, data["pricing_effective_cache_lookups_total"], AttrOutcome.String("miss")))
	assert.NotContains(t, data, "pricing_updates_failed_total")

	hist, ok := data["pricing_update_batch_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
