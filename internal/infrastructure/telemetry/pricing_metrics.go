package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// PricingMetrics records batch update outcomes and effective-price lookups.
type PricingMetrics struct {
	updatesApplied    *Counter
	updatesSkipped    *Counter
	updatesFailed     *Counter
	conflictsDetected *Counter
	resolutions       *Counter
	cacheLookups      *Counter
	batchDuration     *Histogram
}

// NewPricingMetrics registers the pricing instruments on meter.
func NewPricingMetrics(meter metric.Meter) (*PricingMetrics, error) {
	var (
		m   PricingMetrics
		err error
	)
	counters := []struct {
		dst                     **Counter
		name, description, unit string
	}{
		{&m.updatesApplied, "pricing_updates_applied_total", "Price entries written by batch updates", "{entry}"},
		{&m.updatesSkipped, "pricing_updates_skipped_total", "Batch items skipped pending a resolution decision", "{item}"},
		{&m.updatesFailed, "pricing_updates_failed_total", "Batch items that failed", "{item}"},
		{&m.conflictsDetected, "pricing_conflicts_detected_total", "Descendant overrides found during updates", "{conflict}"},
		{&m.resolutions, "pricing_resolutions_total", "Conflict resolutions by strategy", "{resolution}"},
		{&m.cacheLookups, "pricing_effective_cache_lookups_total", "Effective price cache lookups by outcome", "{lookup}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.description, c.unit); err != nil {
			return nil, err
		}
	}

	m.batchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "pricing_update_batch_duration_seconds",
		Description: "Wall time of a price update batch",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordBatch records the outcome counts of one update batch.
func (m *PricingMetrics) RecordBatch(ctx context.Context, shape string, updated, skipped, failed, conflicts int, elapsed time.Duration) {
	shapeAttr := AttrShape.String(shape)
	m.updatesApplied.Add(ctx, int64(updated), shapeAttr)
	m.updatesSkipped.Add(ctx, int64(skipped), shapeAttr)
	m.updatesFailed.Add(ctx, int64(failed), shapeAttr)
	m.conflictsDetected.Add(ctx, int64(conflicts), shapeAttr)
	m.batchDuration.RecordDuration(ctx, elapsed, shapeAttr)
}

// RecordResolution counts one applied resolution.
func (m *PricingMetrics) RecordResolution(ctx context.Context, strategy string) {
	m.resolutions.Inc(ctx, AttrStrategy.String(strategy))
}

// RecordCacheLookup counts an effective price cache hit or miss.
func (m *PricingMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.Inc(ctx, AttrOutcome.String(outcome))
}
