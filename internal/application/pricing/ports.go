package pricing

import (
	"context"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
)

// StrategyProvider looks up resolution policies by name.
// This decouples the services from the concrete StrategyRegistry.
type StrategyProvider interface {
	// GetResolutionPolicy returns the named policy, the default one for ""
	GetResolutionPolicy(name string) (pricing.ResolutionPolicy, error)
	DefaultResolutionStrategy() pricing.ResolutionStrategy
	ListResolutionPolicies() []pricing.ResolutionPolicy
}

// UpdateMetrics records write-path outcomes. A nil UpdateMetrics is a no-op.
type UpdateMetrics interface {
	RecordBatch(ctx context.Context, shape string, updated, skipped, failed, conflicts int, elapsed time.Duration)
	RecordResolution(ctx context.Context, strategy string)
}

// CacheMetrics records effective price cache lookups
type CacheMetrics interface {
	RecordCacheLookup(ctx context.Context, hit bool)
}

// ReferenceLookup bundles the read-only collaborators used for validation
// and book naming
type ReferenceLookup interface {
	pricing.CatalogLookup
	pricing.ZoneLookup
	pricing.SegmentLookup
}
