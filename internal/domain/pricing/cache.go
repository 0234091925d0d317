package pricing

import (
	"context"

	"github.com/google/uuid"
)

// InvalidationScope is the breadth of a cache invalidation
type InvalidationScope string

const (
	InvalidateAll     InvalidationScope = "all"
	InvalidateZone    InvalidationScope = "zone"
	InvalidateSegment InvalidationScope = "segment"
	InvalidateProduct InvalidationScope = "product"
)

// InvalidationRequest names what changed. Unset identifiers match anything;
// InvalidateAll ignores identifiers entirely.
type InvalidationRequest struct {
	Scope     InvalidationScope `json:"scope"`
	ZoneID    *uuid.UUID        `json:"zone_id,omitempty"`
	SegmentID *uuid.UUID        `json:"segment_id,omitempty"`
	ProductID *uuid.UUID        `json:"product_id,omitempty"`
}

// InvalidationFor maps a write at ctx for a product to the request that
// clears every effective price it can influence. Master writes flush all.
func InvalidationFor(ctx Context, productID uuid.UUID) InvalidationRequest {
	req := InvalidationForContext(ctx)
	if req.Scope != InvalidateAll {
		req.ProductID = &productID
	}
	return req
}

// InvalidationForContext clears every product below ctx, used when a whole
// book changes state
func InvalidationForContext(ctx Context) InvalidationRequest {
	if ctx.IsMaster() {
		return InvalidationRequest{Scope: InvalidateAll}
	}
	req := InvalidationRequest{
		ZoneID:    ctx.ZoneRef(),
		SegmentID: ctx.SegmentRef(),
	}
	if ctx.HasZone() {
		req.Scope = InvalidateZone
	} else {
		req.Scope = InvalidateSegment
	}
	return req
}

// CacheInvalidator clears cached prices after a write
type CacheInvalidator interface {
	Invalidate(ctx context.Context, req InvalidationRequest) error
}

// EffectivePriceCache is a read-through cache for resolved prices
type EffectivePriceCache interface {
	CacheInvalidator
	// Get returns the cached price; the bool is false on a miss
	Get(ctx context.Context, requested Context, productID uuid.UUID) (*EffectivePrice, bool, error)
	Set(ctx context.Context, price *EffectivePrice) error
}
