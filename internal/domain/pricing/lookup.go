package pricing

import (
	"context"

	"github.com/google/uuid"
)

// Product is the slice of a catalog product pricing cares about
type Product struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Zone is a pricing zone (geographic or channel market)
type Zone struct {
	ID           uuid.UUID
	Name         string
	CurrencyCode string
}

// Segment is a customer segment
type Segment struct {
	ID   uuid.UUID
	Name string
}

// CatalogLookup reads products. Missing products return shared.ErrNotFound.
type CatalogLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

// ZoneLookup reads zones. Missing zones return shared.ErrNotFound.
type ZoneLookup interface {
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
}

// SegmentLookup reads customer segments. Missing segments return shared.ErrNotFound.
type SegmentLookup interface {
	GetSegment(ctx context.Context, id uuid.UUID) (*Segment, error)
}
