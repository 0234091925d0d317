package cache

import (
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	keyPrefix     = "pricing:effective"
	unsetSegment  = "-"
	matchAny      = "*"
	scanBatchSize = 100
)

// PriceKey returns the cache key for a product resolved in requested:
// pricing:effective:{zone|-}:{segment|-}:{product}
func PriceKey(requested pricing.Context, productID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix,
		idOr(requested.ZoneRef(), unsetSegment),
		idOr(requested.SegmentRef(), unsetSegment),
		productID)
}

// InvalidationPattern returns the glob matching every key req can affect.
// Identifiers the request leaves unset match any value, including "-".
func InvalidationPattern(req pricing.InvalidationRequest) string {
	if req.Scope == pricing.InvalidateAll {
		return keyPrefix + ":*"
	}
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix,
		idOr(req.ZoneID, matchAny),
		idOr(req.SegmentID, matchAny),
		idOr(req.ProductID, matchAny))
}

func idOr(id *uuid.UUID, fallback string) string {
	if id == nil || *id == uuid.Nil {
		return fallback
	}
	return id.String()
}

// cachedPrice is the wire form of an EffectivePrice. Contexts are flattened
// to nullable ids since pricing.Context has no JSON form of its own.
type cachedPrice struct {
	ProductID        uuid.UUID       `json:"product_id"`
	RequestedZone    *uuid.UUID      `json:"requested_zone_id,omitempty"`
	RequestedSegment *uuid.UUID      `json:"requested_segment_id,omitempty"`
	SourceZone       *uuid.UUID      `json:"source_zone_id,omitempty"`
	SourceSegment    *uuid.UUID      `json:"source_segment_id,omitempty"`
	BookID           uuid.UUID       `json:"book_id"`
	BookName         string          `json:"book_name"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	CachedAt         time.Time       `json:"cached_at"`
}

func toCached(p *pricing.EffectivePrice) cachedPrice {
	return cachedPrice{
		ProductID:        p.ProductID,
		RequestedZone:    p.Requested.ZoneRef(),
		RequestedSegment: p.Requested.SegmentRef(),
		SourceZone:       p.Source.ZoneRef(),
		SourceSegment:    p.Source.SegmentRef(),
		BookID:           p.BookID,
		BookName:         p.BookName,
		Price:            p.Price,
		Currency:         p.Currency,
		CachedAt:         time.Now().UTC(),
	}
}

func (c cachedPrice) toDomain() *pricing.EffectivePrice {
	return &pricing.EffectivePrice{
		ProductID: c.ProductID,
		Requested: pricing.NewContext(c.RequestedZone, c.RequestedSegment),
		Source:    pricing.NewContext(c.SourceZone, c.SourceSegment),
		BookID:    c.BookID,
		BookName:  c.BookName,
		Price:     c.Price,
		Currency:  c.Currency,
	}
}
