package pricing

import (
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateItem is one price change. ZoneID and SegmentID are only set for
// per-cell batches; other items inherit the request context.
type UpdateItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	NewPrice  decimal.Decimal `json:"new_price"`
	ZoneID    *uuid.UUID      `json:"zone_id"`
	SegmentID *uuid.UUID      `json:"segment_id"`
}

// ApplyUpdateRequest represents a batch of price changes
type ApplyUpdateRequest struct {
	ZoneID    *uuid.UUID   `json:"zone_id"`
	SegmentID *uuid.UUID   `json:"segment_id"`
	Items     []UpdateItem `json:"items" binding:"required,min=1,max=1000"`
	// ApplyToAllSegments drops the segment so the write lands on the zone
	ApplyToAllSegments bool `json:"apply_to_all_segments"`
	// Strategy is ASK, OVERWRITE, PRESERVE or RELATIVE; empty uses the default
	Strategy string `json:"strategy" binding:"omitempty,max=20"`
}

// ItemStatus is the outcome of one item
type ItemStatus string

const (
	ItemUpdated ItemStatus = "updated"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// ConflictResponse represents a conflicting child price in API responses
type ConflictResponse struct {
	EntryID         uuid.UUID       `json:"entry_id"`
	BookID          uuid.UUID       `json:"book_id"`
	BookName        string          `json:"book_name"`
	Scope           string          `json:"scope"`
	ZoneID          *uuid.UUID      `json:"zone_id,omitempty"`
	SegmentID       *uuid.UUID      `json:"segment_id,omitempty"`
	ProductID       uuid.UUID       `json:"product_id"`
	ExistingPrice   decimal.Decimal `json:"existing_price"`
	NewPrice        decimal.Decimal `json:"new_price"`
	PriceDifference decimal.Decimal `json:"price_difference"`
}

// ItemResult reports what happened to one item
type ItemResult struct {
	ProductID     uuid.UUID          `json:"product_id"`
	ZoneID        *uuid.UUID         `json:"zone_id,omitempty"`
	SegmentID     *uuid.UUID         `json:"segment_id,omitempty"`
	Status        ItemStatus         `json:"status"`
	Price         decimal.Decimal    `json:"price"`
	BookID        *uuid.UUID         `json:"book_id,omitempty"`
	Strategy      string             `json:"strategy,omitempty"`
	Conflicts     []ConflictResponse `json:"conflicts,omitempty"`
	DeletedCount  int64              `json:"deleted_count,omitempty"`
	AdjustedCount int                `json:"adjusted_count,omitempty"`
	Reason        string             `json:"reason,omitempty"`
}

// ItemFailure is an item-level error
type ItemFailure struct {
	ProductID      uuid.UUID       `json:"product_id"`
	ZoneID         *uuid.UUID      `json:"zone_id,omitempty"`
	SegmentID      *uuid.UUID      `json:"segment_id,omitempty"`
	AttemptedPrice decimal.Decimal `json:"attempted_price"`
	Code           string          `json:"code"`
	Reason         string          `json:"reason"`
}

// BatchResult summarizes an ApplyUpdate call. Success is false only when no
// item was written.
type BatchResult struct {
	Success            bool               `json:"success"`
	Shape              string             `json:"shape"`
	Strategy           string             `json:"strategy"`
	UpdatedCount       int                `json:"updated_count"`
	SkippedCount       int                `json:"skipped_count"`
	FailedCount        int                `json:"failed_count"`
	ConflictsDetected  int                `json:"conflicts_detected"`
	Conflicts          []ConflictResponse `json:"conflicts"`
	RequiresResolution bool               `json:"requires_resolution"`
	ValidStrategies    []string           `json:"valid_strategies,omitempty"`
	Items              []ItemResult       `json:"items"`
	Failures           []ItemFailure      `json:"failures"`
	Warnings           []string           `json:"warnings,omitempty"`
}

// PreviewItem is the detection result for one item
type PreviewItem struct {
	ProductID    uuid.UUID          `json:"product_id"`
	ZoneID       *uuid.UUID         `json:"zone_id,omitempty"`
	SegmentID    *uuid.UUID         `json:"segment_id,omitempty"`
	NewPrice     decimal.Decimal    `json:"new_price"`
	HasConflicts bool               `json:"has_conflicts"`
	Conflicts    []ConflictResponse `json:"conflicts"`
}

// PreviewResult is the detection-only view of a batch
type PreviewResult struct {
	Shape             string        `json:"shape"`
	HasConflicts      bool          `json:"has_conflicts"`
	ConflictsDetected int           `json:"conflicts_detected"`
	Items             []PreviewItem `json:"items"`
	Failures          []ItemFailure `json:"failures"`
	ValidStrategies   []string      `json:"valid_strategies"`
}

// BookResponse represents a price book in API responses
type BookResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Scope        string     `json:"scope"`
	ZoneID       *uuid.UUID `json:"zone_id,omitempty"`
	SegmentID    *uuid.UUID `json:"segment_id,omitempty"`
	ParentBookID *uuid.UUID `json:"parent_book_id,omitempty"`
	IsMaster     bool       `json:"is_master"`
	IsOverride   bool       `json:"is_override"`
	IsActive     bool       `json:"is_active"`
	Currency     string     `json:"currency"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EffectivePriceResponse represents a resolved price
type EffectivePriceResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ZoneID      *uuid.UUID      `json:"zone_id,omitempty"`
	SegmentID   *uuid.UUID      `json:"segment_id,omitempty"`
	SourceScope string          `json:"source_scope"`
	BookID      uuid.UUID       `json:"book_id"`
	BookName    string          `json:"book_name"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

// ResultError is a per-product error inside a bulk response
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkEffectivePrice holds either a price or the reason there is none
type BulkEffectivePrice struct {
	ProductID uuid.UUID               `json:"product_id"`
	Price     *EffectivePriceResponse `json:"price,omitempty"`
	Error     *ResultError            `json:"error,omitempty"`
}

// BulkEffectivePriceRequest asks for several products in one context
type BulkEffectivePriceRequest struct {
	ZoneID     *uuid.UUID  `json:"zone_id"`
	SegmentID  *uuid.UUID  `json:"segment_id"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1,max=500"`
}

// StrategyResponse describes a registered resolution policy
type StrategyResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

// ToConflictResponse converts a domain conflict record
func ToConflictResponse(c pricing.ConflictRecord) ConflictResponse {
	return ConflictResponse{
		EntryID:         c.EntryID,
		BookID:          c.BookID,
		BookName:        c.BookName,
		Scope:           c.Context.Scope().String(),
		ZoneID:          c.Context.ZoneRef(),
		SegmentID:       c.Context.SegmentRef(),
		ProductID:       c.ProductID,
		ExistingPrice:   c.ExistingPrice,
		NewPrice:        c.NewPrice,
		PriceDifference: c.PriceDifference,
	}
}

// ToConflictResponses converts a slice of conflict records
func ToConflictResponses(cs []pricing.ConflictRecord) []ConflictResponse {
	out := make([]ConflictResponse, len(cs))
	for i, c := range cs {
		out[i] = ToConflictResponse(c)
	}
	return out
}

// ToBookResponse converts a domain price book
func ToBookResponse(b *pricing.PriceBook) BookResponse {
	return BookResponse{
		ID:           b.ID,
		Name:         b.Name,
		Scope:        b.Scope().String(),
		ZoneID:       b.Context.ZoneRef(),
		SegmentID:    b.Context.SegmentRef(),
		ParentBookID: b.ParentBookID,
		IsMaster:     b.IsMaster,
		IsOverride:   b.IsOverride,
		IsActive:     b.IsActive,
		Currency:     b.Currency,
		Version:      b.Version,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// ToEffectivePriceResponse converts a resolved domain price
func ToEffectivePriceResponse(p *pricing.EffectivePrice) *EffectivePriceResponse {
	return &EffectivePriceResponse{
		ProductID:   p.ProductID,
		ZoneID:      p.Requested.ZoneRef(),
		SegmentID:   p.Requested.SegmentRef(),
		SourceScope: p.Source.Scope().String(),
		BookID:      p.BookID,
		BookName:    p.BookName,
		Price:       p.Price,
		Currency:    p.Currency,
	}
}

func strategyNames(ss []pricing.ResolutionStrategy) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.String()
	}
	return out
}
