package pricing

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConflictDetector finds child overrides that a write would shadow
type ConflictDetector struct{}

// NewConflictDetector creates a new ConflictDetector
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Detect loads every active entry of the product in one query and keeps the
// ones living strictly below target. Zone+segment is the most specific
// context and never has children, so it skips the query.
func (d *ConflictDetector) Detect(
	ctx context.Context,
	repos pricing.Repositories,
	target pricing.Context,
	productID uuid.UUID,
	newPrice decimal.Decimal,
) (pricing.Detection, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "conflict_detector", "detect",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID),
		telemetry.WithAttribute(telemetry.SpanAttrContextKey, target.Key()),
	)
	defer span.End()

	if target.Scope() == pricing.ScopeZoneSegment {
		return pricing.FindConflicts(target, productID, newPrice, nil), nil
	}

	entries, err := repos.Entries.FindActiveByProduct(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return pricing.Detection{}, err
	}

	detection := pricing.FindConflicts(target, productID, newPrice, entries)
	telemetry.SetAttributes(span, telemetry.SpanAttrConflictCount, len(detection.Conflicts))
	return detection, nil
}
