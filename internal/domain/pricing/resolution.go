package pricing

import (
	"context"
	"strings"

	"github.com/erp/pricing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ResolutionStrategy names the policy applied to conflicting child prices
type ResolutionStrategy string

const (
	StrategyAsk       ResolutionStrategy = "ASK"
	StrategyOverwrite ResolutionStrategy = "OVERWRITE"
	StrategyPreserve  ResolutionStrategy = "PRESERVE"
	StrategyRelative  ResolutionStrategy = "RELATIVE"
)

// String returns the string representation of the strategy
func (s ResolutionStrategy) String() string {
	return string(s)
}

// IsValid returns true for the four known strategies
func (s ResolutionStrategy) IsValid() bool {
	switch s {
	case StrategyAsk, StrategyOverwrite, StrategyPreserve, StrategyRelative:
		return true
	default:
		return false
	}
}

// ParseResolutionStrategy accepts any letter case. Empty input is rejected;
// callers substitute their configured default before parsing.
func ParseResolutionStrategy(s string) (ResolutionStrategy, error) {
	rs := ResolutionStrategy(strings.ToUpper(strings.TrimSpace(s)))
	if !rs.IsValid() {
		return "", ErrInvalidStrategy.WithMessage("Unknown conflict resolution strategy '%s'", s)
	}
	return rs, nil
}

// AllResolutionStrategies returns every strategy in presentation order
func AllResolutionStrategies() []ResolutionStrategy {
	return []ResolutionStrategy{StrategyAsk, StrategyOverwrite, StrategyPreserve, StrategyRelative}
}

// DecisiveStrategies are the strategies a caller can pick after ASK
func DecisiveStrategies() []ResolutionStrategy {
	return []ResolutionStrategy{StrategyOverwrite, StrategyPreserve, StrategyRelative}
}

// RelativeRatio returns newPrice / oldPrice. A missing or zero old price
// leaves the ratio undefined.
func RelativeRatio(oldPrice *decimal.Decimal, newPrice decimal.Decimal) (decimal.Decimal, error) {
	if oldPrice == nil || !oldPrice.IsPositive() {
		return decimal.Zero, ErrUndefinedRatio
	}
	return newPrice.Div(*oldPrice), nil
}

// ScaleByRatio scales price by newTarget/oldTarget and rounds to 2 places.
// Multiplying before dividing keeps exact ratios like 110/100 exact.
func ScaleByRatio(price, oldTarget, newTarget decimal.Decimal) decimal.Decimal {
	return price.Mul(newTarget).Div(oldTarget).Round(2)
}

// PriceAdjustment is a planned rewrite of one child entry
type PriceAdjustment struct {
	EntryID  uuid.UUID
	BookID   uuid.UUID
	Context  Context
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
}

// ResolutionInput is everything a policy needs to plan one item
type ResolutionInput struct {
	Target    Context
	ProductID uuid.UUID
	NewPrice  decimal.Decimal
	// CurrentTargetPrice is the entry already stored at Target, if any
	CurrentTargetPrice *decimal.Decimal
	Conflicts          []ConflictRecord
}

// ResolutionPlan is what a policy decided. Policies never touch storage; the
// resolution engine applies the plan.
type ResolutionPlan struct {
	Strategy         ResolutionStrategy
	WriteTarget      bool
	DeleteEntryIDs   []uuid.UUID
	Adjustments      []PriceAdjustment
	RequiresDecision bool
	ValidStrategies  []ResolutionStrategy
}

// ResolutionPolicy plans how to treat conflicting child prices
type ResolutionPolicy interface {
	strategy.Strategy
	// Strategy returns the identifier the policy answers to
	Strategy() ResolutionStrategy
	// Plan computes the outcome for one item without side effects
	Plan(ctx context.Context, in ResolutionInput) (ResolutionPlan, error)
}
