package resolution

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/strategy"
)

// RelativePolicy scales each child by the same ratio the target moved by,
// rounded to 2 decimal places.
type RelativePolicy struct {
	strategy.BaseStrategy
}

// NewRelativePolicy creates the relative policy
func NewRelativePolicy() *RelativePolicy {
	return &RelativePolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			pricing.StrategyRelative.String(),
			strategy.StrategyTypeResolution,
			"Scale child overrides by the ratio of new to old target price",
		),
	}
}

func (p *RelativePolicy) Strategy() pricing.ResolutionStrategy {
	return pricing.StrategyRelative
}

// Plan fails with pricing.ErrUndefinedRatio when conflicts exist but the
// target has no positive price to scale from.
func (p *RelativePolicy) Plan(_ context.Context, in pricing.ResolutionInput) (pricing.ResolutionPlan, error) {
	plan := pricing.ResolutionPlan{Strategy: pricing.StrategyRelative, WriteTarget: true}
	if len(in.Conflicts) == 0 {
		return plan, nil
	}

	if _, err := pricing.RelativeRatio(in.CurrentTargetPrice, in.NewPrice); err != nil {
		return pricing.ResolutionPlan{}, pricing.ErrUndefinedRatio.WithMessage(
			"Cannot scale child prices: context %s has no positive price for product %s", in.Target, in.ProductID)
	}
	old := *in.CurrentTargetPrice

	plan.Adjustments = make([]pricing.PriceAdjustment, 0, len(in.Conflicts))
	for _, c := range in.Conflicts {
		plan.Adjustments = append(plan.Adjustments, pricing.PriceAdjustment{
			EntryID:  c.EntryID,
			BookID:   c.BookID,
			Context:  c.Context,
			OldPrice: c.ExistingPrice,
			NewPrice: pricing.ScaleByRatio(c.ExistingPrice, old, in.NewPrice),
		})
	}
	return plan, nil
}
