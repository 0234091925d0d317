package resolution

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/strategy"
)

// PreservePolicy writes the target and leaves child overrides as they are
type PreservePolicy struct {
	strategy.BaseStrategy
}

// NewPreservePolicy creates the preserve policy
func NewPreservePolicy() *PreservePolicy {
	return &PreservePolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			pricing.StrategyPreserve.String(),
			strategy.StrategyTypeResolution,
			"Keep child overrides unchanged",
		),
	}
}

func (p *PreservePolicy) Strategy() pricing.ResolutionStrategy {
	return pricing.StrategyPreserve
}

func (p *PreservePolicy) Plan(_ context.Context, _ pricing.ResolutionInput) (pricing.ResolutionPlan, error) {
	return pricing.ResolutionPlan{Strategy: pricing.StrategyPreserve, WriteTarget: true}, nil
}
