package resolution

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/strategy"
)

// AskPolicy never mutates anything. It reports the conflicts and the
// strategies the caller can retry with.
type AskPolicy struct {
	strategy.BaseStrategy
}

// NewAskPolicy creates the advisory policy
func NewAskPolicy() *AskPolicy {
	return &AskPolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			pricing.StrategyAsk.String(),
			strategy.StrategyTypeResolution,
			"Report conflicting child prices and let the caller choose",
		),
	}
}

func (p *AskPolicy) Strategy() pricing.ResolutionStrategy {
	return pricing.StrategyAsk
}

// Plan returns a decision request when conflicts exist, otherwise a plain write
func (p *AskPolicy) Plan(_ context.Context, in pricing.ResolutionInput) (pricing.ResolutionPlan, error) {
	if len(in.Conflicts) == 0 {
		return pricing.ResolutionPlan{Strategy: pricing.StrategyAsk, WriteTarget: true}, nil
	}
	return pricing.ResolutionPlan{
		Strategy:         pricing.StrategyAsk,
		RequiresDecision: true,
		ValidStrategies:  pricing.DecisiveStrategies(),
	}, nil
}
