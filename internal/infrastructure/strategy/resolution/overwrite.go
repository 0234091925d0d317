package resolution

import (
	"context"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared/strategy"
	"github.com/google/uuid"
)

// OverwritePolicy deletes every conflicting child entry so the new price
// flows down through inheritance.
type OverwritePolicy struct {
	strategy.BaseStrategy
}

// NewOverwritePolicy creates the overwrite policy
func NewOverwritePolicy() *OverwritePolicy {
	return &OverwritePolicy{
		BaseStrategy: strategy.NewBaseStrategy(
			pricing.StrategyOverwrite.String(),
			strategy.StrategyTypeResolution,
			"Remove child overrides so they inherit the new price",
		),
	}
}

func (p *OverwritePolicy) Strategy() pricing.ResolutionStrategy {
	return pricing.StrategyOverwrite
}

// Plan deletes each conflicting entry and writes the target
func (p *OverwritePolicy) Plan(_ context.Context, in pricing.ResolutionInput) (pricing.ResolutionPlan, error) {
	ids := make([]uuid.UUID, 0, len(in.Conflicts))
	for _, c := range in.Conflicts {
		ids = append(ids, c.EntryID)
	}
	return pricing.ResolutionPlan{
		Strategy:       pricing.StrategyOverwrite,
		WriteTarget:    true,
		DeleteEntryIDs: ids,
	}, nil
}
