package pricing

import (
	"context"
	"fmt"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ResolutionOutcome is what applying a plan changed
type ResolutionOutcome struct {
	Plan     pricing.ResolutionPlan
	Deleted  int64
	Adjusted int
}

// ResolutionEngine plans conflict resolution through the registered
// policies and applies the resulting plans to storage
type ResolutionEngine struct {
	strategies StrategyProvider
	metrics    UpdateMetrics
	logger     *zap.Logger
}

// NewResolutionEngine creates a new ResolutionEngine. metrics may be nil.
func NewResolutionEngine(strategies StrategyProvider, metrics UpdateMetrics, logger *zap.Logger) *ResolutionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolutionEngine{
		strategies: strategies,
		metrics:    metrics,
		logger:     logger,
	}
}

// Plan asks the policy registered for strategy what to do, without writing
func (e *ResolutionEngine) Plan(ctx context.Context, strategy pricing.ResolutionStrategy, in pricing.ResolutionInput) (pricing.ResolutionPlan, error) {
	policy, err := e.strategies.GetResolutionPolicy(strategy.String())
	if err != nil {
		return pricing.ResolutionPlan{}, err
	}
	return policy.Plan(ctx, in)
}

// Apply executes the child deletions and rescales of a plan. Books are
// never removed; only entries.
func (e *ResolutionEngine) Apply(ctx context.Context, repos pricing.Repositories, plan pricing.ResolutionPlan) (ResolutionOutcome, error) {
	out := ResolutionOutcome{Plan: plan}
	if plan.RequiresDecision {
		return out, nil
	}

	if len(plan.DeleteEntryIDs) > 0 {
		n, err := repos.Entries.DeleteByIDs(ctx, plan.DeleteEntryIDs)
		if err != nil {
			return out, fmt.Errorf("failed to delete conflicting entries: %w", err)
		}
		out.Deleted = n
	}

	for _, adj := range plan.Adjustments {
		if err := pricing.ValidatePrice(adj.NewPrice); err != nil {
			return out, err
		}
		if err := repos.Entries.UpdatePrice(ctx, adj.EntryID, adj.NewPrice); err != nil {
			return out, fmt.Errorf("failed to rescale entry %s: %w", adj.EntryID, err)
		}
		out.Adjusted++
	}
	return out, nil
}

// Resolve plans and, unless the policy asks for a decision, applies the
// plan. Metrics are only recorded when there was something to resolve.
func (e *ResolutionEngine) Resolve(
	ctx context.Context,
	repos pricing.Repositories,
	strategy pricing.ResolutionStrategy,
	in pricing.ResolutionInput,
) (ResolutionOutcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolution_engine", "resolve")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrStrategy, strategy.String(),
		telemetry.SpanAttrProductID, in.ProductID.String(),
		telemetry.SpanAttrContextKey, in.Target.Key(),
		telemetry.SpanAttrConflictCount, len(in.Conflicts),
	)

	plan, err := e.Plan(ctx, strategy, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return ResolutionOutcome{}, err
	}

	out, err := e.Apply(ctx, repos, plan)
	if err != nil {
		telemetry.RecordError(span, err)
		return out, err
	}

	if len(in.Conflicts) > 0 && !plan.RequiresDecision {
		if e.metrics != nil {
			e.metrics.RecordResolution(ctx, plan.Strategy.String())
		}
		e.logger.Debug("Resolved child price conflicts",
			zap.String("strategy", plan.Strategy.String()),
			zap.String("product_id", in.ProductID.String()),
			zap.String("context", in.Target.Key()),
			zap.Int("conflicts", len(in.Conflicts)),
			zap.Int64("deleted", out.Deleted),
			zap.Int("adjusted", out.Adjusted),
		)
	}
	telemetry.SetOK(span)
	return out, nil
}

// Strategies lists the registered policies, flagging the default
func (e *ResolutionEngine) Strategies() []StrategyResponse {
	def := e.strategies.DefaultResolutionStrategy()
	policies := e.strategies.ListResolutionPolicies()
	out := make([]StrategyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, StrategyResponse{
			Name:        p.Name(),
			Description: p.Description(),
			IsDefault:   p.Strategy() == def,
		})
	}
	return out
}
