package pricing

import (
	"context"
	"testing"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionEngine_Strategies(t *testing.T) {
	env := newTestEnv(t)

	list := env.engine.Strategies()
	require.Len(t, list, 4)

	defaults := 0
	for _, s := range list {
		assert.NotEmpty(t, s.Description)
		if s.IsDefault {
			defaults++
			assert.Equal(t, "ASK", s.Name)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestResolutionEngine_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("ask never writes", func(t *testing.T) {
		env := newTestEnv(t)
		s := seedLattice(t, env)
		detection, err := NewConflictDetector().Detect(ctx, env.store.repos(), pricing.ZoneContext(s.zoneID), s.productID, price("10"))
		require.NoError(t, err)

		out, err := env.engine.Resolve(ctx, env.store.repos(), pricing.StrategyAsk, pricing.ResolutionInput{
			Target:    pricing.ZoneContext(s.zoneID),
			ProductID: s.productID,
			NewPrice:  price("10"),
			Conflicts: detection.Conflicts,
		})
		require.NoError(t, err)
		assert.True(t, out.Plan.RequiresDecision)
		assert.False(t, out.Plan.WriteTarget)
		assert.Zero(t, out.Deleted)
		assert.Zero(t, out.Adjusted)

		got, _ := env.store.priceAt(pricing.ZoneSegmentContext(s.zoneID, s.segmentID), s.productID)
		assert.True(t, got.Equal(price("150")))
	})

	t.Run("unknown strategy", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.engine.Resolve(ctx, env.store.repos(), pricing.ResolutionStrategy("MERGE"), pricing.ResolutionInput{
			ProductID: uuid.New(),
		})
		assert.ErrorIs(t, err, pricing.ErrInvalidStrategy)
	})

	t.Run("relative rescales every child", func(t *testing.T) {
		env := newTestEnv(t)
		s := seedLattice(t, env)
		detection, err := NewConflictDetector().Detect(ctx, env.store.repos(), pricing.MasterContext(), s.productID, price("110"))
		require.NoError(t, err)
		require.Len(t, detection.Conflicts, 2)

		current := price("100")
		out, err := env.engine.Resolve(ctx, env.store.repos(), pricing.StrategyRelative, pricing.ResolutionInput{
			Target:             pricing.MasterContext(),
			ProductID:          s.productID,
			NewPrice:           price("110"),
			CurrentTargetPrice: &current,
			Conflicts:          detection.Conflicts,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Adjusted)

		got, _ := env.store.priceAt(pricing.ZoneContext(s.zoneID), s.productID)
		assert.True(t, got.Equal(price("132")), "got %s", got)
		got, _ = env.store.priceAt(pricing.ZoneSegmentContext(s.zoneID, s.segmentID), s.productID)
		assert.True(t, got.Equal(price("165")), "got %s", got)
		assert.Equal(t, 1, env.metrics.resolutions["RELATIVE"])
	})
}
