package cache

import (
	"context"
	"sync/atomic"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TieredEffectivePriceCache reads through a local L1 to the shared Redis L2.
// Peer invalidations arrive over Pub/Sub and clear L1 only.
type TieredEffectivePriceCache struct {
	l1     *InMemoryEffectivePriceCache
	l2     *RedisEffectivePriceCache
	logger *zap.Logger

	l1Hits int64
	l2Hits int64
	misses int64
}

// NewTieredEffectivePriceCache combines l1 and l2
func NewTieredEffectivePriceCache(l1 *InMemoryEffectivePriceCache, l2 *RedisEffectivePriceCache, logger *zap.Logger) *TieredEffectivePriceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredEffectivePriceCache{l1: l1, l2: l2, logger: logger}
}

// Get implements pricing.EffectivePriceCache. An L2 failure degrades to a
// miss so reads fall through to the database.
func (c *TieredEffectivePriceCache) Get(ctx context.Context, requested pricing.Context, productID uuid.UUID) (*pricing.EffectivePrice, bool, error) {
	if p, ok, _ := c.l1.Get(ctx, requested, productID); ok {
		atomic.AddInt64(&c.l1Hits, 1)
		return p, true, nil
	}

	p, ok, err := c.l2.Get(ctx, requested, productID)
	if err != nil {
		c.logger.Warn("L2 price cache read failed", zap.Error(err))
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}

	atomic.AddInt64(&c.l2Hits, 1)
	_ = c.l1.Set(ctx, p)
	return p, true, nil
}

// Set writes both tiers
func (c *TieredEffectivePriceCache) Set(ctx context.Context, price *pricing.EffectivePrice) error {
	_ = c.l1.Set(ctx, price)
	return c.l2.Set(ctx, price)
}

// Invalidate clears L1 then L2; L2 broadcasts to peers
func (c *TieredEffectivePriceCache) Invalidate(ctx context.Context, req pricing.InvalidationRequest) error {
	_ = c.l1.Invalidate(ctx, req)
	return c.l2.Invalidate(ctx, req)
}

// StartInvalidationSubscription blocks applying peer invalidations to L1
// until ctx is cancelled.
func (c *TieredEffectivePriceCache) StartInvalidationSubscription(ctx context.Context) error {
	return c.l2.Subscribe(ctx, func(req pricing.InvalidationRequest) {
		_ = c.l1.Invalidate(ctx, req)
	})
}

// Stats returns L1 hits, L2 hits and misses
func (c *TieredEffectivePriceCache) Stats() (l1Hits, l2Hits, misses int64) {
	return atomic.LoadInt64(&c.l1Hits), atomic.LoadInt64(&c.l2Hits), atomic.LoadInt64(&c.misses)
}

// Close stops the L1 sweeper
func (c *TieredEffectivePriceCache) Close() error {
	return c.l1.Close()
}

var _ pricing.EffectivePriceCache = (*TieredEffectivePriceCache)(nil)
