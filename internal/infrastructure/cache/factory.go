package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PriceCache is an effective price cache that holds resources
type PriceCache interface {
	pricing.EffectivePriceCache
	Close() error
}

// Factory builds the configured effective price cache
type Factory struct {
	redisConfig           config.RedisConfig
	pricingConfig         config.PricingConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the caches it builds
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory backend. Default true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a cache factory
func NewFactory(redisCfg config.RedisConfig, pricingCfg config.PricingConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		pricingConfig:         pricingCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory builds the process-local backend
func (f *Factory) CreateInMemory() *InMemoryEffectivePriceCache {
	return NewInMemoryEffectivePriceCache(
		WithInMemoryTTL(f.pricingConfig.CacheTTL),
		WithInMemoryLogger(f.logger.Named("price_cache")),
	)
}

// CreateRedis connects to Redis and builds the tiered backend. The Pub/Sub
// subscription runs until ctx is cancelled.
func (f *Factory) CreateRedis(ctx context.Context) (PriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	l2 := NewRedisEffectivePriceCache(client,
		WithRedisTTL(f.pricingConfig.CacheTTL),
		WithInvalidationChannel(f.pricingConfig.InvalidationChannel),
		WithRedisLogger(f.logger.Named("price_cache")),
	)
	tiered := NewTieredEffectivePriceCache(f.CreateInMemory(), l2, f.logger.Named("price_cache"))

	subCtx, stop := context.WithCancel(ctx)
	go func() {
		if err := tiered.StartInvalidationSubscription(subCtx); err != nil && subCtx.Err() == nil {
			f.logger.Warn("Price invalidation subscription ended", zap.Error(err))
		}
	}()

	return &ownedTieredCache{TieredEffectivePriceCache: tiered, client: client, stop: stop}, nil
}

// Create builds the backend named by pricing.cache_backend, falling back to
// memory when Redis is unreachable and fallback is allowed.
func (f *Factory) Create(ctx context.Context) (PriceCache, error) {
	if f.pricingConfig.CacheBackend == "memory" {
		f.logger.Info("Using in-memory effective price cache")
		return f.CreateInMemory(), nil
	}

	c, err := f.CreateRedis(ctx)
	if err == nil {
		f.logger.Info("Using Redis effective price cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for price cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory price cache. "+
		"Other instances will not see this instance's invalidations.",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}

type ownedTieredCache struct {
	*TieredEffectivePriceCache
	client *redis.Client
	stop   context.CancelFunc
}

func (c *ownedTieredCache) Close() error {
	c.stop()
	_ = c.TieredEffectivePriceCache.Close()
	return c.client.Close()
}

// Ping checks the Redis connection behind the tiered cache
func (c *ownedTieredCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
