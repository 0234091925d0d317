package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultInvalidationChannel carries JSON-encoded invalidation requests
const DefaultInvalidationChannel = "pricing:invalidations"

// RedisEffectivePriceCache stores resolved prices in Redis. Invalidations
// delete matching keys with SCAN + UNLINK and are then broadcast on a
// Pub/Sub channel so peers can drop their local copies.
type RedisEffectivePriceCache struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
	logger  *zap.Logger
}

// RedisOption configures a RedisEffectivePriceCache
type RedisOption func(*RedisEffectivePriceCache)

// WithRedisTTL sets the key lifetime
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisEffectivePriceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInvalidationChannel sets the Pub/Sub channel name
func WithInvalidationChannel(channel string) RedisOption {
	return func(c *RedisEffectivePriceCache) {
		if channel != "" {
			c.channel = channel
		}
	}
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(c *RedisEffectivePriceCache) {
		c.logger = logger
	}
}

// NewRedisEffectivePriceCache wraps an existing client. The caller keeps
// ownership of the client.
func NewRedisEffectivePriceCache(client *redis.Client, opts ...RedisOption) *RedisEffectivePriceCache {
	c := &RedisEffectivePriceCache{
		client:  client,
		ttl:     10 * time.Minute,
		channel: DefaultInvalidationChannel,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements pricing.EffectivePriceCache
func (c *RedisEffectivePriceCache) Get(ctx context.Context, requested pricing.Context, productID uuid.UUID) (*pricing.EffectivePrice, bool, error) {
	key := PriceKey(requested, productID)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get effective price from cache: %w", err)
	}

	var cached cachedPrice
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupt entries are dropped and reported as a miss.
		c.logger.Warn("Dropping unreadable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, false, nil
	}
	return cached.toDomain(), true, nil
}

// Set implements pricing.EffectivePriceCache
func (c *RedisEffectivePriceCache) Set(ctx context.Context, price *pricing.EffectivePrice) error {
	if price == nil {
		return nil
	}
	data, err := json.Marshal(toCached(price))
	if err != nil {
		return fmt.Errorf("failed to marshal effective price: %w", err)
	}
	if err := c.client.Set(ctx, PriceKey(price.Requested, price.ProductID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set effective price in cache: %w", err)
	}
	return nil
}

// Invalidate deletes matching keys and publishes req to peers
func (c *RedisEffectivePriceCache) Invalidate(ctx context.Context, req pricing.InvalidationRequest) error {
	pattern := InvalidationPattern(req)

	deleted, err := c.deleteMatching(ctx, pattern)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}
	if err := c.client.Publish(ctx, c.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}

	c.logger.Debug("Invalidated price cache",
		zap.String("scope", string(req.Scope)),
		zap.String("pattern", pattern),
		zap.Int64("deleted", deleted))
	return nil
}

func (c *RedisEffectivePriceCache) deleteMatching(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to unlink cache keys: %w", err)
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

// Subscribe blocks, handing every invalidation published on the channel to
// handle until ctx is cancelled. Malformed messages are logged and skipped.
func (c *RedisEffectivePriceCache) Subscribe(ctx context.Context, handle func(pricing.InvalidationRequest)) error {
	pubsub := c.client.Subscribe(ctx, c.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.channel, err)
	}
	c.logger.Info("Subscribed to price invalidation channel", zap.String("channel", c.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var req pricing.InvalidationRequest
			if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
				c.logger.Warn("Ignoring malformed invalidation message",
					zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			handle(req)
		}
	}
}

// Ping checks the connection
func (c *RedisEffectivePriceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ pricing.EffectivePriceCache = (*RedisEffectivePriceCache)(nil)
