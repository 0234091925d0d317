package cache

import (
	"context"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

type memEntry struct {
	price     pricing.EffectivePrice
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryEffectivePriceCache keeps resolved prices in process memory. It is
// the fallback backend when Redis is unavailable and the L1 of the tiered
// cache.
type InMemoryEffectivePriceCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// InMemoryOption configures an InMemoryEffectivePriceCache
type InMemoryOption func(*InMemoryEffectivePriceCache)

// WithInMemoryTTL sets the entry lifetime
func WithInMemoryTTL(ttl time.Duration) InMemoryOption {
	return func(c *InMemoryEffectivePriceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemoryEffectivePriceCache) {
		c.logger = logger
	}
}

// NewInMemoryEffectivePriceCache creates the cache and starts its expiry
// sweeper. Call Close to stop it.
func NewInMemoryEffectivePriceCache(opts ...InMemoryOption) *InMemoryEffectivePriceCache {
	c := &InMemoryEffectivePriceCache{
		entries: make(map[string]memEntry),
		ttl:     10 * time.Minute,
		logger:  zap.NewNop(),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.sweep(defaultCleanupInterval)
	return c
}

// Get implements pricing.EffectivePriceCache
func (c *InMemoryEffectivePriceCache) Get(_ context.Context, requested pricing.Context, productID uuid.UUID) (*pricing.EffectivePrice, bool, error) {
	key := PriceKey(requested, productID)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&c.hits, 1)
	price := e.price
	return &price, true, nil
}

// Set implements pricing.EffectivePriceCache
func (c *InMemoryEffectivePriceCache) Set(_ context.Context, price *pricing.EffectivePrice) error {
	if price == nil {
		return nil
	}
	key := PriceKey(price.Requested, price.ProductID)

	c.mu.Lock()
	c.entries[key] = memEntry{price: *price, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate drops every entry matching the request's key pattern
func (c *InMemoryEffectivePriceCache) Invalidate(_ context.Context, req pricing.InvalidationRequest) error {
	pattern := InvalidationPattern(req)

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.logger.Debug("Invalidated in-memory price cache",
		zap.String("scope", string(req.Scope)),
		zap.String("pattern", pattern),
		zap.Int("removed", removed))
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryEffectivePriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts
func (c *InMemoryEffectivePriceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the sweeper. It is safe to call more than once.
func (c *InMemoryEffectivePriceCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryEffectivePriceCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.removeExpired(now)
		}
	}
}

func (c *InMemoryEffectivePriceCache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}

var _ pricing.EffectivePriceCache = (*InMemoryEffectivePriceCache)(nil)
