package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCache_GetSetInvalidate(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	c := NewRedisEffectivePriceCache(client, WithRedisTTL(time.Minute))

	zone, segment, product := uuid.New(), uuid.New(), uuid.New()
	cell := pricing.ZoneSegmentContext(zone, segment)

	require.NoError(t, c.Set(ctx, newPrice(cell, product, "7.25")))
	require.NoError(t, c.Set(ctx, newPrice(pricing.SegmentContext(segment), product, "8")))

	got, ok, err := c.Get(ctx, cell, product)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cell, got.Requested)
	assert.Equal(t, "7.25", got.Price.StringFixed(2))

	ttl, err := client.TTL(ctx, PriceKey(cell, product)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, pricing.InvalidationFor(pricing.ZoneContext(zone), product)))
	_, ok, _ = c.Get(ctx, cell, product)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, pricing.SegmentContext(segment), product)
	assert.True(t, ok)
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	c := NewRedisEffectivePriceCache(client)

	product := uuid.New()
	key := PriceKey(pricing.MasterContext(), product)
	require.NoError(t, client.Set(ctx, key, "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, pricing.MasterContext(), product)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), client.Exists(ctx, key).Val())
}

func TestTieredCache_PeerInvalidationClearsL1(t *testing.T) {
	client := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local := NewTieredEffectivePriceCache(NewInMemoryEffectivePriceCache(), NewRedisEffectivePriceCache(client), nil)
	peer := NewRedisEffectivePriceCache(client)
	t.Cleanup(func() { _ = local.Close() })

	go func() { _ = local.StartInvalidationSubscription(ctx) }()

	product := uuid.New()
	require.NoError(t, local.Set(ctx, newPrice(pricing.MasterContext(), product, "3")))
	_, ok, _ := local.Get(ctx, pricing.MasterContext(), product)
	require.True(t, ok)

	// Wait for the subscription to be live before the peer publishes.
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, DefaultInvalidationChannel).Result()
		return err == nil && n[DefaultInvalidationChannel] > 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, peer.Invalidate(ctx, pricing.InvalidationRequest{Scope: pricing.InvalidateAll}))

	assert.Eventually(t, func() bool { return local.l1.Len() == 0 }, 5*time.Second, 20*time.Millisecond)
	l1Hits, _, _ := local.Stats()
	assert.Equal(t, int64(1), l1Hits)
}
