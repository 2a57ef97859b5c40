package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dukerupert/isoko/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func sampleCart(sessionID string) *domain.Cart {
	return &domain.Cart{
		ID:        "9b7d7a0e-4d6c-4f0b-9a57-0f0e7d6b1c11",
		SessionID: sessionID,
		Items: []domain.CartItem{
			{ID: "line-1", ProductID: "p-1", Quantity: 2, UnitPrice: 50000, LineTotal: 100000},
		},
		Totals: domain.CartTotals{Subtotal: 100000, Tax: 18000, Total: 118000, ItemCount: 2, Currency: "RWF"},
	}
}

func TestRedisCache_SetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := c.SetIfVersion(ctx, "sess-1", 0, sampleCart("sess-1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("cart:{sess-1}"))

	got, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(118000), got.Totals.Total)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:{broken}", "{not json"))

	_, err := c.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_TTLIncludesJitter(t *testing.T) {
	c, mr := setupTestRedis(t)
	_, err := c.SetIfVersion(context.Background(), "sess-ttl", 0, sampleCart("sess-ttl"))
	require.NoError(t, err)

	ttl := mr.TTL("cart:{sess-ttl}")
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 15*time.Minute)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	_, err := c.SetIfVersion(ctx, "sess-exp", 0, sampleCart("sess-exp"))
	require.NoError(t, err)

	mr.FastForward(16 * time.Minute)

	_, err = c.Get(ctx, "sess-exp")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	v, err := c.Version(ctx, "sess-del")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = c.SetIfVersion(ctx, "sess-del", v, sampleCart("sess-del"))
	require.NoError(t, err)

	next, err := c.Invalidate(ctx, "sess-del")
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
	assert.False(t, mr.Exists("cart:{sess-del}"))
	assert.Greater(t, mr.TTL("cart:{sess-del}:v"), 15*time.Minute, "version outlives cart entries")

	// invalidating a missing entry is not an error
	next, err = c.Invalidate(ctx, "sess-del")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestRedisCache_StaleWriteRejected(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	// a reader captures the version, then a mutation lands before it writes
	staleVersion, err := c.Version(ctx, "sess-race")
	require.NoError(t, err)

	mutationVersion, err := c.Invalidate(ctx, "sess-race")
	require.NoError(t, err)

	fresh := sampleCart("sess-race")
	fresh.Totals.Total = 236000
	ok, err := c.SetIfVersion(ctx, "sess-race", mutationVersion, fresh)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SetIfVersion(ctx, "sess-race", staleVersion, sampleCart("sess-race"))
	require.NoError(t, err)
	assert.False(t, ok, "older snapshot must not overwrite the mutation's cart")

	got, err := c.Get(ctx, "sess-race")
	require.NoError(t, err)
	assert.Equal(t, int64(236000), got.Totals.Total)
	assert.True(t, mr.Exists("cart:{sess-race}"))
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "sess-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = c.SetIfVersion(context.Background(), "sess-1", 0, sampleCart("sess-1"))
	assert.Error(t, err)
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), 0)
	assert.Equal(t, defaultCartTTL, c.baseTTL)
}

func TestNoopCache(t *testing.T) {
	var c CartCache = NoopCache{}
	ctx := context.Background()

	ok, err := c.SetIfVersion(ctx, "s", 0, sampleCart("s"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrCacheMiss)

	v, err := c.Invalidate(ctx, "s")
	assert.NoError(t, err)
	assert.Zero(t, v)
}
