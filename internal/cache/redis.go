package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCartTTL = 15 * time.Minute
	maxJitter      = 5 * time.Minute
	versionGrace   = time.Hour
)

// RedisCache is a CartCache backed by Redis.
// Entries expire after the base TTL plus up to five minutes of jitter
// so carts cached together do not expire together.
type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

// NewRedisCache creates a cart cache. A non-positive ttl uses 15 minutes.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// SetIfVersion writes the cart inside a WATCH on the version key. A
// concurrent Invalidate aborts the transaction and nothing is written.
func (r *RedisCache) SetIfVersion(ctx context.Context, sessionID string, version int64, cart *domain.Cart) (bool, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("marshal cart failed: %w", err)
	}

	key, vkey := cacheKey(sessionID), versionKey(sessionID)
	ttl := r.baseTTL + rand.N(maxJitter)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, vkey)
		if err != nil {
			return err
		}
		if current != version {
			return errVersionMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errVersionMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis set failed: %w", err)
	}
}

func (r *RedisCache) Version(ctx context.Context, sessionID string) (int64, error) {
	v, err := readVersion(ctx, r.client, versionKey(sessionID))
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

// Invalidate deletes the cart and bumps the version in one MULTI block.
// The version key outlives any cart entry so a stale reader cannot see
// it reset while its snapshot is still cacheable.
func (r *RedisCache) Invalidate(ctx context.Context, sessionID string) (int64, error) {
	vkey := versionKey(sessionID)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(sessionID))
		incr = pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, r.baseTTL+maxJitter+versionGrace)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis invalidate failed: %w", err)
	}
	return incr.Val(), nil
}

var errVersionMoved = errors.New("cart version moved")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, c getter, vkey string) (int64, error) {
	v, err := c.Get(ctx, vkey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Keys share a hash tag so the WATCH transaction stays on one cluster slot.
func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:{%s}", sessionID)
}

func versionKey(sessionID string) string {
	return fmt.Sprintf("cart:{%s}:v", sessionID)
}
