// Package cache holds read-through caches in front of PostgreSQL.
package cache

import (
	"context"
	"errors"

	"github.com/dukerupert/isoko/internal/domain"
)

// CartCache stores rendered cart views keyed by session ID.
//
// Each session also has a version counter. Invalidate bumps it, and
// SetIfVersion refuses to write when the counter moved since the caller
// read it, so a read that raced a mutation cannot put its older snapshot
// back.
type CartCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Version returns the session's current version. Unknown sessions are 0.
	Version(ctx context.Context, sessionID string) (int64, error)

	// SetIfVersion stores cart only while the session is still at version.
	// It reports whether the write happened.
	SetIfVersion(ctx context.Context, sessionID string, version int64, cart *domain.Cart) (bool, error)

	// Invalidate drops the cached cart and returns the new version.
	Invalidate(ctx context.Context, sessionID string) (int64, error)
}

// ErrCacheMiss is returned by Get when the session has no cached cart.
var ErrCacheMiss = errors.New("cache miss")

// NoopCache never stores anything. It is used when REDIS_URL is unset.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (NoopCache) Version(context.Context, string) (int64, error)    { return 0, nil }
func (NoopCache) Invalidate(context.Context, string) (int64, error) { return 0, nil }

func (NoopCache) SetIfVersion(context.Context, string, int64, *domain.Cart) (bool, error) {
	return false, nil
}
