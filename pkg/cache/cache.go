// Package cache stores replay snapshots and rendered graphs between runs.
//
// A [Cache] is a byte store with per-entry TTLs. Three backends are
// provided: [NullCache] (caching disabled), [FileCache] (the CLI default,
// under the XDG cache directory) and [RedisCache] (shared between machines).
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().SnapshotKey(sceneHash, frame)
//	data, hit, err := c.Get(ctx, key)
//
// [Observed] wraps any backend so hits, misses and writes reach the
// observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/scenesync/pkg/observability"
)

// Entry lifetimes.
const (
	// TTLSnapshot is how long a replayed frame snapshot stays cached. Scene
	// files are content-hashed, so a changed file never hits a stale entry.
	TTLSnapshot = 24 * time.Hour

	// TTLGraph is how long a rendered graph stays cached.
	TTLGraph = 7 * 24 * time.Hour
)

// Cache is a byte store keyed by strings.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// observed reports cache traffic to the observability hooks.
type observed struct {
	Cache
}

// Observed wraps c so that every Get and Set is reported through
// [observability.Cache].
func Observed(c Cache) Cache {
	if _, ok := c.(*observed); ok {
		return c
	}
	return &observed{Cache: c}
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := o.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case hit:
		observability.Cache().OnCacheHit(ctx, key)
	default:
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}
