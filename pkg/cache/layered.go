package cache

import (
	"context"
	"errors"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	memCache   *MemoryCache
	redisCache *RedisCache
}

// NewLayeredCache creates a layered cache with memory and Redis.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache:   NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryClock(cfg.Clock)),
		redisCache: redisCache,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, entry Entry) error {
	// Write-through: Redis first, then memory
	if err := lc.redisCache.Set(ctx, key, entry); err != nil {
		return err
	}
	return lc.memCache.Set(ctx, key, entry)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) (Entry, error) {
	// L1: Try memory first
	if entry, err := lc.memCache.Get(ctx, key); err == nil {
		return entry, nil
	}

	// L2: Try Redis
	entry, err := lc.redisCache.Get(ctx, key)
	if err != nil {
		return Entry{}, err
	}

	// Entry keeps its original timestamp, so L1 expires it at the same moment.
	_ = lc.memCache.Set(ctx, key, entry)
	return entry, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.redisCache.Delete(ctx, keys...)
}

func (lc *LayeredCache) Clear(ctx context.Context) error {
	_ = lc.memCache.Clear(ctx)
	return lc.redisCache.Clear(ctx)
}

// Stats reports the shared L2 view; L1 is a subset of it.
func (lc *LayeredCache) Stats(ctx context.Context) (Stats, error) {
	return lc.redisCache.Stats(ctx)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	return errors.Join(lc.memCache.Close(), lc.redisCache.Close())
}
