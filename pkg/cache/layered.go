package cache

import (
	"context"
	"time"
)

// LayeredCache is a two-level cache: L1 in memory, L2 in Redis.
type LayeredCache struct {
	memory    *MemoryCache
	redis     *RedisCache
	memoryTTL time.Duration
}

func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		MemoryTTL:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memory:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis:     redisCache,
		memoryTTL: cfg.MemoryTTL,
	}
}

func (lc *LayeredCache) l1TTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > lc.memoryTTL {
		return lc.memoryTTL
	}
	return ttl
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if b, err := lc.memory.Get(ctx, key); err == nil {
		return b, nil
	}

	b, tags, err := lc.redis.GetWithTags(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = lc.memory.Set(ctx, key, b, lc.memoryTTL, tags...)
	return b, nil
}

// Set writes through: Redis first, then memory.
func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if err := lc.redis.Set(ctx, key, value, ttl, tags...); err != nil {
		return err
	}
	return lc.memory.Set(ctx, key, value, lc.l1TTL(ttl), tags...)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memory.Delete(ctx, keys...)
	return lc.redis.Delete(ctx, keys...)
}

// InvalidateTag clears Redis before memory, so a writer that still sees the
// old Redis version has not yet been passed by the memory sweep.
func (lc *LayeredCache) InvalidateTag(ctx context.Context, tag string) (int, error) {
	n, err := lc.redis.InvalidateTag(ctx, tag)
	_, _ = lc.memory.InvalidateTag(ctx, tag)
	return n, err
}

// TagVersion is Redis's version, shared by every instance.
func (lc *LayeredCache) TagVersion(ctx context.Context, tag string) (int64, error) {
	return lc.redis.TagVersion(ctx, tag)
}

func (lc *LayeredCache) Close() error {
	_ = lc.memory.Close()
	return lc.redis.Close()
}
