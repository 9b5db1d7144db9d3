package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Service on Redis. Tags are Redis sets holding the
// member keys; a tag set lives at least as long as its newest member.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(ctx context.Context, opts ...RedisOption) (*RedisCache, error) {
	cfg := &RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		Prefix:       "findash:",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, c.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return b, nil
}

// GetWithTags returns the value of key together with the tags it was stored
// under.
func (c *RedisCache) GetWithTags(ctx context.Context, key string) ([]byte, []string, error) {
	pipe := c.client.Pipeline()
	get := pipe.Get(ctx, c.wrapKey(key))
	members := pipe.SMembers(ctx, c.wrapKey(entryTagsKey(key)))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, nil, err
	}

	b, err := get.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil, ErrCacheMiss
		}
		return nil, nil, err
	}
	return b, members.Val(), nil
}

// Set stores value and records it in each tag set. The entry's own tag list
// is kept beside it with the same TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	wk := c.wrapKey(key)
	etk := c.wrapKey(entryTagsKey(key))

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, wk, value, ttl)
	pipe.Del(ctx, etk)
	if len(tags) > 0 {
		members := make([]interface{}, len(tags))
		for i, tag := range tags {
			members[i] = tag
		}
		pipe.SAdd(ctx, etk, members...)
		if ttl > 0 {
			pipe.Expire(ctx, etk, ttl)
		}
	}
	for _, tag := range tags {
		tk := c.wrapKey(tagKey(tag))
		pipe.SAdd(ctx, tk, wk)
		if ttl > 0 {
			pipe.ExpireNX(ctx, tk, ttl)
			pipe.ExpireGT(ctx, tk, ttl)
		} else {
			pipe.Persist(ctx, tk)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", wk, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	wrapped := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		wrapped = append(wrapped, c.wrapKey(key), c.wrapKey(entryTagsKey(key)))
	}
	return c.client.Unlink(ctx, wrapped...).Err()
}

func (c *RedisCache) InvalidateTag(ctx context.Context, tag string) (int, error) {
	if err := c.client.Incr(ctx, c.wrapKey(tagVersionKey(tag))).Err(); err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", tag, err)
	}

	tk := c.wrapKey(tagKey(tag))
	members, err := c.client.SMembers(ctx, tk).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers %s: %w", tk, err)
	}

	// members are already prefixed
	doomed := make([]string, 0, 2*len(members)+1)
	for _, m := range members {
		doomed = append(doomed, m, c.wrapKey(entryTagsKey(strings.TrimPrefix(m, c.prefix))))
	}
	doomed = append(doomed, tk)
	if err := c.client.Unlink(ctx, doomed...).Err(); err != nil {
		return 0, fmt.Errorf("redis unlink %s: %w", tk, err)
	}
	return len(members), nil
}

func (c *RedisCache) TagVersion(ctx context.Context, tag string) (int64, error) {
	v, err := c.client.Get(ctx, c.wrapKey(tagVersionKey(tag))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis tag version %s: %w", tag, err)
	}
	return v, nil
}

func (c *RedisCache) wrapKey(key string) string {
	return c.prefix + key
}
