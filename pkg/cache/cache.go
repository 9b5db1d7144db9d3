package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is a byte cache whose entries can be grouped under tags and
// dropped together.
type Service interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	Delete(ctx context.Context, keys ...string) error
	// InvalidateTag removes every entry stored under tag and reports how many
	// keys were dropped. It bumps the tag's version before removing entries.
	InvalidateTag(ctx context.Context, tag string) (int, error)
	// TagVersion counts the invalidations of tag so far. A writer that read
	// the version before computing a value can tell whether it went stale.
	TagVersion(ctx context.Context, tag string) (int64, error)
	Close() error
}

// GetJSON reads key and decodes it into T.
func GetJSON[T any](ctx context.Context, c Service, key string) (T, error) {
	var out T
	b, err := c.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return out, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, c Service, key string, value interface{}, ttl time.Duration, tags ...string) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.Set(ctx, key, b, ttl, tags...)
}
