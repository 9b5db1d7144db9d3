package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	tags     []string
	expireAt time.Time
	access   time.Time
}

func (m *memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

// MemoryCache implements Service in process with LRU eviction.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]*memoryItem
	tags       map[string]map[string]struct{}
	versions   map[string]int64
	maxSize    int
	defaultTTL time.Duration
	done       chan struct{}
	closeOnce  sync.Once
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
		DefaultTTL:      24 * time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		data:       make(map[string]*memoryItem),
		tags:       make(map[string]map[string]struct{}),
		versions:   make(map[string]int64),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		done:       make(chan struct{}),
	}
	go mc.cleanupLoop(cfg.CleanupInterval)
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	item, ok := mc.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if item.expired(now) {
		mc.removeLocked(key)
		return nil, ErrCacheMiss
	}
	item.access = now

	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if ttl <= 0 {
		ttl = mc.defaultTTL
	}

	if _, exists := mc.data[key]; exists {
		mc.removeLocked(key)
	} else if len(mc.data) >= mc.maxSize {
		mc.evictLRULocked()
	}

	now := time.Now()
	stored := make([]byte, len(value))
	copy(stored, value)
	mc.data[key] = &memoryItem{value: stored, tags: tags, expireAt: now.Add(ttl), access: now}
	for _, tag := range tags {
		set, ok := mc.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			mc.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		mc.removeLocked(key)
	}
	return nil
}

func (mc *MemoryCache) InvalidateTag(_ context.Context, tag string) (int, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.versions[tag]++
	keys := mc.tags[tag]
	n := len(keys)
	for key := range keys {
		mc.removeLocked(key)
	}
	delete(mc.tags, tag)
	return n, nil
}

func (mc *MemoryCache) TagVersion(_ context.Context, tag string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.versions[tag], nil
}

// Len reports the number of live and not yet collected entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.data)
}

func (mc *MemoryCache) removeLocked(key string) {
	item, ok := mc.data[key]
	if !ok {
		return
	}
	for _, tag := range item.tags {
		if set, ok := mc.tags[tag]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(mc.tags, tag)
			}
		}
	}
	delete(mc.data, key)
}

func (mc *MemoryCache) evictLRULocked() {
	var oldestKey string
	var oldest time.Time
	for key, item := range mc.data {
		if oldestKey == "" || item.access.Before(oldest) {
			oldestKey, oldest = key, item.access
		}
	}
	if oldestKey != "" {
		mc.removeLocked(oldestKey)
	}
}

func (mc *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			for key, item := range mc.data {
				if item.expired(now) {
					mc.removeLocked(key)
				}
			}
			mc.mu.Unlock()
		case <-mc.done:
			return
		}
	}
}

// Close stops the cleanup goroutine.
func (mc *MemoryCache) Close() error {
	mc.closeOnce.Do(func() { close(mc.done) })
	return nil
}
