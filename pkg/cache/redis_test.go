package cache

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rc := NewRedisCacheFromClient(client, "findash:")
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedisCacheSetRecordsTags(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	if err := rc.Set(ctx, "dashboard:summary", []byte("v"), time.Minute, "Kpis", "Products"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if !mr.Exists("findash:dashboard:summary") {
		t.Fatal("value not stored under the prefix")
	}
	members, err := mr.Members("findash:tag:Kpis")
	if err != nil || len(members) != 1 || members[0] != "findash:dashboard:summary" {
		t.Fatalf("tag set = %v, %v", members, err)
	}
	if ttl := mr.TTL("findash:tag:Kpis"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("tag set ttl = %v", ttl)
	}

	b, tags, err := rc.GetWithTags(ctx, "dashboard:summary")
	if err != nil || string(b) != "v" {
		t.Fatalf("get = %q, %v", b, err)
	}
	sort.Strings(tags)
	if len(tags) != 2 || tags[0] != "Kpis" || tags[1] != "Products" {
		t.Fatalf("tags = %v", tags)
	}
}

func TestRedisCacheTagSetOutlivesShorterEntries(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	_ = rc.Set(ctx, "a", []byte("1"), time.Hour, "Kpis")
	_ = rc.Set(ctx, "b", []byte("2"), time.Minute, "Kpis")
	if ttl := mr.TTL("findash:tag:Kpis"); ttl != time.Hour {
		t.Fatalf("tag ttl = %v, want the longest member's 1h", ttl)
	}

	_ = rc.Set(ctx, "c", []byte("3"), 0, "Kpis")
	if ttl := mr.TTL("findash:tag:Kpis"); ttl != 0 {
		t.Fatalf("tag ttl = %v, want persistent for a non-expiring member", ttl)
	}
}

func TestRedisCacheInvalidateTag(t *testing.T) {
	ctx := context.Background()
	rc, mr := newTestRedis(t)

	_ = rc.Set(ctx, "kpis:all", []byte("k"), time.Minute, "Kpis")
	_ = rc.Set(ctx, "forecast:revenue:12", []byte("f"), time.Minute, "Kpis")
	_ = rc.Set(ctx, "products:all", []byte("p"), time.Minute, "Products")

	before, _ := rc.TagVersion(ctx, "Kpis")
	n, err := rc.InvalidateTag(ctx, "Kpis")
	if err != nil || n != 2 {
		t.Fatalf("invalidate = %d, %v", n, err)
	}
	after, _ := rc.TagVersion(ctx, "Kpis")
	if after != before+1 {
		t.Fatalf("version %d -> %d, want +1", before, after)
	}

	for _, key := range []string{"kpis:all", "forecast:revenue:12"} {
		if _, err := rc.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
			t.Fatalf("%s survived invalidation: %v", key, err)
		}
		if mr.Exists("findash:keytags:" + key) {
			t.Fatalf("tag list of %s survived invalidation", key)
		}
	}
	if mr.Exists("findash:tag:Kpis") {
		t.Fatal("tag set survived invalidation")
	}
	if b, err := rc.Get(ctx, "products:all"); err != nil || string(b) != "p" {
		t.Fatalf("untagged entry lost: %q, %v", b, err)
	}
}

func TestRedisCacheOverwriteReplacesTags(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedis(t)

	_ = rc.Set(ctx, "k", []byte("1"), time.Minute, "Kpis")
	_ = rc.Set(ctx, "k", []byte("2"), time.Minute, "Products")

	_, tags, err := rc.GetWithTags(ctx, "k")
	if err != nil || len(tags) != 1 || tags[0] != "Products" {
		t.Fatalf("tags = %v, %v", tags, err)
	}
	if err := rc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := rc.GetWithTags(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestLayeredCacheRefillKeepsTags(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedis(t)
	lc := NewLayeredCache(rc, WithLayeredMemoryTTL(time.Hour))
	defer lc.memory.Close()

	if err := lc.Set(ctx, "kpis:all", []byte("old"), time.Hour, "Kpis"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// another instance wrote it: only Redis has the value
	_ = lc.memory.Delete(ctx, "kpis:all")
	if b, err := lc.Get(ctx, "kpis:all"); err != nil || string(b) != "old" {
		t.Fatalf("refill get = %q, %v", b, err)
	}
	if lc.memory.Len() != 1 {
		t.Fatal("value not copied into memory")
	}

	n, err := lc.InvalidateTag(ctx, "Kpis")
	if err != nil || n != 1 {
		t.Fatalf("invalidate = %d, %v", n, err)
	}
	if b, err := lc.Get(ctx, "kpis:all"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("after invalidation get = %q, %v; want miss", b, err)
	}
}

func TestLayeredCacheTagVersionIsShared(t *testing.T) {
	ctx := context.Background()
	rc, _ := newTestRedis(t)
	a := NewLayeredCache(rc)
	b := NewLayeredCache(rc)
	defer a.memory.Close()
	defer b.memory.Close()

	if _, err := a.InvalidateTag(ctx, "Products"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	v, err := b.TagVersion(ctx, "Products")
	if err != nil || v != 1 {
		t.Fatalf("version seen by other instance = %d, %v", v, err)
	}
}
