package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgcache "FinDash/pkg/cache"
)

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) RecordFit(int, float64) {}
func (m *countingMetrics) RecordError(string) {}
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordCache(_ string, hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

type payload struct {
	Value int `json:"value"`
}

func TestGetOrLoadCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	backend := pkgcache.NewMemoryCache()
	defer backend.Close()
	m := &countingMetrics{}
	q := NewQueryCache(backend, m, nil)

	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Value: calls}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrLoad(ctx, q, "forecast:revenue:12", time.Minute, []string{"Kpis"}, load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.Value != 1 {
			t.Fatalf("value = %d, want cached 1", v.Value)
		}
	}
	if calls != 1 || m.hits != 2 || m.misses != 1 {
		t.Fatalf("calls=%d hits=%d misses=%d", calls, m.hits, m.misses)
	}

	n, err := q.Invalidate(ctx, "Kpis")
	if err != nil || n != 1 {
		t.Fatalf("invalidate = %d, %v", n, err)
	}
	v, _ := GetOrLoad(ctx, q, "forecast:revenue:12", time.Minute, []string{"Kpis"}, load)
	if v.Value != 2 {
		t.Fatalf("value after invalidation = %d, want 2", v.Value)
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	backend := pkgcache.NewMemoryCache()
	defer backend.Close()
	q := NewQueryCache(backend, nil, nil)

	boom := errors.New("boom")
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{}, boom
	}
	for i := 0; i < 2; i++ {
		if _, err := GetOrLoad(ctx, q, "kpis:all", time.Minute, nil, load); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestNilQueryCacheLoadsDirectly(t *testing.T) {
	var q *QueryCache
	v, err := GetOrLoad(context.Background(), q, "k", time.Minute, nil, func(context.Context) (payload, error) {
		return payload{Value: 7}, nil
	})
	if err != nil || v.Value != 7 {
		t.Fatalf("got %+v, %v", v, err)
	}
}

func TestQueryName(t *testing.T) {
	cases := map[string]string{
		"forecast:revenue:12":    "forecast:revenue",
		"transactions:latest:50": "transactions:latest",
		"kpis:all":               "kpis:all",
	}
	for in, want := range cases {
		if got := queryName(in); got != want {
			t.Fatalf("queryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetOrLoadDropsValueInvalidatedDuringLoad(t *testing.T) {
	ctx := context.Background()
	backend := pkgcache.NewMemoryCache()
	defer backend.Close()
	q := NewQueryCache(backend, nil, nil)

	stale := func(ctx context.Context) (payload, error) {
		// the collection changes while the old rows are still being read
		if _, err := q.Invalidate(ctx, "Kpis"); err != nil {
			t.Fatalf("invalidate: %v", err)
		}
		return payload{Value: 1}, nil
	}
	if v, err := GetOrLoad(ctx, q, "kpis:all", time.Minute, []string{"Kpis"}, stale); err != nil || v.Value != 1 {
		t.Fatalf("first read = %+v, %v", v, err)
	}

	fresh := func(context.Context) (payload, error) { return payload{Value: 2}, nil }
	v, err := GetOrLoad(ctx, q, "kpis:all", time.Minute, []string{"Kpis"}, fresh)
	if err != nil || v.Value != 2 {
		t.Fatalf("read after invalidation = %+v, %v; want fresh value 2", v, err)
	}
}

// invalidatingBackend runs an invalidation between the version check and
// the write, the way a change event applied by another goroutine could.
type invalidatingBackend struct {
	*pkgcache.MemoryCache
	tag string
}

func (b *invalidatingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if _, err := b.MemoryCache.InvalidateTag(ctx, b.tag); err != nil {
		return err
	}
	return b.MemoryCache.Set(ctx, key, value, ttl, tags...)
}

func TestStoreIfCurrentRemovesEntryInvalidatedDuringWrite(t *testing.T) {
	ctx := context.Background()
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()
	q := NewQueryCache(&invalidatingBackend{MemoryCache: mem, tag: "Kpis"}, nil, nil)

	gen := q.Begin(ctx, "Kpis")
	if q.StoreIfCurrent(ctx, "kpis:all", payload{Value: 1}, time.Minute, gen) {
		t.Fatal("write raced by an invalidation should not be kept")
	}
	if _, err := mem.Get(ctx, "kpis:all"); !errors.Is(err, pkgcache.ErrCacheMiss) {
		t.Fatalf("stale entry still cached, err=%v", err)
	}
}

func TestStoreIfCurrentKeepsUntouchedTags(t *testing.T) {
	ctx := context.Background()
	mem := pkgcache.NewMemoryCache()
	defer mem.Close()
	q := NewQueryCache(mem, nil, nil)

	gen := q.Begin(ctx, "Kpis", "Products")
	if _, err := q.Invalidate(ctx, "Transactions"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if !q.StoreIfCurrent(ctx, "dashboard:summary", payload{Value: 3}, time.Minute, gen) {
		t.Fatal("unrelated invalidation should not block the write")
	}
	if _, err := mem.Get(ctx, "dashboard:summary"); err != nil {
		t.Fatalf("entry missing: %v", err)
	}
}
