package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	domrepo "FinDash/internal/domain/repository"
	pkgcache "FinDash/pkg/cache"
	applogger "FinDash/pkg/logger"
)

// QueryCache caches query results by query identity. Entries carry the tags
// of the collections they were derived from so a change can drop them all.
type QueryCache struct {
	backend pkgcache.Service
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewQueryCache(backend pkgcache.Service, m domrepo.Metrics, l *applogger.Logger) *QueryCache {
	if l == nil {
		l = applogger.Nop()
	}
	return &QueryCache{backend: backend, metrics: m, l: l}
}

// GetOrLoad returns the cached value for key or calls load and stores its
// result. Cache failures are logged and never fail the query.
func GetOrLoad[T any](ctx context.Context, q *QueryCache, key string, ttl time.Duration, tags []string, load func(context.Context) (T, error)) (T, error) {
	if q == nil || q.backend == nil {
		return load(ctx)
	}

	v, err := pkgcache.GetJSON[T](ctx, q.backend, key)
	switch {
	case err == nil:
		q.record(key, true)
		return v, nil
	case !errors.Is(err, pkgcache.ErrCacheMiss):
		q.l.Warn("query cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	q.record(key, false)

	gen := q.Begin(ctx, tags...)
	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	q.StoreIfCurrent(ctx, key, v, ttl, gen)
	return v, nil
}

// Generation is the version of each tag observed before a load started.
type Generation struct {
	tags     []string
	versions []int64
	ok       bool
}

// Begin records the current versions of tags. Call it before reading the
// data a cached value is derived from.
func (q *QueryCache) Begin(ctx context.Context, tags ...string) Generation {
	g := Generation{tags: tags}
	if q == nil || q.backend == nil {
		return g
	}
	versions, err := q.versions(ctx, tags)
	if err != nil {
		q.l.Warn("query cache version read failed", applogger.Strings("tags", tags), applogger.Error(err))
		return g
	}
	g.versions, g.ok = versions, true
	return g
}

// StoreIfCurrent stores value unless one of the generation's tags was
// invalidated since Begin. An invalidation racing the write is caught by
// re-reading the versions afterwards and deleting the entry. It reports
// whether the value was kept.
func (q *QueryCache) StoreIfCurrent(ctx context.Context, key string, value interface{}, ttl time.Duration, g Generation) bool {
	if q == nil || q.backend == nil || !g.ok {
		return false
	}
	if !q.current(ctx, g) {
		q.l.Debug("query cache write skipped, tags invalidated during load", applogger.String("key", key))
		return false
	}
	if err := pkgcache.SetJSON(ctx, q.backend, key, value, ttl, g.tags...); err != nil {
		q.l.Warn("query cache write failed", applogger.String("key", key), applogger.Error(err))
		return false
	}
	if !q.current(ctx, g) {
		if err := q.backend.Delete(ctx, key); err != nil {
			q.l.Warn("query cache stale entry not removed", applogger.String("key", key), applogger.Error(err))
		}
		return false
	}
	return true
}

func (q *QueryCache) versions(ctx context.Context, tags []string) ([]int64, error) {
	out := make([]int64, len(tags))
	for i, tag := range tags {
		v, err := q.backend.TagVersion(ctx, tag)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (q *QueryCache) current(ctx context.Context, g Generation) bool {
	now, err := q.versions(ctx, g.tags)
	if err != nil {
		return false
	}
	for i := range now {
		if now[i] != g.versions[i] {
			return false
		}
	}
	return true
}

// Invalidate drops every entry tagged with tag.
func (q *QueryCache) Invalidate(ctx context.Context, tag string) (int, error) {
	if q == nil || q.backend == nil {
		return 0, nil
	}
	return q.backend.InvalidateTag(ctx, tag)
}

func (q *QueryCache) record(key string, hit bool) {
	if q.metrics != nil {
		q.metrics.RecordCache(queryName(key), hit)
	}
}

// queryName is the key without its parameters, used as a metric label:
// "forecast:revenue:12" -> "forecast:revenue".
func queryName(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 {
		return key
	}
	return parts[0] + ":" + parts[1]
}
