package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
)

func TestChangesHandlerInvalidatesAndRefreshes(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	p := &fakeProvider{seq: linearYear()}
	f := NewForecastUseCase(p, cache, nil, nil, nil, ForecastConfig{DefaultOffset: 12, CacheTTL: time.Minute}, nil)
	b := &fakeBroadcaster{}
	f.SetBroadcaster(b)

	store := &fakeStore{kpis: []models.KPI{{ID: "k1"}}}
	dash := NewDashboardUseCase(store, cache, time.Minute)
	if _, err := dash.KPIs(ctx); err != nil {
		t.Fatalf("kpis: %v", err)
	}
	if _, err := f.RevenueForecast(ctx, 12); err != nil {
		t.Fatalf("forecast: %v", err)
	}

	h := NewChangesHandler("dashboard.changes", cache, f, nil)
	if h.Topic() != "dashboard.changes" {
		t.Fatalf("topic = %q", h.Topic())
	}
	payload, _ := json.Marshal(models.ChangeEvent{Collection: models.CollectionKPIs, Reason: "seed", At: time.Now()})
	if err := h.Handle(ctx, payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(b.pushed) != 1 {
		t.Fatalf("expected one live push, got %d", len(b.pushed))
	}
	if p.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", p.calls)
	}
	if _, err := dash.KPIs(ctx); err != nil || store.reads != 2 {
		t.Fatalf("kpis cache not invalidated, reads = %d", store.reads)
	}
	if _, err := f.RevenueForecast(ctx, 12); err != nil || p.calls != 2 {
		t.Fatalf("refreshed forecast must be served from cache, calls = %d", p.calls)
	}
}

func TestChangesHandlerNonKPIChangeSkipsRefresh(t *testing.T) {
	p := &fakeProvider{seq: linearYear()}
	f := NewForecastUseCase(p, newTestCache(t), nil, nil, nil, ForecastConfig{DefaultOffset: 12}, nil)
	h := NewChangesHandler("dashboard.changes", newTestCache(t), f, nil)

	if err := h.Apply(context.Background(), models.ChangeEvent{Collection: models.CollectionProducts}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.calls != 0 {
		t.Fatal("a product change must not refit the forecast")
	}
}

func TestChangesHandlerTolerances(t *testing.T) {
	ctx := context.Background()
	unavailable := &fakeProvider{err: domrepo.ErrUnavailable}
	f := NewForecastUseCase(unavailable, newTestCache(t), nil, nil, nil, ForecastConfig{DefaultOffset: 12}, nil)
	h := NewChangesHandler("dashboard.changes", newTestCache(t), f, nil)

	if err := h.Handle(ctx, []byte("{not json")); err != nil {
		t.Fatalf("malformed payload must be dropped, got %v", err)
	}
	if err := h.Apply(ctx, models.ChangeEvent{Collection: "orders"}); err != nil {
		t.Fatalf("unknown collection must be dropped, got %v", err)
	}
	if err := h.Apply(ctx, models.ChangeEvent{Collection: models.CollectionKPIs}); err != nil {
		t.Fatalf("missing data must not fail the change, got %v", err)
	}

	failing := &fakeProvider{err: errBoom}
	h = NewChangesHandler("dashboard.changes", nil, NewForecastUseCase(failing, nil, nil, nil, nil, ForecastConfig{}, nil), nil)
	if err := h.Apply(ctx, models.ChangeEvent{Collection: models.CollectionKPIs}); !errors.Is(err, errBoom) {
		t.Fatalf("expected refresh error for retry, got %v", err)
	}
}
