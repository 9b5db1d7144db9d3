package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinDash/internal/domain/models"
)

func newDashboardFixture(t *testing.T) (*DashboardUseCase, *fakeStore) {
	t.Helper()
	store := &fakeStore{
		kpis:     []models.KPI{{ID: "k1", TotalRevenue: 10}},
		products: []models.Product{{ID: "p1"}, {ID: "p2"}},
	}
	for i := 0; i < 60; i++ {
		store.transactions = append(store.transactions, models.Transaction{Amount: float64(i)})
	}
	return NewDashboardUseCase(store, newTestCache(t), time.Minute), store
}

func TestDashboardCollectionsAreCached(t *testing.T) {
	uc, store := newDashboardFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		kpis, err := uc.KPIs(ctx)
		if err != nil || len(kpis) != 1 || kpis[0].ID != "k1" {
			t.Fatalf("kpis = %+v, %v", kpis, err)
		}
		products, err := uc.Products(ctx)
		if err != nil || len(products) != 2 {
			t.Fatalf("products = %+v, %v", products, err)
		}
	}
	if store.reads != 2 {
		t.Fatalf("store reads = %d, want 2", store.reads)
	}
}

func TestTransactionsDefaultLimit(t *testing.T) {
	uc, store := newDashboardFixture(t)
	ctx := context.Background()

	txs, err := uc.Transactions(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != DefaultTransactionLimit || store.limits[0] != DefaultTransactionLimit {
		t.Fatalf("got %d transactions with limit %v", len(txs), store.limits)
	}

	txs, _ = uc.Transactions(ctx, 5)
	if len(txs) != 5 {
		t.Fatalf("got %d transactions, want 5", len(txs))
	}
	if _, err := uc.Transactions(ctx, 5); err != nil || len(store.limits) != 2 {
		t.Fatalf("limit 5 not cached: %v", store.limits)
	}
}

func TestSummaryLoadsAllCollections(t *testing.T) {
	uc, store := newDashboardFixture(t)

	s, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ProductCount != 2 || s.TransactionCount != 60 || s.TotalRevenue != 10 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if len(store.limits) != 1 || store.limits[0] != 0 {
		t.Fatalf("summary must count every transaction, limits = %v", store.limits)
	}
}

func TestDashboardStoreErrors(t *testing.T) {
	uc, store := newDashboardFixture(t)
	store.err = errBoom

	if _, err := uc.KPIs(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := uc.Summary(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
