package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
)

func TestSeedReplacesAndAnnounces(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	uc := NewSeedUseCase(store, pub, nil)
	uc.now = fixedNow

	data := domrepo.SeedData{KPIs: []models.KPI{{ID: "k1"}}, Products: []models.Product{{ID: "p1"}}}
	if err := uc.Seed(context.Background(), data); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if store.replaced == nil || len(store.replaced.KPIs) != 1 {
		t.Fatalf("store not replaced: %+v", store.replaced)
	}
	want := []models.Collection{models.CollectionKPIs, models.CollectionProducts, models.CollectionTransactions}
	if len(pub.changes) != len(want) {
		t.Fatalf("published %d changes", len(pub.changes))
	}
	for i, c := range want {
		if pub.changes[i].Collection != c || pub.changes[i].Reason != "seed" || !pub.changes[i].At.Equal(fixedNow()) {
			t.Fatalf("change %d = %+v", i, pub.changes[i])
		}
	}
}

func TestSeedFailures(t *testing.T) {
	store := &fakeStore{err: errBoom}
	pub := &fakePublisher{}
	if err := NewSeedUseCase(store, pub, nil).Seed(context.Background(), domrepo.SeedData{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(pub.changes) != 0 {
		t.Fatal("nothing may be announced when the store write fails")
	}

	pub = &fakePublisher{err: errBoom}
	if err := NewSeedUseCase(&fakeStore{}, pub, nil).Seed(context.Background(), domrepo.SeedData{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(pub.changes) != 3 {
		t.Fatal("a failed announcement must not stop the others")
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	content := `{"kpis":[{"_id":"k1","totalRevenue":100,"monthlyData":[{"month":"january","revenue":10}]}],
"products":[{"_id":"p1","price":5,"expense":2,"transactions":["t1"]}],
"transactions":[{"_id":"t1","buyer":"Ann","amount":5,"productIds":["p1"],"createdOn":"2026-01-02T00:00:00Z"}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.KPIs[0].MonthlyData[0].Revenue != 10 || data.Products[0].Transactions[0] != "t1" || data.Transactions[0].Buyer != "Ann" {
		t.Fatalf("unexpected seed %+v", data)
	}

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
