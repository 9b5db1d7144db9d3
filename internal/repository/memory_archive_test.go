package repository

import (
	"context"
	"testing"

	"FinDash/internal/domain/models"
)

func TestMemoryArchiveNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive(3)
	for i := 1; i <= 5; i++ {
		if err := a.Save(ctx, models.ForecastRecord{Observations: i}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	all, _ := a.History(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, want := range []int{5, 4, 3} {
		if all[i].Observations != want {
			t.Fatalf("history[%d] = %d, want %d", i, all[i].Observations, want)
		}
	}

	two, _ := a.History(ctx, 2)
	if len(two) != 2 || two[0].Observations != 5 {
		t.Fatalf("unexpected limited history %+v", two)
	}
}
