package repository

import (
	"context"
	"sync"

	"FinDash/internal/domain/models"
)

// MemoryArchive keeps the latest forecasts in process. It backs the history
// endpoint when ClickHouse is disabled.
type MemoryArchive struct {
	mu      sync.Mutex
	records []models.ForecastRecord
	max     int
}

func NewMemoryArchive(max int) *MemoryArchive {
	if max <= 0 {
		max = 100
	}
	return &MemoryArchive{max: max}
}

func (a *MemoryArchive) Init(context.Context) error { return nil }

func (a *MemoryArchive) Save(_ context.Context, rec models.ForecastRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	if over := len(a.records) - a.max; over > 0 {
		a.records = append([]models.ForecastRecord(nil), a.records[over:]...)
	}
	return nil
}

func (a *MemoryArchive) History(_ context.Context, limit int) ([]models.ForecastRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 || limit > len(a.records) {
		limit = len(a.records)
	}
	out := make([]models.ForecastRecord, 0, limit)
	for i := len(a.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.records[i])
	}
	return out, nil
}
