package repository

import (
	"context"
	"errors"

	"FinDash/internal/domain/models"
)

// ErrUnavailable is returned when the backing data does not exist yet, e.g.
// before the store has been seeded.
var ErrUnavailable = errors.New("data unavailable")

// DashboardStore reads and replaces the dashboard collections.
type DashboardStore interface {
	ListKPIs(ctx context.Context) ([]models.KPI, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	// ListTransactions returns the newest transactions by createdOn. limit <= 0
	// returns all of them.
	ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	ReplaceAll(ctx context.Context, data SeedData) error
	Health(ctx context.Context) error
}

// SeedData is the full content of the dashboard collections.
type SeedData struct {
	KPIs         []models.KPI         `json:"kpis"`
	Products     []models.Product     `json:"products"`
	Transactions []models.Transaction `json:"transactions"`
}

// ForecastArchive stores computed forecasts.
type ForecastArchive interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, rec models.ForecastRecord) error
	// History returns the latest records, newest first.
	History(ctx context.Context, limit int) ([]models.ForecastRecord, error)
}

// ChangePublisher announces collection changes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev models.ChangeEvent) error
}

// ForecastPublisher announces computed forecasts.
type ForecastPublisher interface {
	PublishForecast(ctx context.Context, f *models.RevenueForecast) error
}

type Metrics interface {
	RecordFit(observations int, predicted float64)
	RecordCache(name string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
