package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	applogger "FinDash/pkg/logger"
)

// SeedUseCase replaces the dashboard collections and announces the change.
type SeedUseCase struct {
	store     domrepo.DashboardStore
	publisher domrepo.ChangePublisher
	l         *applogger.Logger
	now       func() time.Time
}

func NewSeedUseCase(store domrepo.DashboardStore, p domrepo.ChangePublisher, l *applogger.Logger) *SeedUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &SeedUseCase{store: store, publisher: p, l: l, now: time.Now}
}

// LoadSeedFile reads seed data from a JSON file.
func LoadSeedFile(path string) (domrepo.SeedData, error) {
	var data domrepo.SeedData
	b, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read seed: %w", err)
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return data, fmt.Errorf("parse seed: %w", err)
	}
	return data, nil
}

// Seed replaces every collection with data and publishes one change event
// per collection.
func (uc *SeedUseCase) Seed(ctx context.Context, data domrepo.SeedData) error {
	if err := uc.store.ReplaceAll(ctx, data); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	uc.l.Info("dashboard seeded",
		applogger.Int("kpis", len(data.KPIs)),
		applogger.Int("products", len(data.Products)),
		applogger.Int("transactions", len(data.Transactions)),
	)

	var errs []error
	for _, c := range []models.Collection{models.CollectionKPIs, models.CollectionProducts, models.CollectionTransactions} {
		ev := models.ChangeEvent{Collection: c, Reason: "seed", At: uc.now().UTC()}
		if err := uc.publisher.PublishChange(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("announce %s: %w", c, err))
		}
	}
	return errors.Join(errs...)
}
