package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	icache "FinDash/internal/service/cache"
	pkgcache "FinDash/pkg/cache"
)

// DefaultTransactionLimit is the number of latest transactions served when
// the caller does not ask for a limit.
const DefaultTransactionLimit = 50

// DashboardUseCase serves the dashboard collections through the query cache.
type DashboardUseCase struct {
	store domrepo.DashboardStore
	cache *icache.QueryCache
	ttl   time.Duration
}

func NewDashboardUseCase(store domrepo.DashboardStore, cache *icache.QueryCache, ttl time.Duration) *DashboardUseCase {
	return &DashboardUseCase{store: store, cache: cache, ttl: ttl}
}

func (uc *DashboardUseCase) KPIs(ctx context.Context) ([]models.KPI, error) {
	return icache.GetOrLoad(ctx, uc.cache, "kpis:all", uc.ttl,
		[]string{models.CollectionKPIs.Tag()}, uc.store.ListKPIs)
}

func (uc *DashboardUseCase) Products(ctx context.Context) ([]models.Product, error) {
	return icache.GetOrLoad(ctx, uc.cache, "products:all", uc.ttl,
		[]string{models.CollectionProducts.Tag()}, uc.store.ListProducts)
}

// Transactions returns the newest transactions first.
func (uc *DashboardUseCase) Transactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	key := pkgcache.GenerateKeyWithParams("transactions:latest", limit)
	return icache.GetOrLoad(ctx, uc.cache, key, uc.ttl,
		[]string{models.CollectionTransactions.Tag()},
		func(ctx context.Context) ([]models.Transaction, error) {
			return uc.store.ListTransactions(ctx, limit)
		})
}

// Summary derives the chart series from all three collections.
func (uc *DashboardUseCase) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	tags := []string{
		models.CollectionKPIs.Tag(),
		models.CollectionProducts.Tag(),
		models.CollectionTransactions.Tag(),
	}
	return icache.GetOrLoad(ctx, uc.cache, "dashboard:summary", uc.ttl, tags, uc.loadSummary)
}

func (uc *DashboardUseCase) loadSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var (
		wg           sync.WaitGroup
		kpis         []models.KPI
		products     []models.Product
		transactions []models.Transaction
		errs         [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		kpis, errs[0] = uc.store.ListKPIs(ctx)
	}()
	go func() {
		defer wg.Done()
		products, errs[1] = uc.store.ListProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		transactions, errs[2] = uc.store.ListTransactions(ctx, 0)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("load summary: %w", err)
		}
	}
	return BuildSummary(kpis, products, transactions), nil
}
