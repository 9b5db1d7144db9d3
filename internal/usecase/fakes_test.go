package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	icache "FinDash/internal/service/cache"
	pkgcache "FinDash/pkg/cache"
)

type fakeProvider struct {
	mu    sync.Mutex
	seq   []models.MonthlyRevenue
	err   error
	calls int
}

func (p *fakeProvider) MonthlyRevenue(context.Context) ([]models.MonthlyRevenue, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.seq, p.err
}

func (p *fakeProvider) set(seq []models.MonthlyRevenue) {
	p.mu.Lock()
	p.seq = seq
	p.mu.Unlock()
}

type fakeArchive struct {
	saved []models.ForecastRecord
	err   error
}

func (a *fakeArchive) Init(context.Context) error { return nil }

func (a *fakeArchive) Save(_ context.Context, rec models.ForecastRecord) error {
	if a.err != nil {
		return a.err
	}
	a.saved = append(a.saved, rec)
	return nil
}

func (a *fakeArchive) History(_ context.Context, limit int) ([]models.ForecastRecord, error) {
	if a.err != nil {
		return nil, a.err
	}
	if limit > len(a.saved) {
		limit = len(a.saved)
	}
	return a.saved[:limit], nil
}

type fakePublisher struct {
	changes   []models.ChangeEvent
	forecasts []*models.RevenueForecast
	err       error
}

func (p *fakePublisher) PublishChange(_ context.Context, ev models.ChangeEvent) error {
	p.changes = append(p.changes, ev)
	return p.err
}

func (p *fakePublisher) PublishForecast(_ context.Context, f *models.RevenueForecast) error {
	p.forecasts = append(p.forecasts, f)
	return p.err
}

type fakeBroadcaster struct {
	pushed []*models.RevenueForecast
}

func (b *fakeBroadcaster) Broadcast(f *models.RevenueForecast) { b.pushed = append(b.pushed, f) }

type fakeStore struct {
	mu           sync.Mutex
	kpis         []models.KPI
	products     []models.Product
	transactions []models.Transaction
	err          error
	reads        int
	limits       []int
	replaced     *domrepo.SeedData
}

func (s *fakeStore) ListKPIs(context.Context) ([]models.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.kpis, s.err
}

func (s *fakeStore) ListProducts(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.products, s.err
}

func (s *fakeStore) ListTransactions(_ context.Context, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	s.limits = append(s.limits, limit)
	if limit > 0 && limit < len(s.transactions) {
		return s.transactions[:limit], s.err
	}
	return s.transactions, s.err
}

func (s *fakeStore) ReplaceAll(_ context.Context, data domrepo.SeedData) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = &data
	return nil
}

func (s *fakeStore) Health(context.Context) error { return nil }

func newTestCache(t *testing.T) *icache.QueryCache {
	t.Helper()
	backend := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = backend.Close() })
	return icache.NewQueryCache(backend, nil, nil)
}

// linearYear is twelve months of revenue on the line 2i+5.
func linearYear() []models.MonthlyRevenue {
	months := []string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"}
	seq := make([]models.MonthlyRevenue, len(months))
	for i, m := range months {
		seq[i] = models.MonthlyRevenue{Month: m, Revenue: float64(2*i + 5)}
	}
	return seq
}

var errBoom = errors.New("boom")

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
