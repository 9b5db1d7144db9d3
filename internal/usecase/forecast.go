package usecase

import (
	"context"
	"fmt"
	"time"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	icache "FinDash/internal/service/cache"
	"FinDash/internal/services/forecast"
	"FinDash/internal/services/provider"
	pkgcache "FinDash/pkg/cache"
	applogger "FinDash/pkg/logger"
	"FinDash/pkg/util"
)

// DefaultHistoryLimit is the number of archived forecasts served by default.
const DefaultHistoryLimit = 20

// ForecastBroadcaster pushes a freshly computed forecast to live subscribers.
type ForecastBroadcaster interface {
	Broadcast(f *models.RevenueForecast)
}

type ForecastConfig struct {
	DefaultOffset int
	CacheTTL      time.Duration
}

// ForecastUseCase fits the revenue line and projects it forward. Results are
// cached per offset and dropped whenever the KPI collection changes.
type ForecastUseCase struct {
	provider  provider.RevenueProvider
	cache     *icache.QueryCache
	archive   domrepo.ForecastArchive
	publisher domrepo.ForecastPublisher
	live      ForecastBroadcaster
	metrics   domrepo.Metrics
	cfg       ForecastConfig
	l         *applogger.Logger
	now       func() time.Time
}

func NewForecastUseCase(
	p provider.RevenueProvider,
	cache *icache.QueryCache,
	archive domrepo.ForecastArchive,
	publisher domrepo.ForecastPublisher,
	m domrepo.Metrics,
	cfg ForecastConfig,
	l *applogger.Logger,
) *ForecastUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &ForecastUseCase{
		provider:  p,
		cache:     cache,
		archive:   archive,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		l:         l,
		now:       time.Now,
	}
}

// SetBroadcaster injects the live push hub.
func (uc *ForecastUseCase) SetBroadcaster(b ForecastBroadcaster) { uc.live = b }

func (uc *ForecastUseCase) DefaultOffset() int { return uc.cfg.DefaultOffset }

func forecastKey(offset int) string {
	return pkgcache.GenerateKeyWithParams("forecast:revenue", offset)
}

// RevenueForecast returns the forecast for offset months past the last
// observed month, computing it on a cache miss.
func (uc *ForecastUseCase) RevenueForecast(ctx context.Context, offset int) (*models.RevenueForecast, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", forecast.ErrInvalidInput, offset)
	}
	return icache.GetOrLoad(ctx, uc.cache, forecastKey(offset), uc.cfg.CacheTTL,
		[]string{models.CollectionKPIs.Tag()},
		func(ctx context.Context) (*models.RevenueForecast, error) {
			return uc.compute(ctx, offset)
		})
}

// Refresh recomputes the default forecast, replaces the cached copy and
// pushes it to live subscribers.
func (uc *ForecastUseCase) Refresh(ctx context.Context) (*models.RevenueForecast, error) {
	gen := uc.cache.Begin(ctx, models.CollectionKPIs.Tag())
	f, err := uc.compute(ctx, uc.cfg.DefaultOffset)
	if err != nil {
		return nil, err
	}
	uc.cache.StoreIfCurrent(ctx, forecastKey(f.Offset), f, uc.cfg.CacheTTL, gen)
	if uc.live != nil {
		uc.live.Broadcast(f)
	}
	return f, nil
}

// History lists archived forecasts, newest first.
func (uc *ForecastUseCase) History(ctx context.Context, limit int) ([]models.ForecastRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if uc.archive == nil {
		return []models.ForecastRecord{}, nil
	}
	recs, err := uc.archive.History(ctx, limit)
	if err != nil {
		uc.recordError("archive")
		return nil, fmt.Errorf("forecast history: %w", err)
	}
	return recs, nil
}

func (uc *ForecastUseCase) compute(ctx context.Context, offset int) (*models.RevenueForecast, error) {
	start := time.Now()

	seq, err := uc.provider.MonthlyRevenue(ctx)
	if err != nil {
		uc.recordError("provider")
		return nil, fmt.Errorf("revenue forecast: %w", err)
	}

	obs := provider.ToObservations(seq)
	model, err := forecast.Fit(obs)
	if err != nil {
		uc.recordError("fit")
		return nil, fmt.Errorf("revenue forecast: %w", err)
	}

	f := BuildForecast(seq, model, offset)
	f.Quality = toQuality(forecast.Assess(obs, model))
	f.ComputedAt = uc.now().UTC()

	if uc.metrics != nil {
		uc.metrics.RecordFit(len(obs), f.Predicted)
		uc.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	}
	uc.l.Info("revenue forecast computed",
		applogger.Int("observations", len(obs)),
		applogger.Int("offset", offset),
		applogger.Float64("slope", model.Slope),
		applogger.Float64("predicted", f.Predicted),
		applogger.Duration("duration_ms", time.Since(start)),
	)

	uc.persist(ctx, f)
	return f, nil
}

// persist archives and announces f. Failures are logged only.
func (uc *ForecastUseCase) persist(ctx context.Context, f *models.RevenueForecast) {
	if uc.archive != nil {
		if err := uc.archive.Save(ctx, f.Record()); err != nil {
			uc.recordError("archive")
			uc.l.Warn("forecast archive failed", applogger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishForecast(ctx, f); err != nil {
			uc.recordError("publish")
			uc.l.Warn("forecast publish failed", applogger.Error(err))
		}
	}
}

func (uc *ForecastUseCase) recordError(kind string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(kind)
	}
}

// BuildForecast lays out the chart rows for seq under model: one row per
// observed month with the actual, fitted and year-shifted values, then the
// predicted row offset months past the last month.
func BuildForecast(seq []models.MonthlyRevenue, model forecast.Model, offset int) *models.RevenueForecast {
	n := len(seq)
	shifted := model.ProjectShifted(n, offset)
	projected := model.Project(n, offset)

	rows := make([]models.ForecastRow, 0, n+1)
	for i, p := range projected[:n] {
		actual := seq[i].Revenue
		rows = append(rows, models.ForecastRow{
			Index:   p.Index,
			Label:   seq[i].Month,
			Actual:  &actual,
			Fitted:  p.Fitted,
			Shifted: &shifted[i],
		})
	}

	target := projected[n]
	label := util.ShiftMonthLabel(seq[n-1].Month, offset)
	rows = append(rows, models.ForecastRow{
		Index:     target.Index,
		Label:     label,
		Predicted: target.Predicted,
	})

	return &models.RevenueForecast{
		Slope:        model.Slope,
		Intercept:    model.Intercept,
		Offset:       offset,
		Observations: n,
		TargetIndex:  target.Index,
		TargetLabel:  label,
		Predicted:    *target.Predicted,
		Rows:         rows,
	}
}

func toQuality(q forecast.Quality) models.FitQuality {
	return models.FitQuality{
		RSquared:    q.RSquared,
		Correlation: q.Correlation,
		RMSE:        q.RMSE,
		ResidualSum: q.ResidualSum,
	}
}
