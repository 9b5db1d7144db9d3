// Package provider supplies the monthly revenue sequence the forecast is
// fitted to.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"FinDash/internal/domain/models"
	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/services/forecast"
	pkghttp "FinDash/pkg/http"
)

// RevenueProvider returns monthly revenue in chart order. It fails with
// repository.ErrUnavailable when there is nothing to fit yet.
type RevenueProvider interface {
	MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error)
}

// KPISource is the part of the dashboard store the store provider needs.
type KPISource interface {
	ListKPIs(ctx context.Context) ([]models.KPI, error)
}

// StoreProvider reads the first KPI document's monthly data.
type StoreProvider struct {
	src KPISource
}

func NewStoreProvider(src KPISource) *StoreProvider {
	return &StoreProvider{src: src}
}

func (p *StoreProvider) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	kpis, err := p.src.ListKPIs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	return fromKPIs(kpis)
}

// HTTPProvider reads KPIs from a remote dashboard instance.
type HTTPProvider struct {
	client *pkghttp.Client
}

func NewHTTPProvider(c *pkghttp.Client) *HTTPProvider {
	return &HTTPProvider{client: c}
}

func (p *HTTPProvider) MonthlyRevenue(ctx context.Context) ([]models.MonthlyRevenue, error) {
	var resp struct {
		Data []models.KPI `json:"data"`
	}
	if err := p.client.GetJSON(ctx, "/kpi/kpis", nil, &resp); err != nil {
		var se *pkghttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("remote kpis: %w", domrepo.ErrUnavailable)
		}
		return nil, fmt.Errorf("remote kpis: %w", err)
	}
	return fromKPIs(resp.Data)
}

func fromKPIs(kpis []models.KPI) ([]models.MonthlyRevenue, error) {
	if len(kpis) == 0 {
		return nil, fmt.Errorf("no kpi document: %w", domrepo.ErrUnavailable)
	}
	monthly := kpis[0].MonthlyData
	if len(monthly) == 0 {
		return nil, fmt.Errorf("kpi document has no monthly data: %w", domrepo.ErrUnavailable)
	}
	out := make([]models.MonthlyRevenue, len(monthly))
	for i, m := range monthly {
		out[i] = models.MonthlyRevenue{Month: m.Month, Revenue: m.Revenue}
	}
	return out, nil
}

// ToObservations indexes the sequence by position.
func ToObservations(seq []models.MonthlyRevenue) []forecast.Observation {
	obs := make([]forecast.Observation, len(seq))
	for i, m := range seq {
		obs[i] = forecast.Observation{Index: i, Value: m.Revenue}
	}
	return obs
}
