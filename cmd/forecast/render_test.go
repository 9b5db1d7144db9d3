package main

import (
	"strings"
	"testing"
	"time"

	"FinDash/internal/domain/models"
	"FinDash/internal/services/forecast"
	"FinDash/internal/usecase"
)

func TestRenderForecastListsEveryMonth(t *testing.T) {
	seq := []models.MonthlyRevenue{
		{Month: "january", Revenue: 100},
		{Month: "february", Revenue: 200},
		{Month: "march", Revenue: 300},
	}
	f := usecase.BuildForecast(seq, forecast.Model{Slope: 100, Intercept: 100}, 12)

	out := renderForecast(f)
	for _, want := range []string{"january", "march", "Regression", "1500.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	out := renderHistory([]models.ForecastRecord{{
		ComputedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		TargetLabel:  "december",
		Predicted:    4321.5,
		RSquared:     0.9,
		Observations: 12,
	}})
	if !strings.Contains(out, "4321.50") || !strings.Contains(out, "0.9000") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestMoney(t *testing.T) {
	v := 12.5
	if money(&v) != "12.50" {
		t.Fatalf("money = %q", money(&v))
	}
	if money(nil) != "" {
		t.Fatal("nil should render empty")
	}
}
