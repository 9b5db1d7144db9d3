package usecase

import (
	"testing"

	"FinDash/internal/domain/models"
)

func TestBuildSummary(t *testing.T) {
	kpis := []models.KPI{{
		TotalRevenue:  3000,
		TotalExpenses: 1000,
		TotalProfit:   2000,
		ExpensesByCategory: map[string]float64{
			"salaries": 600,
			"services": 100,
			"supplies": 300,
		},
		MonthlyData: []models.MonthlyData{
			{Month: "january", Revenue: 1000.4, Expenses: 400.6, OperationalExpenses: 300, NonOperationalExpenses: 100.6},
			{Month: "february", Revenue: 1999.6, Expenses: 599.4, OperationalExpenses: 500, NonOperationalExpenses: 99.4},
		},
	}}
	products := []models.Product{{ID: "p1", Price: 10, Expense: 4}}
	txs := []models.Transaction{{ID: "t1"}, {ID: "t2"}}

	s := BuildSummary(kpis, products, txs)

	if s.ProductCount != 1 || s.TransactionCount != 2 || s.TotalProfit != 2000 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if len(s.RevenueExpenses) != 2 || s.RevenueExpenses[0] != (models.MonthAmounts{Name: "jan", Revenue: 1000, Expenses: 401}) {
		t.Fatalf("unexpected revenue/expenses %+v", s.RevenueExpenses)
	}
	if s.RevenueProfit[1] != (models.MonthProfit{Name: "feb", Revenue: 2000, Profit: 1400}) {
		t.Fatalf("unexpected revenue/profit %+v", s.RevenueProfit[1])
	}
	if s.OperationalSplit[0].Name != "jan" || s.OperationalSplit[0].NonOperationalExpenses != 100.6 {
		t.Fatalf("unexpected operational split %+v", s.OperationalSplit[0])
	}

	if len(s.ExpenseShares) != 3 {
		t.Fatalf("expense shares = %d, want 3", len(s.ExpenseShares))
	}
	first := s.ExpenseShares[0]
	if first[0] != (models.NameValue{Name: "salaries", Value: 600}) || first[1] != (models.NameValue{Name: "salaries of Total", Value: 400}) {
		t.Fatalf("unexpected share pair %+v", first)
	}
	if s.ExpenseShares[2][0].Name != "supplies" {
		t.Fatalf("categories not sorted: %+v", s.ExpenseShares)
	}
	if len(s.ProductPoints) != 1 || s.ProductPoints[0].Expense != 4 {
		t.Fatalf("unexpected product points %+v", s.ProductPoints)
	}
}

func TestBuildSummaryWithoutKPIs(t *testing.T) {
	s := BuildSummary(nil, nil, nil)
	if s.RevenueExpenses == nil || s.ExpenseShares == nil || len(s.RevenueProfit) != 0 {
		t.Fatalf("empty summary must carry empty series, got %+v", s)
	}
}
