package usecase

import (
	"math"
	"sort"

	"FinDash/internal/domain/models"
	"FinDash/pkg/util"
)

// BuildSummary derives the dashboard chart series from the first KPI
// document and the product and transaction lists. Amounts in the monthly
// series are rounded to whole dollars.
func BuildSummary(kpis []models.KPI, products []models.Product, transactions []models.Transaction) *models.DashboardSummary {
	s := &models.DashboardSummary{
		RevenueExpenses:  []models.MonthAmounts{},
		RevenueProfit:    []models.MonthProfit{},
		OperationalSplit: []models.MonthOperational{},
		ExpenseShares:    [][]models.NameValue{},
		ProductPoints:    make([]models.ProductPoint, 0, len(products)),
		ProductCount:     len(products),
		TransactionCount: len(transactions),
	}

	for _, p := range products {
		s.ProductPoints = append(s.ProductPoints, models.ProductPoint{ID: p.ID, Price: p.Price, Expense: p.Expense})
	}

	if len(kpis) == 0 {
		return s
	}
	kpi := kpis[0]
	s.TotalRevenue = kpi.TotalRevenue
	s.TotalExpenses = kpi.TotalExpenses
	s.TotalProfit = kpi.TotalProfit

	for _, m := range kpi.MonthlyData {
		name := util.ShortMonth(m.Month)
		s.RevenueExpenses = append(s.RevenueExpenses, models.MonthAmounts{
			Name:     name,
			Revenue:  math.Round(m.Revenue),
			Expenses: math.Round(m.Expenses),
		})
		s.RevenueProfit = append(s.RevenueProfit, models.MonthProfit{
			Name:    name,
			Revenue: math.Round(m.Revenue),
			Profit:  math.Round(m.Revenue - m.Expenses),
		})
		s.OperationalSplit = append(s.OperationalSplit, models.MonthOperational{
			Name:                   name,
			OperationalExpenses:    m.OperationalExpenses,
			NonOperationalExpenses: m.NonOperationalExpenses,
		})
	}

	categories := make([]string, 0, len(kpi.ExpensesByCategory))
	for k := range kpi.ExpensesByCategory {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	for _, k := range categories {
		v := kpi.ExpensesByCategory[k]
		s.ExpenseShares = append(s.ExpenseShares, []models.NameValue{
			{Name: k, Value: v},
			{Name: k + " of Total", Value: kpi.TotalExpenses - v},
		})
	}
	return s
}
