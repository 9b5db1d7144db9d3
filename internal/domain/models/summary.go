package models

// MonthAmounts is a month with revenue and expenses.
type MonthAmounts struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// MonthProfit pairs revenue with profit under a three-letter month name.
type MonthProfit struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type MonthOperational struct {
	Name                   string  `json:"name"`
	OperationalExpenses    float64 `json:"operationalExpenses"`
	NonOperationalExpenses float64 `json:"nonOperationalExpenses"`
}

// NameValue is one slice of a two-slice share chart.
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type ProductPoint struct {
	ID      string  `json:"id"`
	Price   float64 `json:"price"`
	Expense float64 `json:"expense"`
}

// DashboardSummary holds the series the dashboard charts are drawn from.
type DashboardSummary struct {
	RevenueExpenses    []MonthAmounts     `json:"revenueExpenses"`
	RevenueProfit      []MonthProfit      `json:"revenueProfit"`
	OperationalSplit   []MonthOperational `json:"operationalSplit"`
	ExpenseShares      [][]NameValue      `json:"expenseShares"`
	ProductPoints      []ProductPoint     `json:"productPoints"`
	ProductCount       int                `json:"productCount"`
	TransactionCount   int                `json:"transactionCount"`
	TotalRevenue       float64            `json:"totalRevenue"`
	TotalExpenses      float64            `json:"totalExpenses"`
	TotalProfit        float64            `json:"totalProfit"`
}
