package models

import "time"

// MonthlyData is one month of a KPI document. Month is a lowercase month
// name ("january").
type MonthlyData struct {
	Month                  string  `json:"month" bson:"month"`
	Revenue                float64 `json:"revenue" bson:"revenue"`
	Expenses               float64 `json:"expenses" bson:"expenses"`
	OperationalExpenses    float64 `json:"operationalExpenses" bson:"operationalExpenses"`
	NonOperationalExpenses float64 `json:"nonOperationalExpenses" bson:"nonOperationalExpenses"`
}

type DailyData struct {
	Date     string  `json:"date" bson:"date"`
	Revenue  float64 `json:"revenue" bson:"revenue"`
	Expenses float64 `json:"expenses" bson:"expenses"`
}

// KPI is a yearly business-metrics document. Amounts are in dollars.
type KPI struct {
	ID                 string             `json:"_id" bson:"_id,omitempty"`
	TotalProfit        float64            `json:"totalProfit" bson:"totalProfit"`
	TotalRevenue       float64            `json:"totalRevenue" bson:"totalRevenue"`
	TotalExpenses      float64            `json:"totalExpenses" bson:"totalExpenses"`
	ExpensesByCategory map[string]float64 `json:"expensesByCategory" bson:"expensesByCategory"`
	MonthlyData        []MonthlyData      `json:"monthlyData" bson:"monthlyData"`
	DailyData          []DailyData        `json:"dailyData" bson:"dailyData"`
}

type Product struct {
	ID           string   `json:"_id" bson:"_id,omitempty"`
	Price        float64  `json:"price" bson:"price"`
	Expense      float64  `json:"expense" bson:"expense"`
	Transactions []string `json:"transactions" bson:"transactions"`
}

type Transaction struct {
	ID         string    `json:"_id" bson:"_id,omitempty"`
	Buyer      string    `json:"buyer" bson:"buyer"`
	Amount     float64   `json:"amount" bson:"amount"`
	ProductIDs []string  `json:"productIds" bson:"productIds"`
	CreatedOn  time.Time `json:"createdOn" bson:"createdOn"`
}

// MonthlyRevenue is one point of the sequence the forecast is fitted to.
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// Collection names a dashboard collection. The value doubles as the cache
// tag of everything derived from it.
type Collection string

const (
	CollectionKPIs         Collection = "kpis"
	CollectionProducts     Collection = "products"
	CollectionTransactions Collection = "transactions"
)

// Tag is the cache tag for queries served from c.
func (c Collection) Tag() string {
	switch c {
	case CollectionKPIs:
		return "Kpis"
	case CollectionProducts:
		return "Products"
	case CollectionTransactions:
		return "Transactions"
	default:
		return string(c)
	}
}

func (c Collection) Valid() bool {
	switch c {
	case CollectionKPIs, CollectionProducts, CollectionTransactions:
		return true
	}
	return false
}

// ChangeEvent announces that a collection's contents changed.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Reason     string     `json:"reason"`
	At         time.Time  `json:"at"`
}
