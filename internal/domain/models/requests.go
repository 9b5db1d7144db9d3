package models

// Query parameters of the dashboard HTTP endpoints.

type TransactionsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

// ForecastRequest has no default tag: the handler pre-fills Offset with the
// configured default before binding. Offset is capped at ten years so the
// target index stays well inside the archive's Int32 column.
type ForecastRequest struct {
	Offset int `query:"offset" json:"offset" validate:"gte=0,lte=120"`
}

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}
