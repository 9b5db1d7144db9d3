package models

import "time"

// ForecastRow is one row of the revenue chart. Actual and Fitted are set for
// historical months, Predicted for the future month. Shifted is the value
// the line gives offset months after a historical month.
type ForecastRow struct {
	Index     int      `json:"index"`
	Label     string   `json:"label"`
	Actual    *float64 `json:"actual,omitempty"`
	Fitted    *float64 `json:"fitted,omitempty"`
	Shifted   *float64 `json:"shifted,omitempty"`
	Predicted *float64 `json:"predicted,omitempty"`
}

type FitQuality struct {
	RSquared    float64 `json:"rSquared"`
	Correlation float64 `json:"correlation"`
	RMSE        float64 `json:"rmse"`
	ResidualSum float64 `json:"residualSum"`
}

// RevenueForecast is the full result of one forecast computation.
type RevenueForecast struct {
	Slope        float64       `json:"slope"`
	Intercept    float64       `json:"intercept"`
	Offset       int           `json:"offset"`
	Observations int           `json:"observations"`
	TargetIndex  int           `json:"targetIndex"`
	TargetLabel  string        `json:"targetLabel"`
	Predicted    float64       `json:"predicted"`
	Quality      FitQuality    `json:"quality"`
	Rows         []ForecastRow `json:"rows"`
	ComputedAt   time.Time     `json:"computedAt"`
}

// ForecastRecord is the archived summary of a computed forecast.
type ForecastRecord struct {
	ComputedAt   time.Time `json:"computedAt"`
	Slope        float64   `json:"slope"`
	Intercept    float64   `json:"intercept"`
	Offset       int       `json:"offset"`
	Observations int       `json:"observations"`
	TargetLabel  string    `json:"targetLabel"`
	Predicted    float64   `json:"predicted"`
	RSquared     float64   `json:"rSquared"`
}

// Record summarises f for archiving.
func (f RevenueForecast) Record() ForecastRecord {
	return ForecastRecord{
		ComputedAt:   f.ComputedAt,
		Slope:        f.Slope,
		Intercept:    f.Intercept,
		Offset:       f.Offset,
		Observations: f.Observations,
		TargetLabel:  f.TargetLabel,
		Predicted:    f.Predicted,
		RSquared:     f.Quality.RSquared,
	}
}
