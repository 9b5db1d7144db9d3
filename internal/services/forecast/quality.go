package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Quality summarises how well a model explains the observations it was fitted to.
type Quality struct {
	RSquared    float64
	Correlation float64
	RMSE        float64
	ResidualSum float64
}

// Assess computes goodness-of-fit statistics of model against obs.
// Undefined statistics (constant values) are reported as 1 for R² when the
// fit is exact and 0 for correlation.
func Assess(obs []Observation, model Model) Quality {
	if len(obs) == 0 {
		return Quality{}
	}

	xs := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	var residualSum, squared float64
	for i, o := range obs {
		xs[i] = float64(o.Index)
		ys[i] = o.Value
		r := o.Value - model.Evaluate(o.Index)
		residualSum += r
		squared += r * r
	}

	q := Quality{
		RSquared:    stat.RSquared(xs, ys, nil, model.Intercept, model.Slope),
		Correlation: stat.Correlation(xs, ys, nil),
		RMSE:        math.Sqrt(squared / float64(len(obs))),
		ResidualSum: residualSum,
	}
	if math.IsNaN(q.RSquared) || math.IsInf(q.RSquared, 0) {
		q.RSquared = 0
		if squared == 0 {
			q.RSquared = 1
		}
	}
	if math.IsNaN(q.Correlation) {
		q.Correlation = 0
	}
	return q
}
