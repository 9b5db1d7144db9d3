package forecast

import "fmt"

// ProjectionResult is one point of a projection. Fitted is set for
// historical indices; Predicted is set for the extrapolated point.
type ProjectionResult struct {
	Index     int
	Fitted    *float64
	Predicted *float64
}

// Project fits obs and returns the fitted value at every historical index
// followed by a single predicted point futureOffset steps past the last one.
func Project(obs []Observation, futureOffset int) ([]ProjectionResult, error) {
	if futureOffset < 0 {
		return nil, fmt.Errorf("%w: negative future offset %d", ErrInvalidInput, futureOffset)
	}
	model, err := Fit(obs)
	if err != nil {
		return nil, err
	}
	return model.Project(len(obs), futureOffset), nil
}

// Project evaluates an already fitted model over a history of n points and
// one point futureOffset steps past index n-1.
func (m Model) Project(n, futureOffset int) []ProjectionResult {
	out := make([]ProjectionResult, 0, n+1)
	for i := 0; i < n; i++ {
		fitted := m.Evaluate(i)
		out = append(out, ProjectionResult{Index: i, Fitted: &fitted})
	}

	target := n - 1 + futureOffset
	predicted := m.Evaluate(target)
	return append(out, ProjectionResult{Index: target, Predicted: &predicted})
}

// ProjectShifted returns, for each historical index i, the value the model
// predicts at i+offset. With monthly data and offset 12 this is the same
// month one year ahead.
func (m Model) ProjectShifted(n, offset int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = m.Evaluate(i + offset)
	}
	return out
}
