package forecast

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidInput is returned when a sequence cannot be fitted.
var ErrInvalidInput = errors.New("forecast: invalid input")

// MinObservations is the smallest sequence a line can be fitted to.
const MinObservations = 2

// Observation is one historical point: the ordinal position of a month
// within the window and the value observed for it.
type Observation struct {
	Index int
	Value float64
}

// Model is an ordinary least-squares line: value ≈ Slope*index + Intercept.
type Model struct {
	Slope     float64
	Intercept float64
}

// Evaluate returns the value of the line at index. No bounds are checked;
// negative and far-future indices extrapolate.
func (m Model) Evaluate(index int) float64 {
	return m.Slope*float64(index) + m.Intercept
}

// Fit computes the least-squares line over (index, value) pairs using the
// closed-form normal equations. Indices must form the dense set 0..N-1 with
// N >= 2; the order of obs does not matter.
func Fit(obs []Observation) (Model, error) {
	ordered, err := ordered(obs)
	if err != nil {
		return Model{}, err
	}

	n := float64(len(ordered))
	var sumX, sumY, sumXY, sumXX float64
	for _, o := range ordered {
		x := float64(o.Index)
		sumX += x
		sumY += o.Value
		sumXY += x * o.Value
		sumXX += x * x
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return Model{}, fmt.Errorf("%w: zero variance in indices", ErrInvalidInput)
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n
	return Model{Slope: slope, Intercept: intercept}, nil
}

// ordered validates obs and returns a copy sorted by index so that the
// floating-point sums are accumulated in the same order for any permutation.
func ordered(obs []Observation) ([]Observation, error) {
	if len(obs) < MinObservations {
		return nil, fmt.Errorf("%w: need at least %d observations, got %d", ErrInvalidInput, MinObservations, len(obs))
	}

	out := make([]Observation, len(obs))
	copy(out, obs)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	for i, o := range out {
		if o.Index != i {
			if i > 0 && o.Index == out[i-1].Index {
				return nil, fmt.Errorf("%w: duplicate index %d", ErrInvalidInput, o.Index)
			}
			return nil, fmt.Errorf("%w: indices must be contiguous from 0, missing %d", ErrInvalidInput, i)
		}
	}
	return out, nil
}
