// Package rotation models how agents pick their next change of heading.
package rotation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/antworld/random"
)

// ErrInvalidArgument is returned for malformed probability tables.
var ErrInvalidArgument = errors.New("rotation: invalid argument")

// Turn buckets (degrees) and their inertial weights. An undisturbed agent
// keeps its heading almost all the time.
var (
	defaultAnglesDeg = []float64{-180, -100, -55, -25, -10, 0, 10, 25, 55, 100, 180}
	defaultProbs     = []float64{0.0000, 0.0000, 0.0005, 0.0010, 0.0050, 0.9870, 0.0050, 0.0010, 0.0005, 0.0000, 0.0000}
)

// Table holds candidate turn angles (radians) with their selection weights.
type Table struct {
	angles []float64
	probs  []float64
}

// NewTable builds a table from parallel angle and probability slices.
// The inputs are copied.
func NewTable(angles, probs []float64) (Table, error) {
	if len(angles) == 0 || len(probs) == 0 {
		return Table{}, fmt.Errorf("%w: empty rotation table", ErrInvalidArgument)
	}
	if len(angles) != len(probs) {
		return Table{}, fmt.Errorf("%w: %d angles for %d probabilities", ErrInvalidArgument, len(angles), len(probs))
	}
	if floats.HasNaN(angles) || floats.HasNaN(probs) || hasInf(angles) || hasInf(probs) {
		return Table{}, fmt.Errorf("%w: non-finite rotation table entry", ErrInvalidArgument)
	}
	return Table{
		angles: append([]float64(nil), angles...),
		probs:  append([]float64(nil), probs...),
	}, nil
}

// Default returns the inertial table shared by every species.
func Default() Table {
	angles := make([]float64, len(defaultAnglesDeg))
	for i, deg := range defaultAnglesDeg {
		angles[i] = deg * math.Pi / 180
	}
	return Table{angles: angles, probs: append([]float64(nil), defaultProbs...)}
}

// Angles returns a copy of the turn angles.
func (t Table) Angles() []float64 {
	return append([]float64(nil), t.angles...)
}

// Probabilities returns a copy of the selection weights.
func (t Table) Probabilities() []float64 {
	return append([]float64(nil), t.probs...)
}

// Len returns the number of buckets.
func (t Table) Len() int {
	return len(t.angles)
}

// Sum returns the total weight of the table.
func (t Table) Sum() float64 {
	return floats.Sum(t.probs)
}

// Sample draws one turn angle by weighted categorical selection: a uniform
// draw scaled to the total weight picks the first bucket whose cumulative
// weight reaches it.
func Sample(t Table, src random.Source) (float64, error) {
	if t.Len() == 0 {
		return 0, fmt.Errorf("%w: sampling an empty table", ErrInvalidArgument)
	}
	cum := make([]float64, len(t.probs))
	floats.CumSum(cum, t.probs)
	total := cum[len(cum)-1]

	u, err := src.Uniform(0, 1)
	if err != nil {
		return 0, err
	}
	draw := u * total
	for i, c := range cum {
		if c >= draw {
			return t.angles[i], nil
		}
	}
	// Only reachable through rounding in the cumulative sum.
	return t.angles[len(t.angles)-1], nil
}

func hasInf(s []float64) bool {
	for _, v := range s {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
