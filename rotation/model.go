package rotation

import (
	"fmt"
	"math"

	"github.com/pthm-cable/antworld/geom"
)

// Sensor reports perceived pheromone quantity per turn bucket around a heading.
type Sensor interface {
	PheromoneQuantities(pos geom.Position, heading float64, angles []float64) []float64
}

// Model turns the default table into the table an agent actually samples from.
type Model interface {
	Compute(def Table, pos geom.Position, heading float64, sensor Sensor) (Table, error)
}

// Inertial ignores the environment and keeps the default table.
type Inertial struct{}

// Compute implements Model.
func (Inertial) Compute(def Table, _ geom.Position, _ float64, _ Sensor) (Table, error) {
	return def, nil
}

// PheromoneBias favours turn buckets that smell of pheromone.
//
// Each bucket weight is multiplied by d^Alpha with d = 1/(1+exp(-Beta*(Q-Q0)))
// and the table is renormalized. When every product vanishes (or overflows)
// there is nothing to normalize against and the default table is used.
type PheromoneBias struct {
	Alpha float64
	Beta  float64
	Q0    float64
}

// Compute implements Model.
func (m PheromoneBias) Compute(def Table, pos geom.Position, heading float64, sensor Sensor) (Table, error) {
	q := sensor.PheromoneQuantities(pos, heading, def.Angles())
	if len(q) != def.Len() {
		return Table{}, fmt.Errorf("%w: sensor returned %d buckets, table has %d", ErrInvalidArgument, len(q), def.Len())
	}

	num := make([]float64, def.Len())
	var s float64
	for i, p := range def.probs {
		d := 1 / (1 + math.Exp(-m.Beta*(q[i]-m.Q0)))
		num[i] = p * math.Pow(d, m.Alpha)
		s += num[i]
	}
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return def, nil
	}
	for i := range num {
		num[i] /= s
	}
	return Table{angles: def.Angles(), probs: num}, nil
}

// ClosestBucket returns the index of the angle closest to bearing along the
// circle. Ties go to the lowest index.
func ClosestBucket(angles []float64, bearing float64) int {
	best := math.MaxFloat64
	idx := 0
	for k, a := range angles {
		if d := geom.CircularDistance(a, bearing); d < best {
			best = d
			idx = k
		}
	}
	return idx
}
