package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// NormalizeHeading wraps a heading to [0, 2*Pi).
func NormalizeHeading(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return h
	}
	h = math.Mod(h, TwoPi)
	if h < 0 {
		h += TwoPi
	}
	if h >= TwoPi {
		h -= TwoPi
	}
	return h
}

// TurnBack reverses a heading.
func TurnBack(h float64) float64 {
	return NormalizeHeading(h + math.Pi)
}

// FromAngle returns the unit vector pointing along angle a.
func FromAngle(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// Angle returns the direction of v in (-Pi, Pi].
func Angle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Normalize returns v scaled to unit length. The zero vector is returned as is.
func Normalize(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return v
	}
	return r2.Scale(1/n, v)
}

// CircularDistance returns the smaller of the two arcs between angles a and b.
func CircularDistance(a, b float64) float64 {
	diff := NormalizeHeading(a - b)
	if other := TwoPi - diff; other < diff {
		return other
	}
	return diff
}

// Within reports whether a distance lies inside radius. Distances are never
// negative, so a negative value means the caller is broken.
func Within(distance, radius float64) (bool, error) {
	if distance < 0 || math.IsNaN(distance) {
		return false, fmt.Errorf("%w: negative distance %v", ErrInvalidArgument, distance)
	}
	return distance <= radius, nil
}
