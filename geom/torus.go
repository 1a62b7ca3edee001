// Package geom provides position and vector arithmetic on a wrapping (toroidal) plane.
package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidArgument is returned for malformed geometry inputs.
var ErrInvalidArgument = errors.New("geom: invalid argument")

// Position is a point kept inside [0,W)x[0,H) of the torus that created it.
type Position struct {
	X, Y float64
}

// Vec returns the position as a free vector from the origin.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Torus describes a W x H plane whose edges wrap around.
type Torus struct {
	Width  float64
	Height float64
}

// NewTorus creates a torus. Both dimensions must be positive.
func NewTorus(width, height float64) (Torus, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Torus{}, fmt.Errorf("%w: torus dimensions %vx%v", ErrInvalidArgument, width, height)
	}
	return Torus{Width: width, Height: height}, nil
}

// Wrap returns the position for (x, y), folding each axis back into range.
// Wrapping steps one dimension at a time so boundary values land exactly
// where repeated subtraction puts them. Non-finite input is returned as is.
func (t Torus) Wrap(x, y float64) Position {
	if !isFinite(x) || !isFinite(y) || !isFinite(t.Width) || !isFinite(t.Height) || t.Width <= 0 || t.Height <= 0 {
		return Position{X: x, Y: y}
	}
	// Far-out values are reduced first; the loops then finish in a step or two.
	if math.Abs(x) > 4*t.Width {
		x = math.Mod(x, t.Width)
	}
	if math.Abs(y) > 4*t.Height {
		y = math.Mod(y, t.Height)
	}
	for x < 0 || x >= t.Width {
		if x < 0 {
			x += t.Width
		} else {
			x -= t.Width
		}
	}
	for y < 0 || y >= t.Height {
		if y < 0 {
			y += t.Height
		} else {
			y -= t.Height
		}
	}
	return Position{X: x, Y: y}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Position wraps a free vector into a position.
func (t Torus) Position(v r2.Vec) Position {
	return t.Wrap(v.X, v.Y)
}

// Add translates p by v and wraps the result.
func (t Torus) Add(p Position, v r2.Vec) Position {
	return t.Wrap(p.X+v.X, p.Y+v.Y)
}

// Vector returns the shortest offset leading from a to b.
//
// The nine translates of b by {-W,0,W}x{-H,0,H} are scanned with the x
// offset in the outer loop and the y offset in the inner loop; the first
// candidate strictly closer than the current best wins. Trajectories depend
// on this order when two translates are equidistant.
func (t Torus) Vector(a, b Position) r2.Vec {
	origin := a.Vec()
	best := math.Inf(1)
	var answer r2.Vec
	for i := -1.0; i <= 1; i++ {
		for j := -1.0; j <= 1; j++ {
			candidate := r2.Vec{X: b.X + i*t.Width, Y: b.Y + j*t.Height}
			if d := r2.Norm(r2.Sub(candidate, origin)); d < best {
				best = d
				answer = candidate
			}
		}
	}
	return r2.Sub(answer, origin)
}

// Distance returns the length of the shortest offset between a and b.
func (t Torus) Distance(a, b Position) float64 {
	return r2.Norm(t.Vector(a, b))
}

// Closest returns the item nearest to p. The first of several equally near
// items wins. ok is false when items is empty.
func Closest[T any](t Torus, p Position, items []T, pos func(T) Position) (best T, ok bool) {
	var dist float64
	for _, it := range items {
		d := t.Distance(p, pos(it))
		if !ok || d < dist {
			best, dist, ok = it, d, true
		}
	}
	return best, ok
}
