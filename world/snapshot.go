package world

import (
	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/geom"
)

// Snapshot is a copy of every entity, safe to read while the world moves on.
type Snapshot struct {
	Tick       int64
	Anthills   []components.Anthill
	Animals    []components.Agent
	Foods      []components.Food
	Pheromones []components.Pheromone
}

// Snapshot copies the current state of the world.
func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Tick:       w.tick,
		Anthills:   copyValues(w.anthills),
		Animals:    copyValues(w.animals),
		Foods:      copyValues(w.foods),
		Pheromones: copyValues(w.pheromones),
	}
}

func copyValues[T any](src []*T) []T {
	out := make([]T, len(src))
	for i, p := range src {
		out[i] = *p
	}
	return out
}

// FoodQuantities returns the quantity of every food source, in insertion order.
func (w *World) FoodQuantities() []float64 {
	out := make([]float64, len(w.foods))
	for i, f := range w.foods {
		out[i] = f.Quantity()
	}
	return out
}

// PheromoneAmounts returns the quantity of every pheromone marker, in insertion order.
func (w *World) PheromoneAmounts() []float64 {
	out := make([]float64, len(w.pheromones))
	for i, p := range w.pheromones {
		out[i] = p.Quantity
	}
	return out
}

// AnimalPositions returns the position of every agent, in update order.
func (w *World) AnimalPositions() []geom.Position {
	out := make([]geom.Position, len(w.animals))
	for i, a := range w.animals {
		out[i] = a.Position
	}
	return out
}
