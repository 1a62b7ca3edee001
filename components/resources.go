package components

import (
	"fmt"

	"github.com/pthm-cable/antworld/geom"
)

// Food is a depletable food source.
type Food struct {
	Position geom.Position
	quantity float64
}

// NewFood creates a food source. Negative quantities are treated as empty.
func NewFood(pos geom.Position, quantity float64) *Food {
	if quantity < 0 {
		quantity = 0
	}
	return &Food{Position: pos, quantity: quantity}
}

// Quantity returns the food left.
func (f *Food) Quantity() float64 {
	return f.quantity
}

// Take removes up to q food and returns how much was actually taken.
func (f *Food) Take(q float64) (float64, error) {
	if q < 0 {
		return 0, fmt.Errorf("%w: taking negative food quantity %v", ErrInvalidArgument, q)
	}
	if q <= f.quantity {
		f.quantity -= q
		return q, nil
	}
	taken := f.quantity
	f.quantity = 0
	return taken, nil
}

func (f *Food) String() string {
	return fmt.Sprintf("food at %v quantity %.2f", f.Position, f.quantity)
}

// Pheromone is a single trail marker left behind by a moving ant.
type Pheromone struct {
	Position geom.Position
	Quantity float64
}

// NewPheromone creates a trail marker.
func NewPheromone(pos geom.Position, quantity float64) (*Pheromone, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: negative pheromone quantity %v", ErrInvalidArgument, quantity)
	}
	return &Pheromone{Position: pos, Quantity: quantity}, nil
}

// IsNegligible reports whether the marker has faded below threshold.
func (p *Pheromone) IsNegligible(threshold float64) bool {
	return p.Quantity < threshold
}

// Evaporate decays the marker linearly by dt*rate. A negligible marker is
// left untouched until it is removed.
func (p *Pheromone) Evaporate(dt, rate, threshold float64) {
	if p.IsNegligible(threshold) {
		return
	}
	p.Quantity -= dt * rate
	if p.Quantity < 0 {
		p.Quantity = 0
	}
}

// Anthill is a colony's home: it stores food and spawns ants.
type Anthill struct {
	ID                ColonyID
	Position          geom.Position
	WorkerProbability float64 // chance a spawned ant is a worker

	foodQuantity float64
	spawnDelay   float64 // seconds accumulated towards the next spawn
}

// NewAnthill creates an anthill.
func NewAnthill(id ColonyID, pos geom.Position, workerProbability float64) (*Anthill, error) {
	if workerProbability < 0 || workerProbability > 1 {
		return nil, fmt.Errorf("%w: worker probability %v outside [0, 1]", ErrInvalidArgument, workerProbability)
	}
	return &Anthill{ID: id, Position: pos, WorkerProbability: workerProbability}, nil
}

// FoodQuantity returns the food stored in the anthill.
func (a *Anthill) FoodQuantity() float64 {
	return a.foodQuantity
}

// DropFood stores food brought home by a worker.
func (a *Anthill) DropFood(q float64) error {
	if q < 0 {
		return fmt.Errorf("%w: dropping negative food quantity %v", ErrInvalidArgument, q)
	}
	a.foodQuantity += q
	return nil
}

// Accumulate adds dt to the spawn timer and returns how many spawns are due
// for the given spawn interval, consuming one interval per spawn.
func (a *Anthill) Accumulate(dt, interval float64) int {
	if interval <= 0 {
		return 0
	}
	a.spawnDelay += dt
	n := 0
	for a.spawnDelay >= interval {
		a.spawnDelay -= interval
		n++
	}
	return n
}

func (a *Anthill) String() string {
	return fmt.Sprintf("anthill %d at %v food %.2f", a.ID, a.Position, a.foodQuantity)
}
