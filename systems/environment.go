package systems

import (
	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/rotation"
)

// AnimalEnvironment is what every agent may ask of the world.
//
// SpecificBehavior, AfterMove and RotationTable are routed by the world on
// the agent's species, so shared logic never needs to know which routine
// runs.
type AnimalEnvironment interface {
	// VisibleEnemies returns the living enemies within sight of a.
	VisibleEnemies(a *components.Agent) []*components.Agent
	// IsVisibleFromEnemies reports whether any living enemy can see a.
	IsVisibleFromEnemies(a *components.Agent) bool

	SpecificBehavior(a *components.Agent, dt float64) error
	AfterMove(a *components.Agent, dt float64) error
	RotationTable(a *components.Agent) (rotation.Table, error)
}

// AntEnvironment adds the pheromone capabilities.
type AntEnvironment interface {
	AnimalEnvironment
	rotation.Sensor

	AddPheromone(p *components.Pheromone) error
}

// WorkerEnvironment adds food handling.
type WorkerEnvironment interface {
	AntEnvironment

	// ClosestFood returns the nearest food within perception range, or nil.
	ClosestFood(w *components.Agent) *components.Food
	// DropFood stores the worker's load in its home anthill if the anthill
	// is within perception range, reporting whether it did.
	DropFood(w *components.Agent) (bool, error)
}

// AnthillEnvironment is what an anthill may ask of the world.
type AnthillEnvironment interface {
	AddAnt(a *components.Agent) error
}

// FoodGeneratorEnvironment is what the food generator may ask of the world.
type FoodGeneratorEnvironment interface {
	AddFood(f *components.Food) error
}

// Recorder receives notable agent events, typically for telemetry.
type Recorder interface {
	RecordHit(attacker, target *components.Agent, damage int)
	RecordFoodTaken(w *components.Agent, q float64)
	RecordFoodDelivered(w *components.Agent, q float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordHit(_, _ *components.Agent, _ int) {}
func (nopRecorder) RecordFoodTaken(_ *components.Agent, _ float64) {}
func (nopRecorder) RecordFoodDelivered(_ *components.Agent, _ float64) {}
