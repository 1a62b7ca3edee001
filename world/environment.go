package world

import (
	"fmt"

	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/rotation"
	"github.com/pthm-cable/antworld/systems"
)

// Compile-time checks for the environment contracts.
var (
	_ systems.WorkerEnvironment        = (*World)(nil)
	_ systems.AnthillEnvironment       = (*World)(nil)
	_ systems.FoodGeneratorEnvironment = (*World)(nil)
)

// within reports whether b lies inside radius of a.
func (w *World) within(a, b geom.Position, radius float64) bool {
	// Torus distances are never negative, so Within cannot fail here.
	ok, err := geom.Within(w.torus.Distance(a, b), radius)
	return err == nil && ok
}

// VisibleEnemies implements systems.AnimalEnvironment.
func (w *World) VisibleEnemies(a *components.Agent) []*components.Agent {
	var out []*components.Agent
	for _, o := range w.animals {
		if o == a || !systems.IsEnemy(o, a) {
			continue
		}
		if w.within(a.Position, o.Position, w.cfg.Animal.SightDistance) {
			out = append(out, o)
		}
	}
	return out
}

// IsVisibleFromEnemies implements systems.AnimalEnvironment.
func (w *World) IsVisibleFromEnemies(a *components.Agent) bool {
	for _, o := range w.animals {
		if o != a && systems.IsEnemy(o, a) && w.within(a.Position, o.Position, w.cfg.Animal.SightDistance) {
			return true
		}
	}
	return false
}

// SpecificBehavior implements systems.AnimalEnvironment: workers forage,
// soldiers and termites look for a fight.
func (w *World) SpecificBehavior(a *components.Agent, dt float64) error {
	switch a.Species {
	case components.SpeciesWorker:
		return w.behavior.Forage(a, w, dt)
	case components.SpeciesSoldier, components.SpeciesTermite:
		return w.behavior.SeekEnemies(a, w, dt)
	default:
		return fmt.Errorf("%w: unknown species %v", ErrInvalidArgument, a.Species)
	}
}

// AfterMove implements systems.AnimalEnvironment: ants leave a trail.
func (w *World) AfterMove(a *components.Agent, _ float64) error {
	if a.IsAnt() {
		return w.behavior.SpreadPheromones(a, w)
	}
	return nil
}

// RotationTable implements systems.AnimalEnvironment. Ants consult their
// rotation model with the world as pheromone sensor; termites use the
// default table.
func (w *World) RotationTable(a *components.Agent) (rotation.Table, error) {
	def := rotation.Default()
	if !a.IsAnt() || a.RotationModel == nil {
		return def, nil
	}
	return a.RotationModel.Compute(def, a.Position, a.Heading, w)
}

// PheromoneQuantities implements rotation.Sensor. Every non-negligible marker
// within smelling distance adds its quantity to the turn bucket closest to
// its bearing relative to heading.
func (w *World) PheromoneQuantities(pos geom.Position, heading float64, angles []float64) []float64 {
	q := make([]float64, len(angles))
	if len(angles) == 0 {
		return q
	}
	// TODO: index markers in a torus-aware grid once trails reach tens of
	// thousands; the scan must keep insertion order within each bucket sum.
	for _, p := range w.pheromones {
		if p.IsNegligible(w.cfg.Pheromone.Threshold) || !w.within(pos, p.Position, w.cfg.Ant.SmellDistance) {
			continue
		}
		bearing := geom.Angle(w.torus.Vector(pos, p.Position)) - heading
		q[rotation.ClosestBucket(angles, bearing)] += p.Quantity
	}
	return q
}

// ClosestFood implements systems.WorkerEnvironment.
func (w *World) ClosestFood(a *components.Agent) *components.Food {
	f, ok := geom.Closest(w.torus, a.Position, w.foods, func(f *components.Food) geom.Position { return f.Position })
	if !ok || !w.within(a.Position, f.Position, w.cfg.Ant.PerceptionDistance) {
		return nil
	}
	return f
}

// DropFood implements systems.WorkerEnvironment.
func (w *World) DropFood(a *components.Agent) (bool, error) {
	if a.FoodQuantity < 0 {
		return false, fmt.Errorf("%w: worker carries %v food", ErrInvalidArgument, a.FoodQuantity)
	}
	h := w.anthill(a.Colony)
	if h == nil || !w.within(a.Position, h.Position, w.cfg.Ant.PerceptionDistance) {
		return false, nil
	}
	if err := h.DropFood(a.FoodQuantity); err != nil {
		return false, err
	}
	return true, nil
}

func (w *World) anthill(id components.ColonyID) *components.Anthill {
	for _, h := range w.anthills {
		if h.ID == id {
			return h
		}
	}
	return nil
}
