// Package systems holds the per-agent behavior run by the world each tick.
package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/random"
	"github.com/pthm-cable/antworld/rotation"
	"gonum.org/v1/gonum/spatial/r2"
)

// Behavior runs the per-tick state machine shared by every agent.
type Behavior struct {
	Rules Rules
	Torus geom.Torus

	rng random.Source
	rec Recorder
}

// NewBehavior creates a behavior system drawing from rng.
func NewBehavior(rules Rules, torus geom.Torus, rng random.Source) *Behavior {
	return &Behavior{Rules: rules, Torus: torus, rng: rng, rec: nopRecorder{}}
}

// SetRecorder installs an event recorder. nil restores the no-op recorder.
func (b *Behavior) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	b.rec = r
}

// NewAgent creates an agent of the given species with a uniformly random
// heading. Ants get the pheromone-biased rotation model and the given colony;
// termites ignore colony and turn inertially. The ID is left for the world
// to assign.
func (b *Behavior) NewAgent(species components.Species, pos geom.Position, colony components.ColonyID) (*components.Agent, error) {
	heading, err := b.rng.Uniform(0, geom.TwoPi)
	if err != nil {
		return nil, err
	}
	p := b.Rules.Policy(species)
	a := &components.Agent{
		Species:   species,
		Position:  pos,
		Heading:   geom.NormalizeHeading(heading),
		HitPoints: p.HitPoints,
		Lifespan:  p.Lifespan,
		State:     components.StateIdle,
	}
	if species.IsAnt() {
		a.Colony = colony
		a.RotationModel = b.Rules.AntBias
		a.LastPosition = pos
	} else {
		a.RotationModel = rotation.Inertial{}
	}
	return a, nil
}

// Update advances one agent by dt. Dead agents are left untouched.
func (b *Behavior) Update(a *components.Agent, env AnimalEnvironment, dt float64) error {
	if a.IsDead() {
		return nil
	}
	a.Lifespan -= dt * b.Rules.LifespanDecreaseFactor
	if a.IsDead() {
		return nil
	}

	switch a.State {
	case components.StateAttack:
		if b.CanAttack(a) {
			return b.Fight(a, env, dt)
		}
		a.State = components.StateEscaping
		a.AttackDuration = 0
		return nil
	case components.StateEscaping:
		return b.Escape(a, env, dt)
	default:
		return env.SpecificBehavior(a, dt)
	}
}

// CanAttack reports whether the agent may keep fighting.
func (b *Behavior) CanAttack(a *components.Agent) bool {
	return a.State != components.StateEscaping &&
		a.AttackDuration <= b.Rules.Policy(a.Species).MaxAttackDuration
}

// Move rotates the agent once per elapsed rotation interval, then advances it
// along its heading and lets the environment react.
func (b *Behavior) Move(a *components.Agent, env AnimalEnvironment, dt float64) error {
	a.RotationDelay += dt
	for b.Rules.RotationInterval > 0 && a.RotationDelay >= b.Rules.RotationInterval {
		a.RotationDelay -= b.Rules.RotationInterval
		table, err := env.RotationTable(a)
		if err != nil {
			return fmt.Errorf("rotation table for %s#%d: %w", a.Species, a.ID, err)
		}
		turn, err := rotation.Sample(table, b.rng)
		if err != nil {
			return err
		}
		a.Heading = geom.NormalizeHeading(a.Heading + turn)
	}

	speed := b.Rules.Policy(a.Species).Speed
	a.Position = b.Torus.Add(a.Position, r2.Scale(speed*dt, geom.FromAngle(a.Heading)))
	return env.AfterMove(a, dt)
}

// Fight hits the nearest visible enemy, pulling both sides into the attack
// state. With nobody left to fight the agent breaks off and escapes.
func (b *Behavior) Fight(a *components.Agent, env AnimalEnvironment, dt float64) error {
	target, ok := geom.Closest(b.Torus, a.Position, env.VisibleEnemies(a), agentPosition)
	if !ok {
		a.AttackDuration = 0
		if a.State == components.StateAttack {
			a.State = components.StateEscaping
		}
		return nil
	}

	target.State = components.StateAttack
	a.State = components.StateAttack

	p := b.Rules.Policy(a.Species)
	draw, err := b.rng.Uniform(float64(p.MinStrength), float64(p.MaxStrength))
	if err != nil {
		return err
	}
	hit := int(math.Round(draw))
	if !target.IsDead() {
		target.HitPoints -= hit
		b.rec.RecordHit(a, target, hit)
	}
	a.AttackDuration += dt
	return nil
}

// Escape moves away and calms down once no enemy can see the agent.
func (b *Behavior) Escape(a *components.Agent, env AnimalEnvironment, dt float64) error {
	if err := b.Move(a, env, dt); err != nil {
		return err
	}
	if !env.IsVisibleFromEnemies(a) {
		a.State = components.StateIdle
	}
	return nil
}

// SeekEnemies is the idle routine of soldiers and termites.
func (b *Behavior) SeekEnemies(a *components.Agent, env AnimalEnvironment, dt float64) error {
	if a.State != components.StateAttack {
		if err := b.Move(a, env, dt); err != nil {
			return err
		}
	}
	return b.Fight(a, env, dt)
}

// Forage is the idle routine of workers: pick up food when empty-handed,
// carry it home, and turn around after each.
func (b *Behavior) Forage(w *components.Agent, env WorkerEnvironment, dt float64) error {
	if err := b.Move(w, env, dt); err != nil {
		return err
	}

	if food := env.ClosestFood(w); w.FoodQuantity == 0 && food != nil {
		taken, err := food.Take(b.Rules.MaxFood)
		if err != nil {
			return err
		}
		w.FoodQuantity = taken
		w.TurnBack()
		b.rec.RecordFoodTaken(w, taken)
	}

	if w.FoodQuantity > 0 {
		dropped, err := env.DropFood(w)
		if err != nil {
			return err
		}
		if dropped {
			b.rec.RecordFoodDelivered(w, w.FoodQuantity)
			w.FoodQuantity = 0
			w.TurnBack()
		}
	}
	return nil
}

// SpreadPheromones lays evenly spaced markers along the path walked since the
// last deposit. Distances shorter than one marker spacing carry over.
func (b *Behavior) SpreadPheromones(a *components.Agent, env AntEnvironment) error {
	d := b.Torus.Distance(a.Position, a.LastPosition)
	n := int(math.Round(d * b.Rules.PheromoneDensity))
	if n <= 0 {
		return nil
	}
	step := r2.Scale(d/float64(n), geom.Normalize(b.Torus.Vector(a.LastPosition, a.Position)))
	for i := 0; i < n; i++ {
		a.LastPosition = b.Torus.Add(a.LastPosition, step)
		p, err := components.NewPheromone(a.LastPosition, b.Rules.PheromoneEnergy)
		if err != nil {
			return err
		}
		if err := env.AddPheromone(p); err != nil {
			return err
		}
	}
	return nil
}

// SpawnAnts advances the anthill's spawn timer and hatches every ant that is
// due: a worker with the anthill's worker probability, a soldier otherwise.
func (b *Behavior) SpawnAnts(h *components.Anthill, env AnthillEnvironment, dt float64) error {
	for range h.Accumulate(dt, b.Rules.SpawnDelay) {
		u, err := b.rng.Uniform(0, 1)
		if err != nil {
			return err
		}
		species := components.SpeciesSoldier
		if u <= h.WorkerProbability {
			species = components.SpeciesWorker
		}
		ant, err := b.NewAgent(species, h.Position, h.ID)
		if err != nil {
			return err
		}
		if err := env.AddAnt(ant); err != nil {
			return err
		}
	}
	return nil
}

// IsEnemy reports whether a and o fight each other. Only living agents are
// enemies; ants of different colonies fight, ants and termites always fight,
// termites never fight each other.
func IsEnemy(a, o *components.Agent) bool {
	if a.IsDead() || o.IsDead() {
		return false
	}
	switch {
	case a.IsAnt() && o.IsAnt():
		return a.Colony != o.Colony
	case a.IsAnt() || o.IsAnt():
		return true
	default:
		return false
	}
}

func agentPosition(a *components.Agent) geom.Position {
	return a.Position
}
