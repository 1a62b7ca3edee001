// Package components defines the entities living in the simulated world.
package components

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/rotation"
)

// ErrInvalidArgument is returned when an entity is built or mutated with impossible values.
var ErrInvalidArgument = errors.New("components: invalid argument")

// Species tags the fixed set of agent kinds.
type Species uint8

const (
	SpeciesWorker Species = iota
	SpeciesSoldier
	SpeciesTermite
)

// IsAnt reports whether the species belongs to an ant colony.
func (s Species) IsAnt() bool {
	return s == SpeciesWorker || s == SpeciesSoldier
}

func (s Species) String() string {
	switch s {
	case SpeciesWorker:
		return "worker"
	case SpeciesSoldier:
		return "soldier"
	case SpeciesTermite:
		return "termite"
	default:
		return fmt.Sprintf("species(%d)", uint8(s))
	}
}

// State is the behavior state of an agent.
type State uint8

const (
	StateIdle State = iota
	StateEscaping
	StateAttack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEscaping:
		return "escaping"
	case StateAttack:
		return "attack"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ColonyID identifies an anthill and the ants it spawned.
type ColonyID uint64

// Agent is any animal in the world: worker or soldier ants and termites.
// Ant-only fields are zero for termites.
type Agent struct {
	ID       uint64
	Species  Species
	Position geom.Position
	Heading  float64 // radians in [0, 2*Pi)

	HitPoints int
	Lifespan  float64 // seconds left to live
	State     State

	AttackDuration float64 // seconds spent fighting the current fight
	RotationDelay  float64 // seconds accumulated towards the next heading sample

	// Ant state
	Colony        ColonyID
	RotationModel rotation.Model
	LastPosition  geom.Position // trail end; pheromone is laid from here to Position

	// Worker state
	FoodQuantity float64
}

// IsDead reports whether the agent ran out of hit points or time.
func (a *Agent) IsDead() bool {
	return a.HitPoints <= 0 || a.Lifespan <= 0
}

// IsAnt reports whether the agent belongs to a colony.
func (a *Agent) IsAnt() bool {
	return a.Species.IsAnt()
}

// TurnBack reverses the agent's heading.
func (a *Agent) TurnBack() {
	a.Heading = geom.TurnBack(a.Heading)
}

func (a *Agent) String() string {
	s := fmt.Sprintf("%s#%d at %v heading %.2f hp %d lifespan %.1f state %s",
		a.Species, a.ID, a.Position, a.Heading, a.HitPoints, a.Lifespan, a.State)
	if a.IsAnt() {
		s += fmt.Sprintf(" colony %d", a.Colony)
	}
	if a.Species == SpeciesWorker {
		s += fmt.Sprintf(" food %.2f", a.FoodQuantity)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (a *Agent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Uint64("id", a.ID),
		slog.String("species", a.Species.String()),
		slog.Float64("x", a.Position.X),
		slog.Float64("y", a.Position.Y),
		slog.Int("hp", a.HitPoints),
		slog.Float64("lifespan", a.Lifespan),
		slog.String("state", a.State.String()),
	}
	if a.IsAnt() {
		attrs = append(attrs, slog.Uint64("colony", uint64(a.Colony)))
	}
	return slog.GroupValue(attrs...)
}
