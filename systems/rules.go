package systems

import (
	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/config"
	"github.com/pthm-cable/antworld/rotation"
)

// Policy holds the constants that differ between species.
type Policy struct {
	HitPoints         int
	Lifespan          float64
	Speed             float64
	MinStrength       int
	MaxStrength       int
	MaxAttackDuration float64
}

// Rules holds every tunable the behavior system reads during a tick.
type Rules struct {
	Worker  Policy
	Soldier Policy
	Termite Policy

	RotationInterval       float64
	LifespanDecreaseFactor float64

	MaxFood          float64
	PheromoneDensity float64
	PheromoneEnergy  float64

	SpawnDelay float64
	AntBias    rotation.PheromoneBias
}

// NewRules extracts the behavior rules from a loaded configuration.
func NewRules(cfg *config.Config) Rules {
	policy := func(s config.SpeciesConfig) Policy {
		return Policy{
			HitPoints:         s.HitPoints,
			Lifespan:          s.Lifespan,
			Speed:             s.Speed,
			MinStrength:       s.MinStrength,
			MaxStrength:       s.MaxStrength,
			MaxAttackDuration: s.AttackDuration,
		}
	}
	return Rules{
		Worker:                 policy(cfg.Worker),
		Soldier:                policy(cfg.Soldier),
		Termite:                policy(cfg.Termite),
		RotationInterval:       cfg.Animal.NextRotationDelay,
		LifespanDecreaseFactor: cfg.Animal.LifespanDecreaseFactor,
		MaxFood:                cfg.Ant.MaxFood,
		PheromoneDensity:       cfg.Ant.PheromoneDensity,
		PheromoneEnergy:        cfg.Ant.PheromoneEnergy,
		SpawnDelay:             cfg.Anthill.SpawnDelay,
		AntBias: rotation.PheromoneBias{
			Alpha: cfg.Rotation.Alpha,
			Beta:  cfg.Rotation.Beta,
			Q0:    cfg.Rotation.QZero,
		},
	}
}

// Policy returns the constants for a species.
func (r Rules) Policy(s components.Species) Policy {
	switch s {
	case components.SpeciesWorker:
		return r.Worker
	case components.SpeciesSoldier:
		return r.Soldier
	default:
		return r.Termite
	}
}
