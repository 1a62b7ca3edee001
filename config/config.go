// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World         WorldConfig         `yaml:"world"`
	Physics       PhysicsConfig       `yaml:"physics"`
	Animal        AnimalConfig        `yaml:"animal"`
	Ant           AntConfig           `yaml:"ant"`
	Worker        SpeciesConfig       `yaml:"worker"`
	Soldier       SpeciesConfig       `yaml:"soldier"`
	Termite       SpeciesConfig       `yaml:"termite"`
	Pheromone     PheromoneConfig     `yaml:"pheromone"`
	Anthill       AnthillConfig       `yaml:"anthill"`
	FoodGenerator FoodGeneratorConfig `yaml:"food_generator"`
	Rotation      RotationConfig      `yaml:"rotation"`
	Setup         SetupConfig         `yaml:"setup"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the torus dimensions in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds time stepping parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per tick
}

// AnimalConfig holds parameters shared by every agent.
type AnimalConfig struct {
	NextRotationDelay      float64 `yaml:"next_rotation_delay"`      // seconds between heading samples
	LifespanDecreaseFactor float64 `yaml:"lifespan_decrease_factor"` // lifespan lost per simulated second
	SightDistance          float64 `yaml:"sight_distance"`           // enemy visibility radius
}

// AntConfig holds parameters shared by workers and soldiers.
type AntConfig struct {
	PerceptionDistance float64 `yaml:"perception_distance"` // food and home anthill radius
	SmellDistance      float64 `yaml:"smell_distance"`      // pheromone radius
	MaxFood            float64 `yaml:"max_food"`            // food a worker can carry
	PheromoneDensity   float64 `yaml:"pheromone_density"`   // markers per world unit travelled
	PheromoneEnergy    float64 `yaml:"pheromone_energy"`    // initial quantity of a marker
}

// SpeciesConfig holds per-species constants.
type SpeciesConfig struct {
	HitPoints      int     `yaml:"hit_points"`
	Lifespan       float64 `yaml:"lifespan"`        // seconds
	Speed          float64 `yaml:"speed"`           // world units per second
	MinStrength    int     `yaml:"min_strength"`    // damage per hit
	MaxStrength    int     `yaml:"max_strength"`    // damage per hit
	AttackDuration float64 `yaml:"attack_duration"` // seconds before breaking off a fight
}

// PheromoneConfig holds trail decay parameters.
type PheromoneConfig struct {
	Threshold       float64 `yaml:"threshold"`        // below this a marker is negligible
	EvaporationRate float64 `yaml:"evaporation_rate"` // quantity lost per second
}

// AnthillConfig holds colony spawning parameters.
type AnthillConfig struct {
	SpawnDelay        float64 `yaml:"spawn_delay"`        // seconds between spawns
	WorkerProbability float64 `yaml:"worker_probability"` // default chance a spawn is a worker
}

// FoodGeneratorConfig holds food spawning parameters.
type FoodGeneratorConfig struct {
	Delay       float64 `yaml:"delay"` // seconds between new food sources
	QuantityMin float64 `yaml:"quantity_min"`
	QuantityMax float64 `yaml:"quantity_max"`
}

// RotationConfig holds the pheromone bias constants.
type RotationConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	QZero float64 `yaml:"q_zero"`
}

// SetupConfig describes the initial world.
type SetupConfig struct {
	Anthills []AnthillSetup `yaml:"anthills"`
	Termites int            `yaml:"termites"`
	Food     int            `yaml:"food"` // food sources placed before the first tick
}

// AnthillSetup places one anthill. A missing WorkerProbability uses the anthill default.
type AnthillSetup struct {
	X                 float64  `yaml:"x"`
	Y                 float64  `yaml:"y"`
	WorkerProbability *float64 `yaml:"worker_probability,omitempty"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds per stats window
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Flat map[string]float64 // dotted key -> numeric value, see Lookup
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable world.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.World.Width > 0 && c.World.Height > 0, "world dimensions must be positive, got %vx%v", c.World.Width, c.World.Height)
	check(c.Physics.DT > 0, "physics.dt must be positive, got %v", c.Physics.DT)
	check(c.Animal.NextRotationDelay > 0, "animal.next_rotation_delay must be positive, got %v", c.Animal.NextRotationDelay)
	check(c.Animal.LifespanDecreaseFactor >= 0, "animal.lifespan_decrease_factor must not be negative")
	check(c.Animal.SightDistance >= 0, "animal.sight_distance must not be negative")
	check(c.Ant.PerceptionDistance >= 0, "ant.perception_distance must not be negative")
	check(c.Ant.SmellDistance >= 0, "ant.smell_distance must not be negative")
	check(c.Ant.MaxFood >= 0, "ant.max_food must not be negative")
	check(c.Ant.PheromoneDensity >= 0, "ant.pheromone_density must not be negative")
	check(c.Ant.PheromoneEnergy >= 0, "ant.pheromone_energy must not be negative")
	species := []struct {
		name string
		cfg  SpeciesConfig
	}{{"worker", c.Worker}, {"soldier", c.Soldier}, {"termite", c.Termite}}
	for _, s := range species {
		check(s.cfg.MinStrength <= s.cfg.MaxStrength, "%s strength range [%d, %d] is inverted", s.name, s.cfg.MinStrength, s.cfg.MaxStrength)
		check(s.cfg.Speed >= 0, "%s speed must not be negative", s.name)
		check(s.cfg.AttackDuration >= 0, "%s attack_duration must not be negative", s.name)
	}
	check(c.Pheromone.EvaporationRate >= 0, "pheromone.evaporation_rate must not be negative")
	check(c.Anthill.SpawnDelay > 0, "anthill.spawn_delay must be positive, got %v", c.Anthill.SpawnDelay)
	check(c.Anthill.WorkerProbability >= 0 && c.Anthill.WorkerProbability <= 1, "anthill.worker_probability must be in [0, 1]")
	check(c.FoodGenerator.Delay > 0, "food_generator.delay must be positive, got %v", c.FoodGenerator.Delay)
	check(c.FoodGenerator.QuantityMin <= c.FoodGenerator.QuantityMax, "food_generator quantity range is inverted")
	for i, a := range c.Setup.Anthills {
		if p := a.WorkerProbability; p != nil {
			check(*p >= 0 && *p <= 1, "setup.anthills[%d].worker_probability must be in [0, 1]", i)
		}
	}
	check(c.Setup.Termites >= 0 && c.Setup.Food >= 0, "setup counts must not be negative")

	flat, err := flatten(c)
	if err != nil {
		errs = append(errs, err)
	}
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		v := flat[key]
		check(!math.IsNaN(v) && !math.IsInf(v, 0), "%s must be finite, got %v", key, v)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	flat, err := flatten(c)
	if err != nil {
		return err
	}
	c.Derived.Flat = flat
	return nil
}

// Lookup returns a numeric configuration value by dotted key, for example
// "pheromone.threshold" or "setup.anthills.0.x".
func (c *Config) Lookup(key string) (float64, bool) {
	v, ok := c.Derived.Flat[key]
	return v, ok
}

// Clone returns a deep copy. The lookup view of the copy is not refreshed
// until Refresh is called.
func (c *Config) Clone() *Config {
	out := *c
	out.Setup.Anthills = make([]AnthillSetup, len(c.Setup.Anthills))
	for i, a := range c.Setup.Anthills {
		if a.WorkerProbability != nil {
			p := *a.WorkerProbability
			a.WorkerProbability = &p
		}
		out.Setup.Anthills[i] = a
	}
	out.Derived.Flat = nil
	return &out
}

// Refresh validates the configuration and rebuilds derived values after
// fields were changed in place.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
