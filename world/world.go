// Package world owns every entity of the simulation and advances it tick by tick.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/config"
	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/random"
	"github.com/pthm-cable/antworld/systems"
	"github.com/pthm-cable/antworld/telemetry"
)

// ErrInvalidArgument is returned when the world is fed impossible entities or time steps.
var ErrInvalidArgument = errors.New("world: invalid argument")

// World holds the complete simulation state.
type World struct {
	cfg      *config.Config
	torus    geom.Torus
	rng      random.Source
	behavior *systems.Behavior
	foodGen  *FoodGenerator

	anthills   []*components.Anthill
	animals    []*components.Agent
	foods      []*components.Food
	pheromones []*components.Pheromone

	// State
	tick         int64
	nextAgentID  uint64
	nextColonyID components.ColonyID

	// Telemetry, all optional
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	statsCallback func(telemetry.WindowStats)
	logStats      bool
}

// Option configures a World.
type Option func(*World)

// WithCollector enables windowed stats. The collector also receives fight
// and foraging events.
func WithCollector(c *telemetry.Collector) Option {
	return func(w *World) {
		w.collector = c
		if c != nil {
			w.behavior.SetRecorder(c)
		}
	}
}

// WithPerfCollector enables per-phase timing.
func WithPerfCollector(p *telemetry.PerfCollector) Option {
	return func(w *World) { w.perfCollector = p }
}

// WithOutput writes flushed windows to CSV.
func WithOutput(om *telemetry.OutputManager) Option {
	return func(w *World) { w.outputManager = om }
}

// WithBookmarks checks each flushed window for noteworthy events.
func WithBookmarks(bd *telemetry.BookmarkDetector) Option {
	return func(w *World) { w.bookmarks = bd }
}

// WithStatsCallback is called with every flushed window.
func WithStatsCallback(fn func(telemetry.WindowStats)) Option {
	return func(w *World) { w.statsCallback = fn }
}

// WithLogStats logs every flushed window.
func WithLogStats(enabled bool) Option {
	return func(w *World) { w.logStats = enabled }
}

// New creates an empty world. All randomness is drawn from src.
func New(cfg *config.Config, src random.Source, opts ...Option) (*World, error) {
	if cfg == nil || src == nil {
		return nil, fmt.Errorf("%w: world needs a config and a random source", ErrInvalidArgument)
	}
	torus, err := geom.NewTorus(cfg.World.Width, cfg.World.Height)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	w := &World{
		cfg:      cfg,
		torus:    torus,
		rng:      src,
		behavior: systems.NewBehavior(systems.NewRules(cfg), torus, src),
		foodGen:  NewFoodGenerator(cfg.FoodGenerator, torus, src),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Populate builds the initial world described by the setup section of the
// configuration: anthills, termites scattered uniformly, and food sources
// placed like the food generator places them.
func (w *World) Populate() error {
	setup := w.cfg.Setup
	for _, s := range setup.Anthills {
		prob := w.cfg.Anthill.WorkerProbability
		if s.WorkerProbability != nil {
			prob = *s.WorkerProbability
		}
		if _, err := w.AddAnthill(geom.Position{X: s.X, Y: s.Y}, prob); err != nil {
			return err
		}
	}
	for range setup.Termites {
		x, err := w.rng.Uniform(0, w.torus.Width)
		if err != nil {
			return err
		}
		y, err := w.rng.Uniform(0, w.torus.Height)
		if err != nil {
			return err
		}
		if _, err := w.Spawn(components.SpeciesTermite, w.torus.Wrap(x, y), 0); err != nil {
			return err
		}
	}
	for range setup.Food {
		if err := w.foodGen.Emit(w); err != nil {
			return err
		}
	}

	slog.Info("world_populated",
		"width", w.torus.Width,
		"height", w.torus.Height,
		"anthills", len(w.anthills),
		"termites", setup.Termites,
		"food", len(w.foods),
	)
	return nil
}

// AddAnthill founds a colony at pos with a fresh colony id.
func (w *World) AddAnthill(pos geom.Position, workerProbability float64) (*components.Anthill, error) {
	w.nextColonyID++
	h, err := components.NewAnthill(w.nextColonyID, w.torus.Wrap(pos.X, pos.Y), workerProbability)
	if err != nil {
		w.nextColonyID--
		return nil, err
	}
	w.anthills = append(w.anthills, h)
	return h, nil
}

// Spawn creates an agent of the given species at pos and adds it to the
// world. colony is ignored for termites.
func (w *World) Spawn(species components.Species, pos geom.Position, colony components.ColonyID) (*components.Agent, error) {
	a, err := w.behavior.NewAgent(species, w.torus.Wrap(pos.X, pos.Y), colony)
	if err != nil {
		return nil, err
	}
	if err := w.AddAnimal(a); err != nil {
		return nil, err
	}
	return a, nil
}

// AddAnimal appends an agent and gives it the next id.
func (w *World) AddAnimal(a *components.Agent) error {
	if a == nil {
		return fmt.Errorf("%w: nil animal", ErrInvalidArgument)
	}
	w.nextAgentID++
	a.ID = w.nextAgentID
	w.animals = append(w.animals, a)
	return nil
}

// AddAnt implements systems.AnthillEnvironment.
func (w *World) AddAnt(a *components.Agent) error {
	if a == nil || !a.IsAnt() {
		return fmt.Errorf("%w: anthills only hatch ants, got %v", ErrInvalidArgument, a)
	}
	if err := w.AddAnimal(a); err != nil {
		return err
	}
	if w.collector != nil {
		w.collector.RecordBirth(a.Species)
	}
	slog.Debug("ant_spawned", "tick", w.tick, "ant", a)
	return nil
}

// AddFood implements systems.FoodGeneratorEnvironment.
func (w *World) AddFood(f *components.Food) error {
	if f == nil {
		return fmt.Errorf("%w: nil food", ErrInvalidArgument)
	}
	w.foods = append(w.foods, f)
	return nil
}

// AddPheromone implements systems.AntEnvironment.
func (w *World) AddPheromone(p *components.Pheromone) error {
	if p == nil {
		return fmt.Errorf("%w: nil pheromone", ErrInvalidArgument)
	}
	w.pheromones = append(w.pheromones, p)
	return nil
}

// Update advances the world by dt seconds. Phases run in a fixed order:
// food generation, pheromone decay, anthill spawns, agents, food cleanup.
// Ants hatched during a tick are first updated on the next one.
func (w *World) Update(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: time step %v", ErrInvalidArgument, dt)
	}
	if w.perfCollector != nil {
		w.perfCollector.StartTick()
	}

	w.startPhase(telemetry.PhaseFoodGenerator)
	if err := w.foodGen.Update(w, dt); err != nil {
		return fmt.Errorf("food generator: %w", err)
	}

	w.startPhase(telemetry.PhasePheromones)
	w.updatePheromones(dt)

	w.startPhase(telemetry.PhaseAnthills)
	present := len(w.animals)
	for _, h := range w.anthills {
		if err := w.behavior.SpawnAnts(h, w, dt); err != nil {
			return fmt.Errorf("updating %v: %w", h, err)
		}
	}

	w.startPhase(telemetry.PhaseAgents)
	if err := w.updateAnimals(dt, present); err != nil {
		return err
	}

	w.startPhase(telemetry.PhaseFood)
	w.removeEmptyFood()

	w.tick++

	w.startPhase(telemetry.PhaseTelemetry)
	w.flushTelemetry()

	if w.perfCollector != nil {
		w.perfCollector.EndTick()
	}
	return nil
}

func (w *World) startPhase(phase telemetry.Phase) {
	if w.perfCollector != nil {
		w.perfCollector.StartPhase(phase)
	}
}

// updatePheromones drops the markers that were already negligible and
// evaporates the rest.
func (w *World) updatePheromones(dt float64) {
	threshold := w.cfg.Pheromone.Threshold
	rate := w.cfg.Pheromone.EvaporationRate

	kept := w.pheromones[:0]
	for _, p := range w.pheromones {
		if p.IsNegligible(threshold) {
			continue
		}
		p.Evaporate(dt, rate, threshold)
		kept = append(kept, p)
	}
	clear(w.pheromones[len(kept):])
	w.pheromones = kept
}

// updateAnimals updates the first n agents, then removes every dead agent
// keeping the order of the survivors.
func (w *World) updateAnimals(dt float64, n int) error {
	for _, a := range w.animals[:n] {
		if err := w.behavior.Update(a, w, dt); err != nil {
			return fmt.Errorf("updating %s#%d: %w", a.Species, a.ID, err)
		}
	}

	alive := w.animals[:0]
	for _, a := range w.animals {
		if !a.IsDead() {
			alive = append(alive, a)
			continue
		}
		if w.collector != nil {
			w.collector.RecordDeath(a.Species)
		}
		slog.Debug("agent_died", "tick", w.tick, "agent", a)
	}
	clear(w.animals[len(alive):])
	w.animals = alive
	return nil
}

func (w *World) removeEmptyFood() {
	kept := w.foods[:0]
	for _, f := range w.foods {
		if f.Quantity() > 0 {
			kept = append(kept, f)
		}
	}
	clear(w.foods[len(kept):])
	w.foods = kept
}

// Tick returns the number of completed updates.
func (w *World) Tick() int64 {
	return w.tick
}

// Torus returns the world geometry.
func (w *World) Torus() geom.Torus {
	return w.torus
}

// Behavior returns the behavior system driving the agents.
func (w *World) Behavior() *systems.Behavior {
	return w.behavior
}
