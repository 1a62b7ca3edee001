// Package telemetry collects windowed simulation statistics and writes them out.
package telemetry

import "github.com/pthm-cable/antworld/components"

// Collector accumulates events within time windows and produces WindowStats.
// It satisfies the behavior system's event recorder.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	workerBirths  int
	soldierBirths int
	workerDeaths  int
	soldierDeaths int
	termiteDeaths int
	hits          int
	damage        int
	kills         int
	foodTaken     float64
	foodDelivered float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordHit records a blow landed in a fight. A blow that drops the target
// to zero hit points counts as a kill.
func (c *Collector) RecordHit(_, target *components.Agent, damage int) {
	c.hits++
	c.damage += damage
	if target.HitPoints <= 0 {
		c.kills++
	}
}

// RecordFoodTaken records food picked up by a worker.
func (c *Collector) RecordFoodTaken(_ *components.Agent, q float64) {
	c.foodTaken += q
}

// RecordFoodDelivered records food stored in an anthill.
func (c *Collector) RecordFoodDelivered(_ *components.Agent, q float64) {
	c.foodDelivered += q
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(species components.Species) {
	switch species {
	case components.SpeciesWorker:
		c.workerBirths++
	case components.SpeciesSoldier:
		c.soldierBirths++
	}
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(species components.Species) {
	switch species {
	case components.SpeciesWorker:
		c.workerDeaths++
	case components.SpeciesSoldier:
		c.soldierDeaths++
	default:
		c.termiteDeaths++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Census is the world state sampled when a window is flushed.
type Census struct {
	Workers     int
	Soldiers    int
	Termites    int
	Anthills    int
	FoodSources int
	Pheromones  int

	FoodInWorld    float64
	AnthillStock   float64
	PheromoneTotal float64

	AntHitPoints     []float64
	TermiteHitPoints []float64
	Lifespans        []float64
}

// Flush produces a WindowStats from the window's events and the census, and
// resets counters for the next window.
func (c *Collector) Flush(currentTick int64, census Census) WindowStats {
	var killRate float64
	if c.hits > 0 {
		killRate = float64(c.kills) / float64(c.hits)
	}

	antHP := Summarize(census.AntHitPoints)
	termiteHP := Summarize(census.TermiteHitPoints)
	lifespan := Summarize(census.Lifespans)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Workers:     census.Workers,
		Soldiers:    census.Soldiers,
		Termites:    census.Termites,
		Anthills:    census.Anthills,
		FoodSources: census.FoodSources,
		Pheromones:  census.Pheromones,

		WorkerBirths:  c.workerBirths,
		SoldierBirths: c.soldierBirths,
		WorkerDeaths:  c.workerDeaths,
		SoldierDeaths: c.soldierDeaths,
		TermiteDeaths: c.termiteDeaths,

		Hits:     c.hits,
		Damage:   c.damage,
		Kills:    c.kills,
		KillRate: killRate,

		FoodTaken:     c.foodTaken,
		FoodDelivered: c.foodDelivered,

		FoodInWorld:    census.FoodInWorld,
		AnthillStock:   census.AnthillStock,
		PheromoneTotal: census.PheromoneTotal,

		AntHPMean:     antHP.Mean,
		AntHPStd:      antHP.Std,
		AntHPP10:      antHP.P10,
		AntHPP50:      antHP.P50,
		AntHPP90:      antHP.P90,
		TermiteHPMean: termiteHP.Mean,
		TermiteHPP50:  termiteHP.P50,

		LifespanMean: lifespan.Mean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.workerBirths = 0
	c.soldierBirths = 0
	c.workerDeaths = 0
	c.soldierDeaths = 0
	c.termiteDeaths = 0
	c.hits = 0
	c.damage = 0
	c.kills = 0
	c.foodTaken = 0
	c.foodDelivered = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
