package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/antworld/config"
	"github.com/pthm-cable/antworld/random"
	"github.com/pthm-cable/antworld/telemetry"
	"github.com/pthm-cable/antworld/world"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []uint64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the stats windows of the best evaluated seed.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A window ending past warmup with no ant left ends the run.
const warmupSec = 30.0

// runResult holds the results from a single simulation run.
type runResult struct {
	ticks       int64                   // ticks simulated before collapse or maxTicks
	windowStats []telemetry.WindowStats // collected via the stats callback each window
}

// delivered returns the food carried home over the whole run.
func (r *runResult) delivered() float64 {
	var total float64
	for _, w := range r.windowStats {
		total += w.FoodDelivered
	}
	return total
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated food delivered home, so richer harvests score lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				// A failed run delivers nothing.
				slog.Error("evaluation failed", "seed", s, "error", err)
				return
			}
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result, quality),
				quality: quality,
				windows: result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedWindows []telemetry.WindowStats
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until every colony is empty past warmup or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) (*runResult, error) {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return nil, err
	}

	result := &runResult{}
	dt := cfg.Physics.DT
	warmupTicks := int64(warmupSec / dt)
	collapsed := false

	w, err := world.New(cfg, random.NewSeeded(seed),
		world.WithCollector(telemetry.NewCollector(fe.statsWindow, dt)),
		world.WithStatsCallback(func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
			if stats.WindowEndTick >= warmupTicks && stats.Ants() == 0 {
				collapsed = true
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Populate(); err != nil {
		return nil, err
	}

	for w.Tick() < fe.maxTicks && !collapsed {
		if err := w.Update(dt); err != nil {
			return nil, err
		}
	}
	result.ticks = w.Tick()
	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(delivered × (1.0 + 0.2 × quality))
// Harvest dominates; quality adds up to 20% bonus to differentiate
// configs with similar harvests.
func computeFitness(r *runResult, quality float64) float64 {
	return -(r.delivered() * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.5
	qualityWeightDelivery  = 0.5

	qualityWarmupWindows = 3 // skip first N windows (warmup)
)

// computeQuality computes colony quality in [0, 1] from window stats: a
// steady ant population and food that makes it home rather than dying
// with its carrier.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	ants := make([]float64, 0, len(valid))
	var taken, delivered float64
	for _, w := range valid {
		ants = append(ants, float64(w.Ants()))
		taken += w.FoodTaken
		delivered += w.FoodDelivered
	}

	stabilityScore := 0.0
	if len(ants) >= 2 {
		c := cv(ants)
		stabilityScore = math.Exp(-c * c)
	}

	deliveryScore := 0.0
	if taken > 0 {
		deliveryScore = delivered / taken
	}

	return clamp01(qualityWeightStability*stabilityScore + qualityWeightDelivery*deliveryScore)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	s := telemetry.Summarize(values)
	if s.Mean == 0 {
		return 0
	}
	return s.Std / s.Mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
