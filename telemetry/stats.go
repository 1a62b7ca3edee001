package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Workers     int `csv:"workers"`
	Soldiers    int `csv:"soldiers"`
	Termites    int `csv:"termites"`
	Anthills    int `csv:"anthills"`
	FoodSources int `csv:"food_sources"`
	Pheromones  int `csv:"pheromones"`

	// Events during window
	WorkerBirths  int `csv:"worker_births"`
	SoldierBirths int `csv:"soldier_births"`
	WorkerDeaths  int `csv:"worker_deaths"`
	SoldierDeaths int `csv:"soldier_deaths"`
	TermiteDeaths int `csv:"termite_deaths"`

	// Fighting
	Hits     int     `csv:"hits"`
	Damage   int     `csv:"damage"`
	Kills    int     `csv:"kills"`
	KillRate float64 `csv:"kill_rate"`

	// Foraging
	FoodTaken     float64 `csv:"food_taken"`
	FoodDelivered float64 `csv:"food_delivered"`

	// Stocks sampled at window end
	FoodInWorld    float64 `csv:"food_in_world"`
	AnthillStock   float64 `csv:"anthill_stock"`
	PheromoneTotal float64 `csv:"pheromone_total"`

	// Hit point distributions sampled at window end
	AntHPMean     float64 `csv:"ant_hp_mean"`
	AntHPStd      float64 `csv:"ant_hp_std"`
	AntHPP10      float64 `csv:"ant_hp_p10"`
	AntHPP50      float64 `csv:"ant_hp_p50"`
	AntHPP90      float64 `csv:"ant_hp_p90"`
	TermiteHPMean float64 `csv:"termite_hp_mean"`
	TermiteHPP50  float64 `csv:"termite_hp_p50"`

	LifespanMean float64 `csv:"lifespan_mean"`
}

// Ants returns the number of living ants of every colony.
func (s WindowStats) Ants() int {
	return s.Workers + s.Soldiers
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary is the distribution of one sampled quantity.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Summarize calculates the population mean, standard deviation and
// percentiles of values. An empty slice summarizes to zeros.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("workers", s.Workers),
		slog.Int("soldiers", s.Soldiers),
		slog.Int("termites", s.Termites),
		slog.Int("anthills", s.Anthills),
		slog.Int("food_sources", s.FoodSources),
		slog.Int("pheromones", s.Pheromones),
		slog.Int("worker_births", s.WorkerBirths),
		slog.Int("soldier_births", s.SoldierBirths),
		slog.Int("worker_deaths", s.WorkerDeaths),
		slog.Int("soldier_deaths", s.SoldierDeaths),
		slog.Int("termite_deaths", s.TermiteDeaths),
		slog.Int("hits", s.Hits),
		slog.Int("damage", s.Damage),
		slog.Int("kills", s.Kills),
		slog.Float64("kill_rate", s.KillRate),
		slog.Float64("food_taken", s.FoodTaken),
		slog.Float64("food_delivered", s.FoodDelivered),
		slog.Float64("food_in_world", s.FoodInWorld),
		slog.Float64("anthill_stock", s.AnthillStock),
		slog.Float64("pheromone_total", s.PheromoneTotal),
		slog.Float64("ant_hp_mean", s.AntHPMean),
		slog.Float64("ant_hp_std", s.AntHPStd),
		slog.Float64("ant_hp_p10", s.AntHPP10),
		slog.Float64("ant_hp_p50", s.AntHPP50),
		slog.Float64("ant_hp_p90", s.AntHPP90),
		slog.Float64("termite_hp_mean", s.TermiteHPMean),
		slog.Float64("termite_hp_p50", s.TermiteHPP50),
		slog.Float64("lifespan_mean", s.LifespanMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"workers", s.Workers,
		"soldiers", s.Soldiers,
		"termites", s.Termites,
		"food_sources", s.FoodSources,
		"pheromones", s.Pheromones,
		"births", s.WorkerBirths+s.SoldierBirths,
		"deaths", s.WorkerDeaths+s.SoldierDeaths+s.TermiteDeaths,
		"hits", s.Hits,
		"kills", s.Kills,
		"food_delivered", s.FoodDelivered,
		"anthill_stock", s.AnthillStock,
		"ant_hp_mean", s.AntHPMean,
		"termite_hp_mean", s.TermiteHPMean,
	)
}
