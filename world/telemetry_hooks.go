package world

import (
	"log/slog"

	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (w *World) flushTelemetry() {
	if w.collector == nil || !w.collector.ShouldFlush(w.tick) {
		return
	}

	stats := w.collector.Flush(w.tick, w.census())
	var perfStats telemetry.PerfStats
	if w.perfCollector != nil {
		perfStats = w.perfCollector.Stats()
	}

	if w.statsCallback != nil {
		w.statsCallback(stats)
	}

	if w.logStats {
		stats.LogStats()
		if w.perfCollector != nil {
			perfStats.LogStats()
		}
	}

	if w.outputManager != nil {
		if err := w.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if w.perfCollector != nil {
			if err := w.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}

	if w.bookmarks == nil {
		return
	}
	for _, bm := range w.bookmarks.Check(stats) {
		if w.logStats {
			bm.LogBookmark()
		}
		if w.outputManager != nil {
			if err := w.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// census samples the populations and stocks of the world.
func (w *World) census() telemetry.Census {
	c := telemetry.Census{
		Anthills:    len(w.anthills),
		FoodSources: len(w.foods),
		Pheromones:  len(w.pheromones),
	}
	for _, a := range w.animals {
		switch a.Species {
		case components.SpeciesWorker:
			c.Workers++
		case components.SpeciesSoldier:
			c.Soldiers++
		default:
			c.Termites++
		}
		if a.IsAnt() {
			c.AntHitPoints = append(c.AntHitPoints, float64(a.HitPoints))
		} else {
			c.TermiteHitPoints = append(c.TermiteHitPoints, float64(a.HitPoints))
		}
		c.Lifespans = append(c.Lifespans, a.Lifespan)
	}
	for _, f := range w.foods {
		c.FoodInWorld += f.Quantity()
	}
	for _, h := range w.anthills {
		c.AnthillStock += h.FoodQuantity()
	}
	for _, p := range w.pheromones {
		c.PheromoneTotal += p.Quantity
	}
	return c
}
