package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/antworld/config"
	"github.com/pthm-cable/antworld/random"
	"github.com/pthm-cable/antworld/telemetry"
	"github.com/pthm-cable/antworld/world"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	verbose := flag.Bool("v", false, "Log births and deaths")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *logStats, *statsWindow, *outputDir, *seed, *maxTicks); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// run executes one headless simulation and releases its output files.
func run(configPath string, logStats bool, statsWindow float64, outputDir string, seed uint64, maxTicks int64) error {
	// Initialize config before anything else
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if statsWindow > 0 {
		statsWindowSec = statsWindow
	}

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if output != nil {
		defer func() {
			if err := output.Close(); err != nil {
				slog.Error("failed to close output files", "error", err)
			}
		}()
		if err := output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	w, err := world.New(cfg, random.NewSeeded(rngSeed),
		world.WithCollector(telemetry.NewCollector(statsWindowSec, cfg.Physics.DT)),
		world.WithPerfCollector(telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)),
		world.WithOutput(output),
		world.WithBookmarks(telemetry.NewBookmarkDetector(10)),
		world.WithLogStats(logStats),
	)
	if err != nil {
		return fmt.Errorf("creating world: %w", err)
	}
	if err := w.Populate(); err != nil {
		return fmt.Errorf("populating world: %w", err)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"stats_window", statsWindowSec,
		"max_ticks", maxTicks,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for maxTicks <= 0 || w.Tick() < maxTicks {
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", w.Tick())
			return nil
		}
		if err := w.Update(cfg.Physics.DT); err != nil {
			return fmt.Errorf("tick %d: %w", w.Tick(), err)
		}
	}
	slog.Info("max ticks reached", "tick", w.Tick())
	return nil
}
