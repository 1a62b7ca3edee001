package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		t.Errorf("world = %vx%v, want positive", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Physics.DT <= 0 {
		t.Errorf("dt = %v, want positive", cfg.Physics.DT)
	}
	if len(cfg.Setup.Anthills) != 2 {
		t.Fatalf("got %d anthills, want 2", len(cfg.Setup.Anthills))
	}
	if cfg.Setup.Anthills[0].WorkerProbability != nil {
		t.Errorf("first anthill should inherit the default worker probability")
	}
	if p := cfg.Setup.Anthills[1].WorkerProbability; p == nil || *p != 0.6 {
		t.Errorf("second anthill worker probability = %v, want 0.6", p)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("world:\n  width: 300\npheromone:\n  threshold: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 300 {
		t.Errorf("width = %v, want 300", cfg.World.Width)
	}
	if cfg.World.Height != 700 {
		t.Errorf("height = %v, want default 700", cfg.World.Height)
	}
	if cfg.Pheromone.Threshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", cfg.Pheromone.Threshold)
	}
}

func TestLoadRejectsInfiniteSpeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inf.yaml")
	if err := os.WriteFile(path, []byte("termite:\n  speed: .inf\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "termite.speed") {
		t.Errorf("Load error = %v, want termite.speed rejected", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }, "world dimensions"},
		{"zero dt", func(c *Config) { c.Physics.DT = 0 }, "physics.dt"},
		{"inverted strength", func(c *Config) { c.Soldier.MinStrength = 20 }, "soldier strength"},
		{"spawn delay", func(c *Config) { c.Anthill.SpawnDelay = -1 }, "anthill.spawn_delay"},
		{"worker probability", func(c *Config) { c.Anthill.WorkerProbability = 1.5 }, "anthill.worker_probability"},
		{"food range", func(c *Config) { c.FoodGenerator.QuantityMin = 100 }, "food_generator quantity"},
		{"setup probability", func(c *Config) {
			p := -0.1
			c.Setup.Anthills[0].WorkerProbability = &p
		}, "setup.anthills[0]"},
		{"infinite speed", func(c *Config) { c.Termite.Speed = math.Inf(1) }, "termite.speed must be finite"},
		{"nan rate", func(c *Config) { c.Pheromone.EvaporationRate = math.NaN() }, "pheromone.evaporation_rate must be finite"},
		{"infinite setup coordinate", func(c *Config) { c.Setup.Anthills[1].X = math.Inf(-1) }, "setup.anthills.1.x must be finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key  string
		want float64
	}{
		{"pheromone.threshold", cfg.Pheromone.Threshold},
		{"world.width", cfg.World.Width},
		{"soldier.hit_points", float64(cfg.Soldier.HitPoints)},
		{"rotation.q_zero", cfg.Rotation.QZero},
		{"setup.anthills.0.x", cfg.Setup.Anthills[0].X},
		{"setup.anthills.1.worker_probability", 0.6},
	}
	for _, tt := range tests {
		got, ok := cfg.Lookup(tt.key)
		if !ok {
			t.Errorf("Lookup(%q) missing", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
	if _, ok := cfg.Lookup("setup.anthills.0.worker_probability"); ok {
		t.Error("unset worker probability should not appear in lookup")
	}
	if _, ok := cfg.Lookup("no.such.key"); ok {
		t.Error("unexpected value for unknown key")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c := cfg.Clone()
	c.Pheromone.Threshold = 0.9
	*c.Setup.Anthills[1].WorkerProbability = 0.1
	c.Setup.Anthills[0].X = 1

	if cfg.Pheromone.Threshold == 0.9 || *cfg.Setup.Anthills[1].WorkerProbability != 0.6 || cfg.Setup.Anthills[0].X == 1 {
		t.Error("clone shares state with the original")
	}
	if _, ok := c.Lookup("pheromone.threshold"); ok {
		t.Error("clone lookup should be empty before Refresh")
	}
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if v, _ := c.Lookup("pheromone.threshold"); v != 0.9 {
		t.Errorf("refreshed threshold = %v, want 0.9", v)
	}

	c.Physics.DT = -1
	if err := c.Refresh(); err == nil {
		t.Error("Refresh accepted an invalid config")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Ant.MaxFood = 12
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Ant.MaxFood != 12 {
		t.Errorf("max_food = %v after reload, want 12", back.Ant.MaxFood)
	}
}
