package world

import (
	"github.com/pthm-cable/antworld/components"
	"github.com/pthm-cable/antworld/config"
	"github.com/pthm-cable/antworld/geom"
	"github.com/pthm-cable/antworld/random"
	"github.com/pthm-cable/antworld/systems"
)

// FoodGenerator drops new food sources at a steady pace. Sources cluster
// around the middle of the world: each coordinate is normally distributed
// around the center with a standard deviation of a quarter of the dimension.
type FoodGenerator struct {
	cfg   config.FoodGeneratorConfig
	torus geom.Torus
	rng   random.Source

	elapsed float64 // seconds accumulated towards the next source
}

// NewFoodGenerator creates a generator for the given world.
func NewFoodGenerator(cfg config.FoodGeneratorConfig, torus geom.Torus, rng random.Source) *FoodGenerator {
	return &FoodGenerator{cfg: cfg, torus: torus, rng: rng}
}

// Update emits one food source per elapsed delay.
func (g *FoodGenerator) Update(env systems.FoodGeneratorEnvironment, dt float64) error {
	if g.cfg.Delay <= 0 {
		return nil
	}
	g.elapsed += dt
	for g.elapsed >= g.cfg.Delay {
		g.elapsed -= g.cfg.Delay
		if err := g.Emit(env); err != nil {
			return err
		}
	}
	return nil
}

// Emit places a single food source.
func (g *FoodGenerator) Emit(env systems.FoodGeneratorEnvironment) error {
	w, h := g.torus.Width, g.torus.Height
	x, err := g.rng.Normal(w/2, w*w/16)
	if err != nil {
		return err
	}
	y, err := g.rng.Normal(h/2, h*h/16)
	if err != nil {
		return err
	}
	q, err := g.rng.Uniform(g.cfg.QuantityMin, g.cfg.QuantityMax)
	if err != nil {
		return err
	}
	return env.AddFood(components.NewFood(g.torus.Wrap(x, y), q))
}
