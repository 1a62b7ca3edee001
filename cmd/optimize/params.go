// Package main provides CMA-ES optimization for antworld trail parameters.
package main

import (
	"github.com/pthm-cable/antworld/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Dotted config key, see config.Lookup
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters: how
// ants lay, smell and weigh pheromone trails, and how colonies split their
// brood between workers and soldiers.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Trail laying
			{Name: "pheromone_density", Path: "ant.pheromone_density", Min: 0.05, Max: 1.0,
				set: func(c *config.Config, v float64) { c.Ant.PheromoneDensity = v }},
			{Name: "pheromone_energy", Path: "ant.pheromone_energy", Min: 0.1, Max: 5.0,
				set: func(c *config.Config, v float64) { c.Ant.PheromoneEnergy = v }},
			{Name: "evaporation_rate", Path: "pheromone.evaporation_rate", Min: 0.001, Max: 0.2,
				set: func(c *config.Config, v float64) { c.Pheromone.EvaporationRate = v }},
			// Trail following
			{Name: "smell_distance", Path: "ant.smell_distance", Min: 10, Max: 200,
				set: func(c *config.Config, v float64) { c.Ant.SmellDistance = v }},
			{Name: "alpha", Path: "rotation.alpha", Min: 0.5, Max: 20,
				set: func(c *config.Config, v float64) { c.Rotation.Alpha = v }},
			{Name: "beta", Path: "rotation.beta", Min: 0.5, Max: 20,
				set: func(c *config.Config, v float64) { c.Rotation.Beta = v }},
			{Name: "q_zero", Path: "rotation.q_zero", Min: 0, Max: 5,
				set: func(c *config.Config, v float64) { c.Rotation.QZero = v }},
			// Colony
			{Name: "worker_probability", Path: "anthill.worker_probability", Min: 0.1, Max: 1.0,
				set: func(c *config.Config, v float64) {
					// Per-anthill overrides would shield their colony from the tuned value.
					c.Anthill.WorkerProbability = v
					for i := range c.Setup.Anthills {
						c.Setup.Anthills[i].WorkerProbability = nil
					}
				}},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the parameter values of cfg, falling back to the
// middle of the range for keys the config does not carry.
func (pv *ParamVector) DefaultVector(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val, ok := cfg.Lookup(spec.Path)
		if !ok {
			val = (spec.Min + spec.Max) / 2
		}
		v[i] = val
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	return cfg.Refresh()
}
