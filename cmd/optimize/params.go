package main

import (
	"github.com/pthm-cable/survival/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Plants
			{
				Name: "plant_spawn_chance", Path: "plants.spawn_chance", Min: 0.005, Max: 0.1, Default: 0.02,
				get: func(c *config.Config) float64 { return c.Plants.SpawnChance },
				set: func(c *config.Config, v float64) { c.Plants.SpawnChance = v },
			},
			{
				Name: "initial_plants", Path: "population.initial_plants", Min: 20, Max: 200, Default: 50,
				get: func(c *config.Config) float64 { return float64(c.Population.InitialPlants) },
				set: func(c *config.Config, v float64) { c.Population.InitialPlants = int(v + 0.5) },
			},
			// Energy
			{
				Name: "base_metabolism", Path: "animal.base_metabolism", Min: 0.03, Max: 0.3, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Animal.BaseMetabolism },
				set: func(c *config.Config, v float64) { c.Animal.BaseMetabolism = v },
			},
			{
				Name: "herbivore_plant_gain", Path: "feeding.herbivore_plant_gain", Min: 15, Max: 60, Default: 30,
				get: func(c *config.Config) float64 { return c.Feeding.HerbivorePlantGain },
				set: func(c *config.Config, v float64) { c.Feeding.HerbivorePlantGain = v },
			},
			{
				Name: "carnivore_prey_fraction", Path: "feeding.carnivore_prey_fraction", Min: 0.3, Max: 1.0, Default: 0.7,
				get: func(c *config.Config) float64 { return c.Feeding.CarnivorePreyFraction },
				set: func(c *config.Config, v float64) { c.Feeding.CarnivorePreyFraction = v },
			},
			// Reproduction
			{
				Name: "repro_threshold", Path: "reproduction.threshold", Min: 110, Max: 250, Default: 150,
				get: func(c *config.Config) float64 { return c.Reproduction.Threshold },
				set: func(c *config.Config, v float64) { c.Reproduction.Threshold = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
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

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
