package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/telemetry"
)

func TestParamVectorDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-12 {
			t.Errorf("%s: config default %v, param default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	values := pv.DefaultVector()
	values[0] = 5 // plant_spawn_chance far above its bound
	values[1] = 87.6

	pv.ApplyToConfig(cfg, values)

	if cfg.Plants.SpawnChance != pv.Specs[0].Max {
		t.Errorf("spawn chance = %v, want clamped to %v", cfg.Plants.SpawnChance, pv.Specs[0].Max)
	}
	if cfg.Population.InitialPlants != 88 {
		t.Errorf("initial plants = %d, want 88", cfg.Population.InitialPlants)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("quality of no windows = %v, want 0", q)
	}

	steady := telemetry.WindowStats{Herbivores: 10, Carnivores: 5, Omnivores: 5, EnergyP50: 100, ActiveLineages: 20}
	windows := []telemetry.WindowStats{steady, steady, steady, steady}
	q := computeQuality(windows)
	if q < 0.95 || q > 1 {
		t.Errorf("quality of steady diverse windows = %v, want close to 1", q)
	}

	sparse := []telemetry.WindowStats{{}, {Herbivores: 3, EnergyP50: 20}, {}, {}}
	if qs := computeQuality(sparse); qs >= q {
		t.Errorf("sparse quality %v not below steady %v", qs, q)
	}
}

func TestRunSimulation(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 120, []int64{1, 2}, config.Defaults())

	r, err := fe.runSimulation(pv.DefaultVector(), 1)
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if r.survivalTicks <= 0 || r.survivalTicks > 120 {
		t.Errorf("survival = %d ticks, want (0, 120]", r.survivalTicks)
	}

	if f := fe.Evaluate(pv.DefaultVector()); f >= 0 {
		t.Errorf("fitness = %v, want negative", f)
	}
}
