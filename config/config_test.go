package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.Width != 800 || cfg.World.Height != 600 {
		t.Errorf("world = %vx%v, want 800x600", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Population.InitialAnimals != 20 || cfg.Population.InitialPlants != 50 {
		t.Errorf("initial population = %d/%d, want 20/50", cfg.Population.InitialAnimals, cfg.Population.InitialPlants)
	}
	if cfg.Reproduction.Threshold != 150 || cfg.Reproduction.Cooldown != 100 {
		t.Errorf("reproduction = %v/%d, want 150/100", cfg.Reproduction.Threshold, cfg.Reproduction.Cooldown)
	}
	if cfg.Derived.MaxTicks != 600 {
		t.Errorf("MaxTicks = %d, want 600", cfg.Derived.MaxTicks)
	}
	if cfg.Derived.TickDuration != time.Second/60 {
		t.Errorf("TickDuration = %v, want %v", cfg.Derived.TickDuration, time.Second/60)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("world:\n  width: 400\nplants:\n  spawn_chance: 0\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 400 {
		t.Errorf("width = %v, want 400", cfg.World.Width)
	}
	if cfg.World.Height != 600 {
		t.Errorf("height = %v, want default 600", cfg.World.Height)
	}
	if cfg.Plants.SpawnChance != 0 {
		t.Errorf("spawn_chance = %v, want 0", cfg.Plants.SpawnChance)
	}
	if cfg.Plants.BudThreshold != 100 {
		t.Errorf("bud_threshold = %v, want default 100", cfg.Plants.BudThreshold)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.World.Width = 0 }},
		{"negative height", func(c *Config) { c.World.Height = -1 }},
		{"zero tick rate", func(c *Config) { c.World.TicksPerSecond = 0 }},
		{"zero animals", func(c *Config) { c.Population.InitialAnimals = 0 }},
		{"zero plants", func(c *Config) { c.Population.InitialPlants = 0 }},
		{"inverted speed range", func(c *Config) { c.Genome.Speed.Initial = Range{Min: 3, Max: 1} }},
		{"color out of byte range", func(c *Config) { c.Genome.Color.Max = 300 }},
		{"spawn chance above one", func(c *Config) { c.Plants.SpawnChance = 1.5 }},
		{"negative history cap", func(c *Config) { c.Telemetry.HistoryCap = -1 }},
		{"negative base metabolism", func(c *Config) { c.Animal.BaseMetabolism = -1 }},
		{"zero base metabolism", func(c *Config) { c.Animal.BaseMetabolism = 0 }},
		{"negative move cost", func(c *Config) { c.Animal.MoveCost = -1 }},
		{"negative sense scale", func(c *Config) { c.Animal.SenseScale = -20 }},
		{"negative eat radius base", func(c *Config) { c.Animal.EatRadiusBase = -10 }},
		{"negative eat radius per size", func(c *Config) { c.Animal.EatRadiusPerSize = -5 }},
		{"negative growth rate", func(c *Config) { c.Plants.GrowthRate = Range{Min: -5, Max: -1} }},
		{"negative repro threshold", func(c *Config) { c.Reproduction.Threshold = -1 }},
		{"negative bud offset", func(c *Config) { c.Plants.BudOffset = -30 }},
		{"negative spawn offset", func(c *Config) { c.Reproduction.SpawnOffset = -20 }},
		{"zero perf window", func(c *Config) { c.Telemetry.PerfWindow = 0 }},
		{"bud reset above threshold", func(c *Config) { c.Plants.BudReset = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}

	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateErrorOrderIsStable(t *testing.T) {
	cfg := Defaults()
	cfg.Genome.Speed.Mutation = -1
	cfg.Genome.Size.Mutation = -1
	cfg.Genome.Sense.Mutation = -1
	cfg.Plants.Red.Max = 300
	cfg.Plants.Green.Max = 300
	cfg.Plants.Blue.Max = 300

	want := cfg.Validate().Error()
	for i := 0; i < 20; i++ {
		if got := cfg.Validate().Error(); got != want {
			t.Fatalf("run %d error text changed:\n%s\nwant:\n%s", i, got, want)
		}
	}
	speed := strings.Index(want, "genome.speed.mutation")
	sense := strings.Index(want, "genome.sense.mutation")
	red := strings.Index(want, "plants.red")
	blue := strings.Index(want, "plants.blue")
	if speed < 0 || sense < speed || red < sense || blue < red {
		t.Errorf("errors out of field order:\n%s", want)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.World.Width = 1024
	path := filepath.Join(t.TempDir(), "out.yaml")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.World.Width != 1024 {
		t.Errorf("width = %v, want 1024", loaded.World.Width)
	}
}
