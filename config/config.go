// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Population   PopulationConfig   `yaml:"population"`
	Genome       GenomeConfig       `yaml:"genome"`
	Animal       AnimalConfig       `yaml:"animal"`
	Feeding      FeedingConfig      `yaml:"feeding"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Plants       PlantsConfig       `yaml:"plants"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Bookmarks    BookmarksConfig    `yaml:"bookmarks"`
	Observer     ObserverConfig     `yaml:"observer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// WorldConfig holds the world rectangle and clock.
type WorldConfig struct {
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	TicksPerSecond int     `yaml:"ticks_per_second"`
	DurationSec    float64 `yaml:"duration_sec"` // run length; 0 = unlimited
}

// PopulationConfig holds initial sizes and the recovery floor.
type PopulationConfig struct {
	InitialAnimals int `yaml:"initial_animals"`
	InitialPlants  int `yaml:"initial_plants"`
	Floor          int `yaml:"floor"`         // recovery when 0 < animals < floor; 0 disables
	RecoverySize   int `yaml:"recovery_size"` // animals created by a recovery
}

// TraitConfig describes one continuous heritable trait.
type TraitConfig struct {
	Initial  Range   `yaml:"initial"`
	Mutation float64 `yaml:"mutation"` // offspring delta drawn from U(-mutation, mutation)
	Floor    float64 `yaml:"floor"`    // lower clamp after mutation
}

// GenomeConfig holds genome sampling and mutation parameters.
type GenomeConfig struct {
	Speed           TraitConfig `yaml:"speed"`
	Size            TraitConfig `yaml:"size"`
	Sense           TraitConfig `yaml:"sense"`
	Color           IntRange    `yaml:"color"`
	ColorMutation   int         `yaml:"color_mutation"`
	DietInheritance float64     `yaml:"diet_inheritance"` // probability the parent's diet carries over
}

// AnimalConfig holds per-tick animal behavior constants.
type AnimalConfig struct {
	InitialEnergy    float64  `yaml:"initial_energy"`
	MaxAge           int      `yaml:"max_age"`
	BaseMetabolism   float64  `yaml:"base_metabolism"` // per tick, scaled by size
	MoveCost         float64  `yaml:"move_cost"`       // per tick, scaled by speed*size
	SenseScale       float64  `yaml:"sense_scale"`     // detection radius = sense * scale
	SteerBlend       float64  `yaml:"steer_blend"`     // fraction of angular difference applied per tick
	HeadingJitter    float64  `yaml:"heading_jitter"`
	HeadingTimer     IntRange `yaml:"heading_timer"`
	EatRadiusBase    float64  `yaml:"eat_radius_base"`
	EatRadiusPerSize float64  `yaml:"eat_radius_per_size"`
	PreySizeRatio    float64  `yaml:"prey_size_ratio"` // prey must be smaller than size * ratio
}

// FeedingConfig holds energy gains for each diet.
type FeedingConfig struct {
	HerbivorePlantGain    float64 `yaml:"herbivore_plant_gain"`
	OmnivorePlantGain     float64 `yaml:"omnivore_plant_gain"`
	CarnivorePreyFraction float64 `yaml:"carnivore_prey_fraction"`
	OmnivorePreyFraction  float64 `yaml:"omnivore_prey_fraction"`
}

// ReproductionConfig holds breeding parameters.
type ReproductionConfig struct {
	Threshold   float64 `yaml:"threshold"` // energy strictly above this allows breeding
	Cooldown    int     `yaml:"cooldown"`  // ticks
	SpawnOffset float64 `yaml:"spawn_offset"`
}

// PlantsConfig holds plant sampling, growth and budding parameters.
type PlantsConfig struct {
	InitialEnergy Range    `yaml:"initial_energy"`
	GrowthRate    Range    `yaml:"growth_rate"`
	Size          Range    `yaml:"size"`
	Red           IntRange `yaml:"red"`
	Green         IntRange `yaml:"green"`
	Blue          IntRange `yaml:"blue"`
	BudThreshold  float64  `yaml:"bud_threshold"`
	BudReset      float64  `yaml:"bud_reset"`
	BudOffset     float64  `yaml:"bud_offset"`
	SpawnChance   float64  `yaml:"spawn_chance"` // per tick
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds of sim time
	HistoryCap  int     `yaml:"history_cap"`  // max history samples kept; 0 = unbounded
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged in perf stats
}

// BookmarksConfig holds bookmark detection parameters.
type BookmarksConfig struct {
	Enabled       bool    `yaml:"enabled"`
	CrashDrop     float64 `yaml:"crash_drop"`     // fraction below recent peak counted as a crash
	StableWindows int     `yaml:"stable_windows"` // consecutive windows with every diet present
}

// ObserverConfig holds presentation adapter parameters.
type ObserverConfig struct {
	FrameEvery int `yaml:"frame_every"` // publish a frame every N loop iterations
	SendBuffer int `yaml:"send_buffer"` // per-client frame queue
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	MaxTicks     int32         // 0 when DurationSec is 0
	TickDuration time.Duration // wall time per tick in realtime mode
	DT           float64       // seconds of sim time per tick
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Clone returns a copy of the configuration. Config holds no reference types.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks the configuration for values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
		}
	}

	check(c.World.Width > 0, "world.width must be positive, got %v", c.World.Width)
	check(c.World.Height > 0, "world.height must be positive, got %v", c.World.Height)
	check(c.World.TicksPerSecond > 0, "world.ticks_per_second must be positive, got %d", c.World.TicksPerSecond)
	check(c.World.DurationSec >= 0, "world.duration_sec must not be negative, got %v", c.World.DurationSec)

	check(c.Population.InitialAnimals > 0, "population.initial_animals must be positive, got %d", c.Population.InitialAnimals)
	check(c.Population.InitialPlants > 0, "population.initial_plants must be positive, got %d", c.Population.InitialPlants)
	check(c.Population.Floor >= 0, "population.floor must not be negative, got %d", c.Population.Floor)
	check(c.Population.RecoverySize > 0, "population.recovery_size must be positive, got %d", c.Population.RecoverySize)

	for _, tr := range []struct {
		name string
		cfg  TraitConfig
	}{
		{"speed", c.Genome.Speed},
		{"size", c.Genome.Size},
		{"sense", c.Genome.Sense},
	} {
		check(tr.cfg.Initial.Min >= 0, "genome.%s.initial must not be negative", tr.name)
		check(tr.cfg.Initial.Min <= tr.cfg.Initial.Max, "genome.%s.initial is inverted", tr.name)
		check(tr.cfg.Mutation >= 0, "genome.%s.mutation must not be negative", tr.name)
		check(tr.cfg.Floor >= 0, "genome.%s.floor must not be negative", tr.name)
	}
	check(c.Genome.Size.Initial.Min > 0 && c.Genome.Size.Floor > 0, "genome.size must stay positive")
	check(c.Genome.Color.Min >= 0 && c.Genome.Color.Max <= 255 && c.Genome.Color.Min <= c.Genome.Color.Max,
		"genome.color must be an ordered range within [0,255]")
	check(c.Genome.ColorMutation >= 0, "genome.color_mutation must not be negative")
	check(c.Genome.DietInheritance >= 0 && c.Genome.DietInheritance <= 1,
		"genome.diet_inheritance must be a probability, got %v", c.Genome.DietInheritance)

	// Basal metabolism must be positive so energy strictly decays without food.
	check(c.Animal.InitialEnergy > 0, "animal.initial_energy must be positive, got %v", c.Animal.InitialEnergy)
	check(c.Animal.MaxAge > 0, "animal.max_age must be positive")
	check(c.Animal.BaseMetabolism > 0, "animal.base_metabolism must be positive, got %v", c.Animal.BaseMetabolism)
	check(c.Animal.MoveCost >= 0, "animal.move_cost must not be negative, got %v", c.Animal.MoveCost)
	check(c.Animal.SenseScale >= 0, "animal.sense_scale must not be negative, got %v", c.Animal.SenseScale)
	check(c.Animal.SteerBlend >= 0 && c.Animal.SteerBlend <= 1, "animal.steer_blend must be within [0,1], got %v", c.Animal.SteerBlend)
	check(c.Animal.HeadingJitter >= 0, "animal.heading_jitter must not be negative")
	check(c.Animal.HeadingTimer.Min >= 0, "animal.heading_timer must not be negative")
	check(c.Animal.HeadingTimer.Min <= c.Animal.HeadingTimer.Max, "animal.heading_timer is inverted")
	check(c.Animal.EatRadiusBase >= 0, "animal.eat_radius_base must not be negative, got %v", c.Animal.EatRadiusBase)
	check(c.Animal.EatRadiusPerSize >= 0, "animal.eat_radius_per_size must not be negative, got %v", c.Animal.EatRadiusPerSize)
	check(c.Animal.PreySizeRatio >= 0, "animal.prey_size_ratio must not be negative")

	check(c.Feeding.HerbivorePlantGain >= 0, "feeding.herbivore_plant_gain must not be negative")
	check(c.Feeding.OmnivorePlantGain >= 0, "feeding.omnivore_plant_gain must not be negative")
	check(c.Feeding.CarnivorePreyFraction >= 0, "feeding.carnivore_prey_fraction must not be negative")
	check(c.Feeding.OmnivorePreyFraction >= 0, "feeding.omnivore_prey_fraction must not be negative")

	check(c.Reproduction.Threshold >= 0, "reproduction.threshold must not be negative, got %v", c.Reproduction.Threshold)
	check(c.Reproduction.Cooldown >= 0, "reproduction.cooldown must not be negative")
	check(c.Reproduction.SpawnOffset >= 0, "reproduction.spawn_offset must not be negative, got %v", c.Reproduction.SpawnOffset)

	check(c.Plants.InitialEnergy.Min >= 0, "plants.initial_energy must not be negative")
	check(c.Plants.InitialEnergy.Min <= c.Plants.InitialEnergy.Max, "plants.initial_energy is inverted")
	check(c.Plants.GrowthRate.Min >= 0, "plants.growth_rate must not be negative, got min %v", c.Plants.GrowthRate.Min)
	check(c.Plants.GrowthRate.Min <= c.Plants.GrowthRate.Max, "plants.growth_rate is inverted")
	check(c.Plants.Size.Min >= 0, "plants.size must not be negative")
	check(c.Plants.Size.Min <= c.Plants.Size.Max, "plants.size is inverted")
	for _, r := range []struct {
		name string
		rng  IntRange
	}{
		{"red", c.Plants.Red},
		{"green", c.Plants.Green},
		{"blue", c.Plants.Blue},
	} {
		check(r.rng.Min >= 0 && r.rng.Max <= 255 && r.rng.Min <= r.rng.Max, "plants.%s must be an ordered range within [0,255]", r.name)
	}
	check(c.Plants.BudThreshold > 0, "plants.bud_threshold must be positive, got %v", c.Plants.BudThreshold)
	check(c.Plants.BudReset >= 0 && c.Plants.BudReset <= c.Plants.BudThreshold,
		"plants.bud_reset must be within [0, bud_threshold], got %v", c.Plants.BudReset)
	check(c.Plants.BudOffset >= 0, "plants.bud_offset must not be negative, got %v", c.Plants.BudOffset)
	check(c.Plants.SpawnChance >= 0 && c.Plants.SpawnChance <= 1,
		"plants.spawn_chance must be a probability, got %v", c.Plants.SpawnChance)

	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window must be positive")
	check(c.Telemetry.HistoryCap >= 0, "telemetry.history_cap must not be negative")
	check(c.Telemetry.PerfWindow > 0, "telemetry.perf_window must be positive, got %d", c.Telemetry.PerfWindow)

	check(c.Bookmarks.CrashDrop >= 0 && c.Bookmarks.CrashDrop <= 1, "bookmarks.crash_drop must be within [0,1]")
	check(c.Bookmarks.StableWindows >= 0, "bookmarks.stable_windows must not be negative")

	check(c.Observer.FrameEvery >= 0, "observer.frame_every must not be negative")
	check(c.Observer.SendBuffer >= 0, "observer.send_buffer must not be negative")

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.World.TicksPerSecond)
	c.Derived.TickDuration = time.Second / time.Duration(c.World.TicksPerSecond)
	c.Derived.MaxTicks = int32(c.World.DurationSec * float64(c.World.TicksPerSecond))
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
