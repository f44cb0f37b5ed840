// Package game runs the ecosystem: one ark ECS world holding animals and plants,
// advanced one tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/systems"
	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed           int64
	Empty          bool    // start without the initial population
	LogStats       bool    // log window stats and bookmarks via slog
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string  // bookmark snapshots; empty disables
	OutputDir      string  // CSV logs and config copy; empty disables
	Metrics        *telemetry.Metrics
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	rng    *rand.Rand
	seed   int64
	bounds systems.Bounds

	world *ecs.World

	animalMapper *ecs.Map5[
		components.Position,
		components.Heading,
		components.Vitals,
		traits.Genome,
		components.Organism,
	]
	animalFilter *ecs.Filter5[
		components.Position,
		components.Heading,
		components.Vitals,
		traits.Genome,
		components.Organism,
	]
	plantMapper *ecs.Map2[components.Position, components.Flora]
	plantFilter *ecs.Filter2[components.Position, components.Flora]

	// Per-tick scratch, reused across ticks
	order  []ecs.Entity
	births []birth
	buds   []components.Position
	dead   []ecs.Entity

	// State
	tick       int32
	generation int
	paused     bool
	nextID     uint32
	history    *telemetry.History

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	metrics          *telemetry.Metrics
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
}

// NewGame creates a game from a validated copy of cfg.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, fmt.Errorf("new game: %w: nil config", config.ErrInvalid)
	}
	cfg = cfg.Clone()
	if err := cfg.Refresh(); err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	g := &Game{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		seed:          opts.Seed,
		bounds:        systems.Bounds{W: cfg.World.Width, H: cfg.World.Height},
		generation:    1,
		nextID:        1,
		history:       telemetry.NewHistory(cfg.Telemetry.HistoryCap),
		collector:     telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		metrics:       opts.Metrics,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
		statsCallback: opts.StatsCallback,
	}
	if cfg.Bookmarks.Enabled {
		g.bookmarkDetector = telemetry.NewBookmarkDetector(cfg.Bookmarks.CrashDrop, cfg.Bookmarks.StableWindows)
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("new game: %w", err)
		}
		g.outputManager = om
	}

	g.initWorld()
	if !opts.Empty {
		g.spawnInitialPopulation()
	}

	return g, nil
}

// initWorld replaces the ECS world and its mappers with empty ones.
func (g *Game) initWorld() {
	world := ecs.NewWorld()
	g.world = world
	g.animalMapper = ecs.NewMap5[
		components.Position,
		components.Heading,
		components.Vitals,
		traits.Genome,
		components.Organism,
	](world)
	g.animalFilter = ecs.NewFilter5[
		components.Position,
		components.Heading,
		components.Vitals,
		traits.Genome,
		components.Organism,
	](world)
	g.plantMapper = ecs.NewMap2[components.Position, components.Flora](world)
	g.plantFilter = ecs.NewFilter2[components.Position, components.Flora](world)
}

// Reset restores the starting state: a fresh population, generation 1, tick 0
// and an empty history. The RNG stream continues and the pause state is kept.
func (g *Game) Reset() {
	g.initWorld()
	g.tick = 0
	g.generation = 1
	g.history.Reset()
	g.collector.Reset(0)
	if g.bookmarkDetector != nil {
		g.bookmarkDetector = telemetry.NewBookmarkDetector(g.cfg.Bookmarks.CrashDrop, g.cfg.Bookmarks.StableWindows)
	}
	g.spawnInitialPopulation()

	slog.Info("reset", "animals", g.cfg.Population.InitialAnimals, "plants", g.cfg.Population.InitialPlants)
}

// SetPaused freezes or resumes the simulation.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// TogglePause flips the pause state.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// Paused reports whether Step is currently a no-op.
func (g *Game) Paused() bool {
	return g.paused
}

// Tick returns the number of ticks simulated since the last reset.
func (g *Game) Tick() int32 {
	return g.tick
}

// Generation returns the current generation counter.
func (g *Game) Generation() int {
	return g.generation
}

// Elapsed returns simulated time since the last reset.
func (g *Game) Elapsed() time.Duration {
	return time.Duration(g.tick) * time.Second / time.Duration(g.cfg.World.TicksPerSecond)
}

// Done reports whether the configured run duration has been reached.
func (g *Game) Done() bool {
	return g.cfg.Derived.MaxTicks > 0 && g.tick >= g.cfg.Derived.MaxTicks
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Config returns the game's own copy of the configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// History returns the population series recorded since the last reset.
func (g *Game) History() []telemetry.Sample {
	return slices.Clone(g.history.Samples())
}

// LastSample returns the most recent history sample.
func (g *Game) LastSample() (telemetry.Sample, bool) {
	return g.history.Last()
}

// HistoryDropped returns how many of the oldest samples the history cap discarded.
func (g *Game) HistoryDropped() int {
	return g.history.Dropped()
}

// OutputDir returns the directory run files are written to, or "" when output is off.
func (g *Game) OutputDir() string {
	return g.outputManager.Dir()
}

// Close writes the final population history and closes output files.
func (g *Game) Close() error {
	if g.outputManager == nil {
		return nil
	}
	err := g.outputManager.WriteHistory(g.history.Samples())
	if cerr := g.outputManager.Close(); err == nil {
		err = cerr
	}
	g.outputManager = nil
	return err
}
