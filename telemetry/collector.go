package telemetry

import "github.com/pthm-cable/survival/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births        int
	deathsStarved int
	deathsOldAge  int
	deathsEaten   int
	plantsEaten   int
	plantsBudded  int
	plantsSpawned int
	recoveries    int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec/dt + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records an offspring added to the world.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records an animal removed in cleanup.
func (c *Collector) RecordDeath(cause components.DeathCause) {
	switch cause {
	case components.CauseStarved:
		c.deathsStarved++
	case components.CauseOldAge:
		c.deathsOldAge++
	case components.CauseEaten:
		c.deathsEaten++
	}
}

// RecordPlantEaten records a plant consumed by an animal.
func (c *Collector) RecordPlantEaten() {
	c.plantsEaten++
}

// RecordBud records a plant created by budding.
func (c *Collector) RecordBud() {
	c.plantsBudded++
}

// RecordPlantSpawn records a plant created by random spawning.
func (c *Collector) RecordPlantSpawn() {
	c.plantsSpawned++
}

// RecordRecovery records a population floor recovery.
func (c *Collector) RecordRecovery() {
	c.recoveries++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// PopulationSample is the world state the caller samples at window end.
type PopulationSample struct {
	Generation     int
	Herbivores     int
	Carnivores     int
	Omnivores      int
	Plants         int
	Energies       []float64
	Traits         []TraitSample
	ActiveLineages int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop PopulationSample) WindowStats {
	energyMean, p10, p50, p90 := ComputeEnergyStats(pop.Energies)

	speeds := make([]float64, len(pop.Traits))
	sizes := make([]float64, len(pop.Traits))
	senses := make([]float64, len(pop.Traits))
	for i, tr := range pop.Traits {
		speeds[i], sizes[i], senses[i] = tr.Speed, tr.Size, tr.Sense
	}
	speedMean, speedStd := MeanStd(speeds)
	sizeMean, sizeStd := MeanStd(sizes)
	senseMean, senseStd := MeanStd(senses)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Generation:      pop.Generation,

		Herbivores: pop.Herbivores,
		Carnivores: pop.Carnivores,
		Omnivores:  pop.Omnivores,
		Plants:     pop.Plants,

		Births:        c.births,
		DeathsStarved: c.deathsStarved,
		DeathsOldAge:  c.deathsOldAge,
		DeathsEaten:   c.deathsEaten,
		PlantsEaten:   c.plantsEaten,
		PlantsBudded:  c.plantsBudded,
		PlantsSpawned: c.plantsSpawned,
		Recoveries:    c.recoveries,

		EnergyMean: energyMean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SizeMean:  sizeMean,
		SizeStd:   sizeStd,
		SenseMean: senseMean,
		SenseStd:  senseStd,

		ActiveLineages: pop.ActiveLineages,
	}

	c.Reset(currentTick)

	return stats
}

// Reset zeroes the counters and starts a new window at tick.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.births = 0
	c.deathsStarved = 0
	c.deathsOldAge = 0
	c.deathsEaten = 0
	c.plantsEaten = 0
	c.plantsBudded = 0
	c.plantsSpawned = 0
	c.recoveries = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
