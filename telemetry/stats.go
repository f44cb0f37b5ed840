// Package telemetry provides population history, windowed ecosystem stats, bookmarks,
// snapshots and metrics for the simulation.
package telemetry

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Generation      int     `csv:"generation"`

	// Population counts at window end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`
	Omnivores  int `csv:"omnivores"`
	Plants     int `csv:"plants"`

	// Events during window
	Births        int `csv:"births"`
	DeathsStarved int `csv:"deaths_starved"`
	DeathsOldAge  int `csv:"deaths_old_age"`
	DeathsEaten   int `csv:"deaths_eaten"`
	PlantsEaten   int `csv:"plants_eaten"`
	PlantsBudded  int `csv:"plants_budded"`
	PlantsSpawned int `csv:"plants_spawned"`
	Recoveries    int `csv:"recoveries"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Trait distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SizeMean  float64 `csv:"size_mean"`
	SizeStd   float64 `csv:"size_std"`
	SenseMean float64 `csv:"sense_mean"`
	SenseStd  float64 `csv:"sense_std"`

	// Lineage tracking
	ActiveLineages int `csv:"active_lineages"`
}

// Animals returns the total animal count at window end.
func (s WindowStats) Animals() int {
	return s.Herbivores + s.Carnivores + s.Omnivores
}

// Deaths returns all deaths in the window.
func (s WindowStats) Deaths() int {
	return s.DeathsStarved + s.DeathsOldAge + s.DeathsEaten
}

// ComputeEnergyStats calculates mean and empirical percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, p10, p50, p90
}

// MeanStd returns the mean and sample standard deviation. Std is 0 for fewer than two values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// TraitSample is the per-animal input for trait summaries.
type TraitSample struct {
	Speed, Size, Sense float64
}

// TraitSummary is the data behind the on-screen stats panel.
type TraitSummary struct {
	Generation  int
	ElapsedSec  float64
	DurationSec float64
	Animals     int
	Plants      int

	// Valid is false when there are no animals; the means are then undefined.
	Valid     bool
	SpeedMean float64
	SizeMean  float64
	SenseMean float64
}

// SummarizeTraits computes the average traits of the given animals.
func SummarizeTraits(samples []TraitSample) (speed, size, sense float64, ok bool) {
	if len(samples) == 0 {
		return 0, 0, 0, false
	}
	speeds := make([]float64, len(samples))
	sizes := make([]float64, len(samples))
	senses := make([]float64, len(samples))
	for i, s := range samples {
		speeds[i], sizes[i], senses[i] = s.Speed, s.Size, s.Sense
	}
	return stat.Mean(speeds, nil), stat.Mean(sizes, nil), stat.Mean(senses, nil), true
}

// Lines renders the panel text, one entry per line.
func (t TraitSummary) Lines() []string {
	avg := func(label string, v float64) string {
		if !t.Valid {
			return label + ": N/A"
		}
		return fmt.Sprintf("%s: %.2f", label, v)
	}
	return []string{
		fmt.Sprintf("Generation: %d", t.Generation),
		fmt.Sprintf("Time: %.1f/%gs", t.ElapsedSec, t.DurationSec),
		fmt.Sprintf("Animals: %d", t.Animals),
		fmt.Sprintf("Plants: %d", t.Plants),
		"",
		"Average Traits:",
		avg("Speed", t.SpeedMean),
		avg("Size", t.SizeMean),
		avg("Sense", t.SenseMean),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("generation", s.Generation),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("omnivores", s.Omnivores),
		slog.Int("plants", s.Plants),
		slog.Int("births", s.Births),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("deaths_eaten", s.DeathsEaten),
		slog.Int("plants_eaten", s.PlantsEaten),
		slog.Int("plants_budded", s.PlantsBudded),
		slog.Int("plants_spawned", s.PlantsSpawned),
		slog.Int("recoveries", s.Recoveries),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("size_std", s.SizeStd),
		slog.Float64("sense_mean", s.SenseMean),
		slog.Float64("sense_std", s.SenseStd),
		slog.Int("active_lineages", s.ActiveLineages),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
