package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/game"
	"github.com/pthm-cable/survival/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before the first recovery or extinction (maxTicks if neither)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better), averaged
// over all seeds. Seeds run concurrently; each owns its own Game.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fe.runSimulation(x, seed)
			if err != nil {
				// Rejected parameters score as an immediate collapse.
				return
			}
			fitness[i] = computeFitness(result)
			quality[i] = computeQuality(result.windowStats)
		}()
	}
	wg.Wait()

	avg := stat.Mean(fitness, nil)

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avg)
	fe.lastQuality = stat.Mean(quality, nil)
	fe.mu.Unlock()

	return avg
}

// runSimulation executes a single headless run until the population first
// needs a recovery, dies out, or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.World.DurationSec = 0

	result := &runResult{survivalTicks: fe.maxTicks}

	g, err := game.NewGame(cfg, game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer g.Close()

	for g.Tick() < fe.maxTicks {
		g.Step()

		last, _ := g.LastSample()
		if g.Generation() > 1 || last.Animals() == 0 {
			result.survivalTicks = g.Tick()
			break
		}
	}

	return result, nil
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality separates configs with similar survival.
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDiversity = 0.35
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.20
	qualityWeightLineages  = 0.20

	qualityWarmupWindows = 1 // skip first N windows
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var diversitySum, energySum, lineageSum float64
	counts := make([]float64, 0, len(valid))

	for _, w := range valid {
		animals := w.Animals()
		counts = append(counts, float64(animals))
		if animals == 0 {
			continue
		}

		// 1. Diet diversity: fraction of diets present
		present := 0
		for _, n := range []int{w.Herbivores, w.Carnivores, w.Omnivores} {
			if n > 0 {
				present++
			}
		}
		diversitySum += float64(present) / 3.0

		// 3. Energy health: median near the starting energy
		energySum += math.Exp(-math.Pow((w.EnergyP50-100)/50, 2))

		// 4. Lineage richness saturates around a handful of lineages
		lineageSum += 1 - math.Exp(-float64(w.ActiveLineages)/5.0)
	}

	n := float64(len(valid))

	// 2. Population stability (coefficient of variation across windows)
	stabilityScore := 0.0
	if mean, std := stat.PopMeanStdDev(counts, nil); len(counts) >= 2 && mean > 0 {
		cv := std / mean
		stabilityScore = math.Exp(-cv * cv)
	}

	quality := qualityWeightDiversity*diversitySum/n +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energySum/n +
		qualityWeightLineages*lineageSum/n

	return min(max(quality, 0), 1)
}
