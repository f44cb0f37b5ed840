// Package main searches for simulation parameters that keep a diverse
// ecosystem alive without population recoveries, using CMA-ES over headless runs.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/survival/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 36000, "Tick cap per run")
	seeds := flag.Int("seeds", 3, "Runs per evaluation, one per seed")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 1.5*dim)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := optimizeRun(*configPath, *outputDir, *maxTicks, *seeds, *maxEvals, *population); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func optimizeRun(configPath, outputDir string, maxTicks, seeds, maxEvals, population int) error {
	if outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(maxTicks), evalSeeds, baseCfg)

	tr, err := newTracker(filepath.Join(outputDir, "optimize_log.csv"), params, maxEvals, baseCfg.World.TicksPerSecond)
	if err != nil {
		return err
	}
	defer tr.close()

	if population == 0 {
		population = 4 + 3*params.Dim()/2
	}
	slog.Info("optimize_start",
		"params", params.Dim(),
		"population", population,
		"max_evals", maxEvals,
		"seeds", seeds,
		"max_ticks", maxTicks,
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Clamped values are the ones the simulation actually used.
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			tr.record(values, fitness, evaluator.LastQuality())
			return fitness
		},
	}
	result, err := optimize.Minimize(problem,
		params.Normalize(params.ExtractFromConfig(baseCfg)),
		&optimize.Settings{FuncEvaluations: maxEvals, Concurrent: 0}, // seeds already run in parallel
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: population},
	)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}

	best := tr.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return fmt.Errorf("no evaluations completed")
	}

	slog.Info("optimize_complete",
		"evals", tr.evals,
		"elapsed", time.Since(tr.start).Round(time.Second).String(),
		"best_fitness", tr.bestFitness,
	)
	return writeBest(outputDir, params, baseCfg, best)
}

// tracker logs every evaluation to CSV and remembers the best one.
type tracker struct {
	file     *os.File
	w        *csv.Writer
	maxEvals int
	tps      int
	start    time.Time

	evals       int
	best        []float64
	bestFitness float64
}

func newTracker(path string, params *ParamVector, maxEvals, tps int) (*tracker, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log: %w", err)
	}
	w := csv.NewWriter(f)
	header := []string{"eval", "fitness", "quality", "survival_sec"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing log header: %w", err)
	}
	return &tracker{file: f, w: w, maxEvals: maxEvals, tps: tps, start: time.Now(), bestFitness: math.Inf(1)}, nil
}

func (tr *tracker) record(values []float64, fitness, quality float64) {
	tr.evals++
	if fitness < tr.bestFitness {
		tr.bestFitness = fitness
		tr.best = values
	}

	// fitness = -(survival ticks * (1 + 0.2*quality))
	survivalSec := -fitness / (1 + 0.2*quality) / float64(tr.tps)

	row := []string{
		strconv.Itoa(tr.evals),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
		strconv.FormatFloat(survivalSec, 'f', 1, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := tr.w.Write(row); err != nil {
		slog.Error("failed to write log row", "error", err)
	}
	tr.w.Flush()

	elapsed := time.Since(tr.start)
	eta := time.Duration(tr.maxEvals-tr.evals) * (elapsed / time.Duration(tr.evals))
	slog.Info("eval",
		"n", tr.evals,
		"survival_sec", survivalSec,
		"quality", quality,
		"best_fitness", tr.bestFitness,
		"elapsed", elapsed.Round(time.Second).String(),
		"eta", eta.Round(time.Second).String(),
	)
}

func (tr *tracker) close() {
	tr.w.Flush()
	tr.file.Close()
}

// writeBest saves the winning parameters as a named map and as a full config.
func writeBest(dir string, params *ParamVector, baseCfg *config.Config, best []float64) error {
	named := make(map[string]float64, len(best))
	for i, spec := range params.Specs {
		named[spec.Path] = best[i]
	}
	data, err := json.MarshalIndent(named, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding best params: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "best_params.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing best params: %w", err)
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	path := filepath.Join(dir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return err
	}
	slog.Info("best_config_written", "path", path)
	return nil
}
