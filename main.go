package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/game"
	"github.com/pthm-cable/survival/observer"
	"github.com/pthm-cable/survival/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Step as fast as possible instead of at the configured tick rate")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = configured duration)")
	observe := flag.String("observe", "", "Listen address for the observer server, e.g. :8080 (empty = disabled)")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	if err := run(cfg, runFlags{
		seed:        rngSeed,
		logStats:    *logStats,
		statsWindow: statsWindowSec,
		snapshotDir: *snapshotDir,
		outputDir:   *outputDir,
		headless:    *headless,
		maxTicks:    int32(*maxTicks),
		observe:     *observe,
	}); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runFlags struct {
	seed        int64
	logStats    bool
	statsWindow float64
	snapshotDir string
	outputDir   string
	headless    bool
	maxTicks    int32
	observe     string
}

func run(cfg *config.Config, f runFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return err
	}

	g, err := game.NewGame(cfg, game.Options{
		Seed:           f.seed,
		LogStats:       f.logStats,
		StatsWindowSec: f.statsWindow,
		SnapshotDir:    f.snapshotDir,
		OutputDir:      f.outputDir,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close game", "error", err)
		}
	}()

	commands := make(chan game.Command, 8)
	hub := observer.NewHub(cfg.Observer.SendBuffer)

	if f.observe != "" {
		srv := &http.Server{
			Addr:              f.observe,
			Handler:           observer.NewServer(hub, commands).Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("observer server failed", "error", err)
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("observer listening", "addr", f.observe)
	}

	slog.Info("starting simulation",
		"seed", g.Seed(),
		"realtime", !f.headless,
		"max_ticks", f.maxTicks,
		"stats_window", f.statsWindow,
	)

	err = g.Run(ctx, game.RunOptions{
		Realtime: !f.headless,
		MaxTicks: f.maxTicks,
		Commands: commands,
		OnTick:   hub.OnTick(cfg.Observer.FrameEvery),
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	summary := g.TraitSummary()
	slog.Info("run_complete",
		"tick", g.Tick(),
		"generation", summary.Generation,
		"elapsed_sec", summary.ElapsedSec,
		"animals", summary.Animals,
		"plants", summary.Plants,
		"speed_mean", summary.SpeedMean,
		"size_mean", summary.SizeMean,
		"sense_mean", summary.SenseMean,
		"history_dropped", g.HistoryDropped(),
		"output_dir", g.OutputDir(),
		"frames_dropped", hub.Dropped(),
		"observers", hub.Subscribers(),
	)
	return nil
}
