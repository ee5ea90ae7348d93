package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/remd/config"
	"github.com/pthm-cable/remd/sim"
	"github.com/pthm-cable/remd/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	replicas := flag.Int("replicas", 0, "Ensemble size (0 = use config)")
	steps := flag.Int("steps", 0, "Steps per replica (0 = use config)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log every committed window via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	// Output manager (nil if no output dir)
	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	runner, err := sim.NewRunner(cfg, sim.Options{
		Replicas: *replicas,
		Steps:    *steps,
		Seed:     rngSeed,
		Output:   output,
		LogStats: *logStats,
	})
	if err != nil {
		slog.Error("failed to build ensemble runner", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	if err := runner.Run(); err != nil {
		slog.Error("ensemble run failed", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "elapsed", time.Since(start).String(), "seed", rngSeed)

	if err := output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
