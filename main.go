package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/contagion/config"
	"github.com/pthm-cable/contagion/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output census rows via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	ticks := cfg.Run.MaxTicks
	if *maxTicks > 0 {
		ticks = *maxTicks
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:      *seed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting simulation",
		"seed", s.Seed(),
		"population", s.Population().Len(),
		"max_ticks", ticks,
		"output_dir", *outputDir,
	)

	summary, err := s.Run(ticks)
	if err != nil {
		slog.Error("simulation failed", "error", err)
		s.Close()
		os.Exit(1)
	}
	summary.LogStats()
}
