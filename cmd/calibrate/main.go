// Package main fits the transmission probability so that simulated epidemics
// reach a target attack rate.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/contagion/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	target := flag.Float64("target", 0, "Target attack rate (0 = use config)")
	seeds := flag.Int("seeds", 0, "Number of seeds per evaluation (0 = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Tick cap per run (0 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(*configPath, *target, *seeds, *maxEvals, *maxTicks, *outputDir); err != nil {
		slog.Error("calibration failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, target float64, seeds, maxEvals, maxTicks int, outputDir string) error {
	if outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if target <= 0 {
		target = baseCfg.Calibrate.TargetAttackRate
	}
	if seeds <= 0 {
		seeds = baseCfg.Calibrate.Seeds
	}
	if maxEvals <= 0 {
		maxEvals = baseCfg.Calibrate.MaxEvals
	}
	if maxTicks <= 0 {
		maxTicks = baseCfg.Run.MaxTicks
	}

	evalSeeds := make([]int64, seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(baseCfg, target, evalSeeds, maxTicks)

	problem := optimize.Problem{Func: evaluator.Evaluate}
	settings := &optimize.Settings{FuncEvaluations: maxEvals}
	initX := []float64{fromProb(baseCfg.Disease.TransmissionProb)}

	slog.Info("starting calibration",
		"target_attack_rate", target,
		"seeds", seeds,
		"max_evals", maxEvals,
		"max_ticks", maxTicks,
	)
	start := time.Now()

	if _, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{}); err != nil {
		// Hitting the evaluation cap is reported as an error; the best point is still usable
		slog.Warn("optimization ended", "error", err)
	}

	best := evaluator.Best()
	slog.Info("calibration complete",
		"evaluations", len(evaluator.Records()),
		"elapsed", time.Since(start).Round(time.Second).String(),
		"transmission_prob", best.TransmissionProb,
		"attack_rate", best.AttackRate,
		"loss", best.Loss,
	)

	logFile, err := os.Create(filepath.Join(outputDir, "calibrate_log.csv"))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()
	if err := gocsv.MarshalFile(evaluator.Records(), logFile); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}

	bestCfg := baseCfg.Clone()
	bestCfg.Disease.TransmissionProb = best.TransmissionProb
	if err := bestCfg.WriteYAML(filepath.Join(outputDir, "best_config.yaml")); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	return nil
}
