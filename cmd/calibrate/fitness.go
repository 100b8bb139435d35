package main

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/contagion/config"
	"github.com/pthm-cable/contagion/sim"
)

// EvalRecord is one row of the calibration log.
type EvalRecord struct {
	Eval             int     `csv:"eval"`
	TransmissionProb float64 `csv:"transmission_prob"`
	AttackRate       float64 `csv:"attack_rate"`
	Loss             float64 `csv:"loss"`
}

// FitnessEvaluator runs headless simulations and scores a transmission
// probability by how far its mean attack rate lands from the target.
type FitnessEvaluator struct {
	baseConfig *config.Config
	target     float64
	seeds      []int64
	maxTicks   int

	records []EvalRecord
	best    EvalRecord
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(baseCfg *config.Config, target float64, seeds []int64, maxTicks int) *FitnessEvaluator {
	return &FitnessEvaluator{
		baseConfig: baseCfg,
		target:     target,
		seeds:      seeds,
		maxTicks:   maxTicks,
		best:       EvalRecord{Loss: math.Inf(1)},
	}
}

// toProb maps an unconstrained optimizer coordinate into (0, 1).
func toProb(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// fromProb is the inverse of toProb.
func fromProb(p float64) float64 {
	p = math.Min(math.Max(p, 1e-6), 1-1e-6)
	return math.Log(p / (1 - p))
}

// Evaluate returns the squared attack-rate error for optimizer coordinate x.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	prob := toProb(x[0])

	var total float64
	runs := 0
	for _, seed := range fe.seeds {
		cfg := fe.baseConfig.Clone()
		cfg.Disease.TransmissionProb = prob

		s, err := sim.New(cfg, sim.Options{Seed: seed})
		if err != nil {
			slog.Error("failed to build simulation", "seed", seed, "error", err)
			continue
		}
		summary, err := s.Run(fe.maxTicks)
		s.Close()
		if err != nil {
			slog.Error("simulation failed", "seed", seed, "error", err)
			continue
		}
		total += summary.AttackRate
		runs++
	}

	rec := EvalRecord{
		Eval:             len(fe.records) + 1,
		TransmissionProb: prob,
		Loss:             math.Inf(1),
	}
	if runs > 0 {
		rec.AttackRate = total / float64(runs)
		diff := rec.AttackRate - fe.target
		rec.Loss = diff * diff
	}
	fe.records = append(fe.records, rec)
	if rec.Loss < fe.best.Loss {
		fe.best = rec
	}

	slog.Info("evaluation",
		"eval", rec.Eval,
		"transmission_prob", rec.TransmissionProb,
		"attack_rate", rec.AttackRate,
		"loss", rec.Loss,
	)
	return rec.Loss
}

// Best returns the lowest-loss evaluation so far.
func (fe *FitnessEvaluator) Best() EvalRecord {
	return fe.best
}

// Records returns every evaluation in order.
func (fe *FitnessEvaluator) Records() []EvalRecord {
	return fe.records
}
