// Package sim drives an epidemic population through time.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/pthm-cable/contagion/components"
	"github.com/pthm-cable/contagion/config"
	"github.com/pthm-cable/contagion/population"
	"github.com/pthm-cable/contagion/state"
	"github.com/pthm-cable/contagion/systems"
	"github.com/pthm-cable/contagion/telemetry"
)

// Options holds run-specific settings that are not part of the model config.
type Options struct {
	Seed      int64  // RNG seed (0 = use config, then time)
	OutputDir string // Directory for CSV output (empty = disabled)
	LogStats  bool   // Log each flushed census via slog
}

// Simulation owns a population and the systems that step it.
type Simulation struct {
	cfg  *config.Config
	seed int64
	rng  *rand.Rand

	pop      *population.Population[string]
	disease  *systems.DiseaseSystem[string]
	movement *systems.MovementSystem[string]

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	tick int
}

// New builds a simulation and seeds its population.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Run.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	rng := rand.New(src)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Simulation{
		cfg:       cfg,
		seed:      seed,
		rng:       rng,
		pop:       population.OfIDs(cfg.Population.Count, idFunc(cfg.Population.IDFormat)),
		disease:   systems.NewDiseaseSystem[string](cfg, rng),
		movement:  systems.NewMovementSystem[string](cfg.Mobility.StepSigma, src),
		collector: telemetry.NewCollector(cfg.Telemetry.CensusInterval),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    output,
		logStats:  opts.LogStats,
	}
	s.seedPopulation(components.NewUnitSquareSampler(src))
	s.recordCensus()

	return s, nil
}

// idFunc returns the id generator for the configured format.
func idFunc(format string) population.IDFunc[string] {
	if format == "" {
		return strconv.Itoa
	}
	return func(i int) string { return fmt.Sprintf(format, i) }
}

// seedPopulation places every individual and assigns the configured initial states.
func (s *Simulation) seedPopulation(sampler *components.UnitSquareSampler) {
	initial := make(map[int]state.State)
	order := s.rng.Perm(s.pop.Len())
	next := 0
	for _, st := range state.All() {
		for n := 0; n < s.cfg.Population.Seeds[st] && next < len(order); n++ {
			initial[order[next]] = st
			next++
		}
	}

	s.pop.With(func(_ *population.Individual[string], i int) population.Patch {
		patch := sampler.Sample().Patch()
		if st, ok := initial[i]; ok {
			patch[population.FieldState] = st
			patch[systems.TickField(st)] = 0
		}
		return patch
	})
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.tick++
	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseMovement)
	s.pop.With(s.movement.Transform())

	s.perf.StartPhase(telemetry.PhaseTransmission)
	s.disease.Prepare(s.pop)
	s.pop.With(s.disease.Transmission(s.tick))

	s.perf.StartPhase(telemetry.PhaseProgression)
	s.pop.With(s.disease.Progression(s.tick))

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.recordCensus()

	s.perf.EndTick()
}

// recordCensus counts the population and writes the row if it is due.
func (s *Simulation) recordCensus() {
	census := telemetry.Count(s.tick, s.pop)
	if !s.collector.Record(census) {
		return
	}

	if s.logStats {
		census.LogStats()
	}
	if err := s.output.WriteCensus(census); err != nil {
		slog.Error("failed to write census", "error", err)
	}
	if s.tick > 0 {
		if err := s.output.WritePerf(s.perf.Stats(), s.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Run steps until the tick cap is reached or, when configured, the epidemic
// has burned out. It returns the run summary.
func (s *Simulation) Run(maxTicks int) (telemetry.Summary, error) {
	for maxTicks <= 0 || s.tick < maxTicks {
		if s.cfg.Run.StopWhenClear && s.Active() == 0 && s.cfg.Disease.SpontaneousProb == 0 {
			slog.Info("epidemic cleared", "tick", s.tick)
			break
		}
		s.Step()
	}

	summary := telemetry.Summarize(s.collector.Series())
	if s.logStats {
		s.perf.Stats().LogStats()
	}
	if err := s.output.WriteSummary(summary); err != nil {
		return summary, fmt.Errorf("writing summary: %w", err)
	}
	return summary, nil
}

// Active returns the number of exposed or infectious individuals at the last census.
func (s *Simulation) Active() int {
	latest, _ := s.collector.Latest()
	return latest.Active()
}

// Population returns the simulated population.
func (s *Simulation) Population() *population.Population[string] {
	return s.pop
}

// Census returns the census series recorded so far.
func (s *Simulation) Census() []telemetry.Census {
	return s.collector.Series()
}

// Tick returns the current tick.
func (s *Simulation) Tick() int {
	return s.tick
}

// Seed returns the RNG seed in use.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Close releases output files.
func (s *Simulation) Close() error {
	return s.output.Close()
}
