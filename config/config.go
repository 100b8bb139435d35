// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/contagion/state"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Population PopulationConfig `yaml:"population"`
	Disease    DiseaseConfig    `yaml:"disease"`
	Mobility   MobilityConfig   `yaml:"mobility"`
	Run        RunConfig        `yaml:"run"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Calibrate  CalibrateConfig  `yaml:"calibrate"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PopulationConfig holds population construction parameters.
type PopulationConfig struct {
	Count    int    `yaml:"count"`
	IDFormat string `yaml:"id_format"` // fmt verb applied to the index, e.g. "ind%d"

	// Individuals placed in each state at seeding time (the rest are susceptible)
	Seeds map[state.State]int `yaml:"seeds"`
}

// DiseaseConfig holds transmission and progression parameters.
// Rates are per-tick transition probabilities.
type DiseaseConfig struct {
	ContactRadius         float64 `yaml:"contact_radius"`         // Max distance for transmission (unit square)
	TransmissionProb      float64 `yaml:"transmission_prob"`      // Per-tick probability per infectious contact at distance 0
	SymptomaticMultiplier float64 `yaml:"symptomatic_multiplier"` // Transmission scale for symptomatic sources
	SpontaneousProb       float64 `yaml:"spontaneous_prob"`       // Per-tick exposure with no contact
	IncubationRate        float64 `yaml:"incubation_rate"`        // Exposed -> Infected
	SymptomRate           float64 `yaml:"symptom_rate"`           // Infected -> Symptomatic
	AsymptomaticRecovery  float64 `yaml:"asymptomatic_recovery"`  // Infected -> Removed
	RemovalRate           float64 `yaml:"removal_rate"`           // Symptomatic -> Removed
}

// MobilityConfig holds random-walk parameters.
type MobilityConfig struct {
	StepSigma float64 `yaml:"step_sigma"` // Std dev of the per-tick displacement (0 = static)
}

// RunConfig holds run control parameters.
type RunConfig struct {
	MaxTicks       int   `yaml:"max_ticks"`
	Seed           int64 `yaml:"seed"`            // 0 = time-based
	StopWhenClear  bool  `yaml:"stop_when_clear"` // Stop once nobody is exposed or infectious
	GridResolution int   `yaml:"grid_resolution"` // Spatial grid cells per side (0 = derive from contact radius)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	CensusInterval      int `yaml:"census_interval"` // Ticks between census rows
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// CalibrateConfig holds defaults for the calibration tool.
type CalibrateConfig struct {
	TargetAttackRate float64 `yaml:"target_attack_rate"`
	Seeds            int     `yaml:"seeds"`
	MaxEvals         int     `yaml:"max_evals"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ContactRadiusSq float64
	GridCellSize    float64 // 1 / grid resolution
	GridResolution  int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy, for callers that tweak parameters per run.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Population.Seeds = make(map[state.State]int, len(c.Population.Seeds))
	for s, n := range c.Population.Seeds {
		cp.Population.Seeds[s] = n
	}
	cp.computeDerived()
	return &cp
}

func (c *Config) validate() error {
	if c.Population.Count < 0 {
		return fmt.Errorf("population.count must be >= 0, got %d", c.Population.Count)
	}
	seeded := 0
	for s, n := range c.Population.Seeds {
		if n < 0 {
			return fmt.Errorf("population.seeds.%s must be >= 0, got %d", s, n)
		}
		seeded += n
	}
	if seeded > c.Population.Count {
		return fmt.Errorf("population.seeds total %d exceeds population.count %d", seeded, c.Population.Count)
	}
	if c.Disease.ContactRadius < 0 || c.Disease.ContactRadius > 0.5 {
		return fmt.Errorf("disease.contact_radius must be in [0, 0.5], got %v", c.Disease.ContactRadius)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ContactRadiusSq = c.Disease.ContactRadius * c.Disease.ContactRadius

	res := c.Run.GridResolution
	if res <= 0 {
		// One cell per contact radius keeps queries to a 3x3 block
		res = 1
		if c.Disease.ContactRadius > 0 {
			res = int(math.Floor(1/c.Disease.ContactRadius + 1e-9))
		}
	}
	if res < 1 {
		res = 1
	}
	c.Derived.GridResolution = res
	c.Derived.GridCellSize = 1 / float64(res)

	if c.Telemetry.CensusInterval < 1 {
		c.Telemetry.CensusInterval = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
