package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/contagion/components"
	"github.com/pthm-cable/contagion/config"
	"github.com/pthm-cable/contagion/state"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.Count = 200
	cfg.Population.Seeds = map[state.State]int{state.Infected: 5, state.Removed: 3}
	cfg.Disease.ContactRadius = 0.1
	cfg.Disease.TransmissionProb = 0.5
	cfg.Run.MaxTicks = 60
	return cfg.Clone()
}

func TestNewSeedsPopulation(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 7})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	pop := s.Population()
	if pop.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", pop.Len())
	}

	census := s.Census()[0]
	if census.Infected != 5 || census.Removed != 3 || census.Susceptible != 192 {
		t.Errorf("initial census = %+v", census)
	}

	for i, ind := range pop.All() {
		if _, ok := components.PositionOf(ind); !ok {
			t.Fatalf("individual %d not placed", i)
		}
	}
	if ind, ok := pop.Lookup("ind17"); !ok || ind != pop.At(17) {
		t.Error("ids should follow population.id_format")
	}
}

func TestRunPreservesIdentityAndCardinality(t *testing.T) {
	s, err := New(smallConfig(), Options{Seed: 11})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	before := s.Population().Individuals()
	summary, err := s.Run(30)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pop := s.Population()
	if pop.Len() != len(before) {
		t.Fatalf("Len() = %d, want %d", pop.Len(), len(before))
	}
	for i := range before {
		if pop.At(i) != before[i] {
			t.Fatalf("individual %d replaced during run", i)
		}
	}
	for _, c := range s.Census() {
		if c.Total() != 200 {
			t.Errorf("tick %d total = %d, want 200", c.Tick, c.Total())
		}
	}
	if summary.Population != 200 {
		t.Errorf("summary population = %d, want 200", summary.Population)
	}
	if s.Tick() > 30 {
		t.Errorf("Tick() = %d, want <= 30", s.Tick())
	}
}

func TestRunIsReproducible(t *testing.T) {
	run := func() []int {
		s, err := New(smallConfig(), Options{Seed: 99})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer s.Close()
		if _, err := s.Run(40); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		var removed []int
		for _, c := range s.Census() {
			removed = append(removed, c.Removed)
		}
		return removed
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("series lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tick %d removed differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestRunSpreadsInfection(t *testing.T) {
	cfg := smallConfig()
	cfg.Disease.TransmissionProb = 1
	cfg.Disease.ContactRadius = 0.5
	cfg = cfg.Clone()

	s, err := New(cfg, Options{Seed: 5})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	summary, err := s.Run(20)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.AttackRate <= 0.5 {
		t.Errorf("AttackRate = %v, want > 0.5 with certain transmission", summary.AttackRate)
	}

	// Exposed individuals record who infected them
	found := false
	for _, ind := range s.Population().All() {
		if _, ok := ind.Get("infected_by"); ok {
			found = true
			break
		}
	}
	if !found {
		t.Error("no individual recorded an infection source")
	}
}

func TestRunStopsWhenCleared(t *testing.T) {
	cfg := smallConfig()
	cfg.Population.Seeds = nil
	cfg = cfg.Clone()

	s, err := New(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Run(100); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.Tick() != 0 {
		t.Errorf("Tick() = %d, want 0 with nobody infected", s.Tick())
	}
}

func TestRunWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := New(smallConfig(), Options{Seed: 3, OutputDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Run(10); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, name := range []string{"census.csv", "perf.csv", "summary.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s missing: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestIDFuncDefault(t *testing.T) {
	if got := idFunc("")(12); got != "12" {
		t.Errorf("idFunc(\"\")(12) = %q, want 12", got)
	}
	if got := idFunc("p-%03d")(7); got != "p-007" {
		t.Errorf("idFunc(p-%%03d)(7) = %q, want p-007", got)
	}
}
