package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/contagion/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v, want nil, nil", om, err)
	}

	// Every method is a no-op on the nil manager
	if err := om.WriteCensus(Census{}); err != nil {
		t.Error(err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Error(err)
	}
	if err := om.WriteSummary(Summary{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should have empty dir")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerCensusRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}

	rows := []Census{
		{Tick: 0, Susceptible: 9, Infected: 1},
		{Tick: 1, Susceptible: 8, Exposed: 1, Infected: 1},
		{Tick: 2, Susceptible: 8, Infected: 1, Removed: 1},
	}
	for _, r := range rows {
		if err := om.WriteCensus(r); err != nil {
			t.Fatalf("WriteCensus failed: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "census.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "tick,"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}

	var loaded []Census
	if err := gocsv.UnmarshalBytes(data, &loaded); err != nil {
		t.Fatalf("unmarshal census.csv: %v", err)
	}
	if len(loaded) != len(rows) {
		t.Fatalf("loaded %d rows, want %d", len(loaded), len(rows))
	}
	for i := range rows {
		if loaded[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, loaded[i], rows[i])
		}
	}
}

func TestOutputManagerSummaryAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager failed: %v", err)
	}
	defer om.Close()

	want := Summary{Ticks: 40, Population: 100, PeakInfectious: 12, PeakTick: 9, AttackRate: 0.5}
	if err := om.WriteSummary(want); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	if err := om.WritePerf(PerfStats{TicksPerSecond: 10}, 40); err != nil {
		t.Fatalf("WritePerf failed: %v", err)
	}

	cfg := config.Default()
	cfg.Population.Count = 77
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var got []Summary
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatalf("unmarshal summary.csv: %v", err)
	}
	if len(got) != 1 || got[0] != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}

	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("loading written config: %v", err)
	}
	if loaded.Population.Count != 77 {
		t.Errorf("population.count = %d, want 77", loaded.Population.Count)
	}
}
