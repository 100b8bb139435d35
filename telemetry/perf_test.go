package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseTransmission)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseMovement]; !ok {
		t.Error("expected movement phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseTransmission]; !ok {
		t.Error("expected transmission phase to be tracked")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseProgression)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want 5", pc.sampleCount)
	}
	stats := pc.Stats()
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max out of order: %v %v %v", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero duration with no samples")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct: map[string]float64{
			PhaseMovement:     10,
			PhaseTransmission: 60,
			PhaseProgression:  20,
			PhaseTelemetry:    10,
		},
	}

	row := stats.ToCSV(42)

	if row.Tick != 42 || row.AvgTickUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.TransmissionPct != 60 || row.MovementPct != 10 {
		t.Errorf("phase pct not carried: %+v", row)
	}
}
