package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// Summary holds whole-run epidemic statistics.
type Summary struct {
	Ticks      int `csv:"ticks"`
	Population int `csv:"population"`

	// Infectious prevalence (Infected + Symptomatic) over the run
	PeakInfectious int     `csv:"peak_infectious"`
	PeakTick       int     `csv:"peak_tick"`
	MeanPrevalence float64 `csv:"mean_prevalence"` // Fraction of population infectious, averaged over ticks
	StdPrevalence  float64 `csv:"std_prevalence"`

	// Fraction of the stated population that left Susceptible
	AttackRate float64 `csv:"attack_rate"`

	FinalSusceptible int `csv:"final_susceptible"`
	FinalRemoved     int `csv:"final_removed"`
	FinalActive      int `csv:"final_active"`
}

// Summarize computes run statistics from a census series.
// Returns a zero Summary for an empty series.
func Summarize(series []Census) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	first := series[0]
	last := series[len(series)-1]
	total := last.Total()

	s := Summary{
		Ticks:            last.Tick,
		Population:       total,
		FinalSusceptible: last.Susceptible,
		FinalRemoved:     last.Removed,
		FinalActive:      last.Active(),
		PeakTick:         first.Tick,
	}

	prevalence := make([]float64, len(series))
	for i, c := range series {
		if c.Infectious() > s.PeakInfectious {
			s.PeakInfectious = c.Infectious()
			s.PeakTick = c.Tick
		}
		if total > 0 {
			prevalence[i] = float64(c.Infectious()) / float64(total)
		}
	}
	if len(prevalence) > 1 {
		s.MeanPrevalence, s.StdPrevalence = stat.MeanStdDev(prevalence, nil)
	} else {
		s.MeanPrevalence = prevalence[0]
	}

	stated := total - last.Unassigned
	if stated > 0 {
		s.AttackRate = float64(stated-last.Susceptible) / float64(stated)
	}

	return s
}

// LogStats logs the summary.
func (s Summary) LogStats() {
	slog.Info("summary",
		"ticks", s.Ticks,
		"population", s.Population,
		"peak_infectious", s.PeakInfectious,
		"peak_tick", s.PeakTick,
		"mean_prevalence", s.MeanPrevalence,
		"std_prevalence", s.StdPrevalence,
		"attack_rate", s.AttackRate,
		"final_susceptible", s.FinalSusceptible,
		"final_removed", s.FinalRemoved,
		"final_active", s.FinalActive,
	)
}
