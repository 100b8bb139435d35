// Package telemetry collects, summarizes and writes epidemic run statistics.
package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/contagion/population"
	"github.com/pthm-cable/contagion/state"
)

// Census holds per-state counts at one tick.
type Census struct {
	Tick        int `csv:"tick"`
	Susceptible int `csv:"susceptible"`
	Exposed     int `csv:"exposed"`
	Infected    int `csv:"infected"`
	Symptomatic int `csv:"symptomatic"`
	Removed     int `csv:"removed"`
	Unassigned  int `csv:"unassigned"` // Individuals without a state
}

// Count tallies the states of every individual in pop.
func Count[K comparable](tick int, pop *population.Population[K]) Census {
	c := Census{Tick: tick}
	for _, ind := range pop.All() {
		s, ok := ind.State()
		if !ok {
			c.Unassigned++
			continue
		}
		c.add(s, 1)
	}
	return c
}

func (c *Census) add(s state.State, n int) {
	switch s {
	case state.Susceptible:
		c.Susceptible += n
	case state.Exposed:
		c.Exposed += n
	case state.Infected:
		c.Infected += n
	case state.Symptomatic:
		c.Symptomatic += n
	case state.Removed:
		c.Removed += n
	}
}

// Of returns the count for s.
func (c Census) Of(s state.State) int {
	switch s {
	case state.Susceptible:
		return c.Susceptible
	case state.Exposed:
		return c.Exposed
	case state.Infected:
		return c.Infected
	case state.Symptomatic:
		return c.Symptomatic
	case state.Removed:
		return c.Removed
	}
	return 0
}

// Infectious returns the number of individuals able to transmit.
func (c Census) Infectious() int {
	return c.Infected + c.Symptomatic
}

// Active returns the number of individuals still in the disease course.
func (c Census) Active() int {
	return c.Exposed + c.Infected + c.Symptomatic
}

// Total returns the number of individuals counted.
func (c Census) Total() int {
	return c.Susceptible + c.Exposed + c.Infected + c.Symptomatic + c.Removed + c.Unassigned
}

// LogStats logs the census.
func (c Census) LogStats() {
	slog.Info("census",
		"tick", c.Tick,
		"susceptible", c.Susceptible,
		"exposed", c.Exposed,
		"infected", c.Infected,
		"symptomatic", c.Symptomatic,
		"removed", c.Removed,
		"unassigned", c.Unassigned,
	)
}
