package systems

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/contagion/components"
	"github.com/pthm-cable/contagion/config"
	"github.com/pthm-cable/contagion/population"
	"github.com/pthm-cable/contagion/state"
)

// Fields written by the disease transforms.
const (
	FieldInfectedBy = "infected_by" // id of the source individual, when it has one
)

// TickField returns the field recording the tick at which an individual entered s.
func TickField(s state.State) string {
	return s.String() + "_tick"
}

// DiseaseSystem handles transmission and progression.
//
// Transmission reads from a snapshot taken by Prepare, so every susceptible
// individual sees the population as it was at the start of the tick no matter
// where it sits in the update pass.
type DiseaseSystem[K comparable] struct {
	cfg config.DiseaseConfig
	rng *rand.Rand

	radiusSq float64
	grid     *SpatialGrid
	prev     []*population.Individual[K]

	// Reusable buffer to avoid allocations
	neighbors []Neighbor
}

// NewDiseaseSystem creates a new disease system.
func NewDiseaseSystem[K comparable](cfg *config.Config, rng *rand.Rand) *DiseaseSystem[K] {
	return &DiseaseSystem[K]{
		cfg:       cfg.Disease,
		rng:       rng,
		radiusSq:  cfg.Derived.ContactRadiusSq,
		grid:      NewSpatialGrid(cfg.Derived.GridResolution),
		neighbors: make([]Neighbor, 0, 32),
	}
}

// Prepare snapshots the population and indexes its infectious members.
// Call it once per tick before applying Transmission.
func (s *DiseaseSystem[K]) Prepare(pop *population.Population[K]) {
	s.prev = pop.Snapshot()
	s.grid.Clear()
	for i, ind := range s.prev {
		st, ok := ind.State()
		if !ok || !st.Infectious() {
			continue
		}
		if pos, ok := components.PositionOf(ind); ok {
			s.grid.Insert(i, pos)
		}
	}
}

// Sources returns the number of infectious individuals indexed by the last Prepare.
func (s *DiseaseSystem[K]) Sources() int {
	return s.grid.Len()
}

// Transmission returns a transform that exposes susceptible individuals
// near infectious ones.
func (s *DiseaseSystem[K]) Transmission(tick int) population.Transform[K] {
	return func(_ *population.Individual[K], i int) population.Patch {
		if i >= len(s.prev) || !s.prev[i].Is(state.Susceptible) {
			return nil
		}

		if pos, ok := components.PositionOf(s.prev[i]); ok && s.grid.Len() > 0 {
			s.neighbors = s.grid.QueryRadiusInto(s.neighbors[:0], pos, s.cfg.ContactRadius, i)
			for _, n := range s.neighbors {
				if s.rng.Float64() < s.contactProb(n) {
					return s.exposure(tick, s.prev[n.Index])
				}
			}
		}

		// Spontaneous exposure (rare, provides introductions)
		if s.cfg.SpontaneousProb > 0 && s.rng.Float64() < s.cfg.SpontaneousProb {
			return s.exposure(tick, nil)
		}
		return nil
	}
}

// contactProb is the chance a single contact transmits this tick.
// Closer contacts are more likely to transmit.
func (s *DiseaseSystem[K]) contactProb(n Neighbor) float64 {
	if s.radiusSq == 0 {
		return 0
	}
	p := s.cfg.TransmissionProb * (1 - math.Sqrt(n.DistSq/s.radiusSq))
	if s.prev[n.Index].Is(state.Symptomatic) {
		p *= s.cfg.SymptomaticMultiplier
	}
	return p
}

func (s *DiseaseSystem[K]) exposure(tick int, source *population.Individual[K]) population.Patch {
	patch := population.Patch{
		population.FieldState:    state.Exposed,
		TickField(state.Exposed): tick,
	}
	if source != nil {
		if id, ok := source.ID(); ok {
			patch[FieldInfectedBy] = id
		}
	}
	return patch
}

// Progression returns a transform that advances exposed and infectious
// individuals through the disease course. Individuals exposed during this
// tick are left alone until the next one.
func (s *DiseaseSystem[K]) Progression(tick int) population.Transform[K] {
	return func(ind *population.Individual[K], _ int) population.Patch {
		st, ok := ind.State()
		if !ok {
			return nil
		}

		var next state.State
		switch st {
		case state.Exposed:
			if at, ok := ind.Float(TickField(state.Exposed)); ok && int(at) == tick {
				return nil
			}
			if s.rng.Float64() >= s.cfg.IncubationRate {
				return nil
			}
			next = state.Infected
		case state.Infected:
			r := s.rng.Float64()
			switch {
			case r < s.cfg.SymptomRate:
				next = state.Symptomatic
			case r < s.cfg.SymptomRate+s.cfg.AsymptomaticRecovery:
				next = state.Removed
			default:
				return nil
			}
		case state.Symptomatic:
			if s.rng.Float64() >= s.cfg.RemovalRate {
				return nil
			}
			next = state.Removed
		default:
			return nil
		}

		return population.Patch{
			population.FieldState: next,
			TickField(next):       tick,
		}
	}
}
