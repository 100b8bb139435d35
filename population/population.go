// Package population provides a fixed-size, ordered collection of individuals
// for epidemic simulations.
//
// A Population is structurally frozen once built: its individuals, their order
// and the id lookup table cannot be changed. The individuals themselves stay
// mutable and are updated in place by With and TryWith.
//
// Populations are not safe for concurrent use.
package population

import (
	"iter"
	"slices"

	"github.com/pthm-cable/contagion/state"
)

// Transform computes the fields to merge into one individual.
// index is the individual's position in the population.
type Transform[K comparable] func(ind *Individual[K], index int) Patch

// FallibleTransform is a Transform that can fail.
type FallibleTransform[K comparable] func(ind *Individual[K], index int) (Patch, error)

// IDFunc derives an id from a construction index.
type IDFunc[K comparable] func(index int) K

// Population owns an ordered set of individuals and an id lookup table.
type Population[K comparable] struct {
	individuals []*Individual[K]
	byID        map[K]*Individual[K]
}

// New builds a population from a sequence of individuals.
// The individuals are retained by reference, not copied.
// Every individual with an id is registered for Lookup; when two individuals
// share an id the later one wins. Ids are bound here and never rebound, even
// if an individual's id field is changed afterwards.
//
// With K = any, an id whose dynamic type is not comparable panics.
func New[K comparable](individuals iter.Seq[*Individual[K]]) *Population[K] {
	p := &Population[K]{
		individuals: slices.Collect(individuals),
		byID:        make(map[K]*Individual[K]),
	}
	for _, ind := range p.individuals {
		if id, ok := ind.ID(); ok {
			p.byID[id] = ind
		}
	}
	return p
}

// FromSlice builds a population from a slice of individuals.
// The slice itself is copied, so later edits to it do not reshape the population.
func FromSlice[K comparable](individuals []*Individual[K]) *Population[K] {
	return New(slices.Values(individuals))
}

// Of creates count Susceptible individuals whose ids are their indices.
func Of(count int) *Population[int] {
	return OfIDs(count, func(i int) int { return i })
}

// OfIDs creates count Susceptible individuals with ids from idfn.
// Duplicate ids follow the same last-wins rule as New.
func OfIDs[K comparable](count int, idfn IDFunc[K]) *Population[K] {
	if count < 0 {
		panic("population: negative count")
	}
	individuals := make([]*Individual[K], count)
	for i := range individuals {
		individuals[i] = &Individual[K]{
			state:    state.Susceptible,
			hasState: true,
			id:       idfn(i),
			hasID:    true,
		}
	}
	return New(slices.Values(individuals))
}

// Len returns the number of individuals.
func (p *Population[K]) Len() int {
	return len(p.individuals)
}

// At returns the individual at index i. It panics if i is out of range.
func (p *Population[K]) At(i int) *Individual[K] {
	return p.individuals[i]
}

// All iterates over the individuals in construction order.
func (p *Population[K]) All() iter.Seq2[int, *Individual[K]] {
	return slices.All(p.individuals)
}

// Individuals returns the individuals in construction order.
// The slice is a copy; the individuals are shared.
func (p *Population[K]) Individuals() []*Individual[K] {
	return slices.Clone(p.individuals)
}

// Lookup returns the individual registered under id.
func (p *Population[K]) Lookup(id K) (*Individual[K], bool) {
	ind, ok := p.byID[id]
	return ind, ok
}

// With applies fn to every individual in index order and merges the returned
// patch in place. It returns p so calls can be chained.
//
// fn sees siblings as they are at the moment of the call: individuals before
// the current index already carry this pass's updates. Transforms that need a
// consistent view of the whole population should read from a Snapshot taken
// before the pass.
//
// If fn panics, or returns a patch with a badly typed reserved field (which
// panics with a *StepError), the pass stops and earlier individuals keep
// their updates.
func (p *Population[K]) With(fn Transform[K]) *Population[K] {
	for i, ind := range p.individuals {
		if err := ind.Merge(fn(ind, i)); err != nil {
			panic(&StepError{Index: i, Err: err})
		}
	}
	return p
}

// TryWith is With for transforms that can fail.
// The first error aborts the pass and is returned as a *StepError. Individuals
// before the failing one keep their updates; there is no rollback.
func (p *Population[K]) TryWith(fn FallibleTransform[K]) (*Population[K], error) {
	for i, ind := range p.individuals {
		patch, err := fn(ind, i)
		if err != nil {
			return p, &StepError{Index: i, Err: err}
		}
		if err := ind.Merge(patch); err != nil {
			return p, &StepError{Index: i, Err: err}
		}
	}
	return p, nil
}

// Snapshot returns detached copies of every individual in construction order.
func (p *Population[K]) Snapshot() []*Individual[K] {
	snap := make([]*Individual[K], len(p.individuals))
	for i, ind := range p.individuals {
		snap[i] = ind.Clone()
	}
	return snap
}
