package population

import (
	"maps"

	"github.com/pthm-cable/contagion/state"
)

// Reserved field names understood by Individual.
const (
	FieldState = "state"
	FieldID    = "id"
)

// Patch is a partial record: field name to new value.
// Merging a patch overwrites the named fields and leaves the rest untouched.
// A "state" entry must hold a state.State and an "id" entry must hold the
// population's key type.
type Patch map[string]any

// Individual is a mutable value bag with an optional state, an optional id
// and any number of caller-defined fields.
//
// Individuals are shared by reference: a Population holds the same
// *Individual the caller constructed, so mutations are visible both ways.
type Individual[K comparable] struct {
	state    state.State
	hasState bool
	id       K
	hasID    bool
	fields   map[string]any
}

// NewIndividual builds an individual from an initial set of fields.
func NewIndividual[K comparable](fields Patch) (*Individual[K], error) {
	ind := &Individual[K]{}
	if err := ind.Merge(fields); err != nil {
		return nil, err
	}
	return ind, nil
}

// MustNewIndividual is like NewIndividual but panics on error.
func MustNewIndividual[K comparable](fields Patch) *Individual[K] {
	ind, err := NewIndividual[K](fields)
	if err != nil {
		panic(err)
	}
	return ind
}

// State returns the individual's state and whether one has been assigned.
func (ind *Individual[K]) State() (state.State, bool) {
	return ind.state, ind.hasState
}

// Is reports whether the individual has been assigned state s.
func (ind *Individual[K]) Is(s state.State) bool {
	return ind.hasState && ind.state == s
}

// SetState assigns the individual's state.
func (ind *Individual[K]) SetState(s state.State) {
	ind.state = s
	ind.hasState = true
}

// ID returns the individual's id and whether one has been assigned.
func (ind *Individual[K]) ID() (K, bool) {
	return ind.id, ind.hasID
}

// Get returns the named field. The reserved names resolve to the state and id.
func (ind *Individual[K]) Get(name string) (any, bool) {
	switch name {
	case FieldState:
		if !ind.hasState {
			return nil, false
		}
		return ind.state, true
	case FieldID:
		if !ind.hasID {
			return nil, false
		}
		return ind.id, true
	}
	v, ok := ind.fields[name]
	return v, ok
}

// Float returns a numeric field as float64.
// Returns false if the field is missing or not a number.
func (ind *Individual[K]) Float(name string) (float64, bool) {
	v, ok := ind.fields[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Set assigns a single field.
func (ind *Individual[K]) Set(name string, value any) error {
	if err := ind.check(name, value); err != nil {
		return err
	}
	ind.set(name, value)
	return nil
}

// Merge writes every field of p into the individual.
// Reserved fields are checked before anything is written, so a failed merge
// leaves the individual unchanged. A nil patch is a no-op.
func (ind *Individual[K]) Merge(p Patch) error {
	for name, value := range p {
		if err := ind.check(name, value); err != nil {
			return err
		}
	}
	for name, value := range p {
		ind.set(name, value)
	}
	return nil
}

// Fields returns a copy of the caller-defined fields, excluding state and id.
func (ind *Individual[K]) Fields() map[string]any {
	return maps.Clone(ind.fields)
}

// Clone returns a detached copy. Field values are copied shallowly.
func (ind *Individual[K]) Clone() *Individual[K] {
	c := *ind
	c.fields = maps.Clone(ind.fields)
	return &c
}

func (ind *Individual[K]) check(name string, value any) error {
	switch name {
	case FieldState:
		s, ok := value.(state.State)
		if !ok || !s.Valid() {
			return &FieldError{Field: name, Want: "state.State", Got: value}
		}
	case FieldID:
		if _, ok := value.(K); !ok {
			var zero K
			return &FieldError{Field: name, Want: typeName(zero), Got: value}
		}
	}
	return nil
}

func (ind *Individual[K]) set(name string, value any) {
	switch name {
	case FieldState:
		ind.state = value.(state.State)
		ind.hasState = true
	case FieldID:
		ind.id = value.(K)
		ind.hasID = true
	default:
		if ind.fields == nil {
			ind.fields = make(map[string]any)
		}
		ind.fields[name] = value
	}
}
