// Package state defines the closed set of epidemiological states an individual can be in.
package state

import "fmt"

// State is an epidemiological compartment.
// The set is closed: only the constants below are valid values.
type State uint8

const (
	Susceptible State = iota // Can be exposed
	Exposed                  // Carrying the pathogen, not yet infectious
	Infected                 // Infectious, no symptoms
	Symptomatic              // Infectious with symptoms
	Removed                  // Recovered, immune or dead
)

// Count is the number of valid states.
const Count = 5

var names = [Count]string{
	Susceptible: "susceptible",
	Exposed:     "exposed",
	Infected:    "infected",
	Symptomatic: "symptomatic",
	Removed:     "removed",
}

// All returns every state in declaration order.
// The returned array is a copy; changing it does not affect the package.
func All() [Count]State {
	return [Count]State{Susceptible, Exposed, Infected, Symptomatic, Removed}
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return s < Count
}

// Infectious reports whether s can transmit (Infected or Symptomatic).
func (s State) Infectious() bool {
	return s == Infected || s == Symptomatic
}

// String returns the lower-case state name.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", uint8(s))
	}
	return names[s]
}

// Parse returns the state with the given name.
func Parse(name string) (State, error) {
	for i, n := range names {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid state %d", uint8(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
