package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/contagion/components"
	"github.com/pthm-cable/contagion/population"
)

// MovementSystem moves individuals by a Gaussian random walk on the unit torus.
type MovementSystem[K comparable] struct {
	step distuv.Normal
}

// NewMovementSystem creates a random walk with the given step deviation.
func NewMovementSystem[K comparable](sigma float64, src rand.Source) *MovementSystem[K] {
	return &MovementSystem[K]{step: distuv.Normal{Mu: 0, Sigma: sigma, Src: src}}
}

// Transform returns the per-tick movement transform.
// Individuals without a position are not moved.
func (m *MovementSystem[K]) Transform() population.Transform[K] {
	return func(ind *population.Individual[K], _ int) population.Patch {
		if m.step.Sigma <= 0 {
			return nil
		}
		pos, ok := components.PositionOf(ind)
		if !ok {
			return nil
		}
		return components.Position{
			X: wrap(pos.X + m.step.Rand()),
			Y: wrap(pos.Y + m.step.Rand()),
		}.Patch()
	}
}

// wrap maps v into [0, 1).
func wrap(v float64) float64 {
	w := v - math.Floor(v)
	if w >= 1 {
		return 0
	}
	return w
}
