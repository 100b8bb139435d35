// Package components defines the per-individual attributes used by the simulation systems.
package components

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/contagion/population"
)

// Field names under which a position is stored on an individual.
const (
	FieldX = "x"
	FieldY = "y"
)

// Position is a point in the unit square.
type Position struct {
	X, Y float64
}

// Patch returns the position as individual fields.
func (p Position) Patch() population.Patch {
	return population.Patch{FieldX: p.X, FieldY: p.Y}
}

// PositionOf reads the position stored on an individual.
// Returns false if either coordinate is missing.
func PositionOf[K comparable](ind *population.Individual[K]) (Position, bool) {
	x, okX := ind.Float(FieldX)
	y, okY := ind.Float(FieldY)
	return Position{X: x, Y: y}, okX && okY
}

var unit = distuv.Uniform{Min: 0, Max: 1}

// UnitSquare returns a point with each coordinate drawn independently and
// uniformly from [0, 1), using the process-wide random source.
func UnitSquare() Position {
	return Position{X: unit.Rand(), Y: unit.Rand()}
}

// UnitSquareSampler draws unit-square points from its own source.
// Use it instead of UnitSquare when runs must be reproducible.
type UnitSquareSampler struct {
	dist distuv.Uniform
}

// NewUnitSquareSampler creates a sampler backed by src.
func NewUnitSquareSampler(src rand.Source) *UnitSquareSampler {
	return &UnitSquareSampler{dist: distuv.Uniform{Min: 0, Max: 1, Src: src}}
}

// Sample returns the next point.
func (s *UnitSquareSampler) Sample() Position {
	return Position{X: s.dist.Rand(), Y: s.dist.Rand()}
}
