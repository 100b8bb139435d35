// Package systems provides the transforms that step an epidemic population.
package systems

import (
	"github.com/pthm-cable/contagion/components"
)

// Neighbor holds a nearby individual with precomputed spatial data.
type Neighbor struct {
	Index  int     // Position in the population
	DX, DY float64 // Toroidal delta from query origin
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

type gridEntry struct {
	index int
	pos   components.Position
}

// SpatialGrid provides near-constant-time neighbor lookups on the unit torus.
type SpatialGrid struct {
	cellSize float64
	res      int
	cells    [][]gridEntry
}

// NewSpatialGrid creates a res x res grid covering the unit square.
func NewSpatialGrid(res int) *SpatialGrid {
	if res < 1 {
		res = 1
	}
	cells := make([][]gridEntry, res*res)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 4)
	}
	return &SpatialGrid{
		cellSize: 1 / float64(res),
		res:      res,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an individual to the grid at the given position.
func (g *SpatialGrid) Insert(index int, pos components.Position) {
	idx := g.cellIndex(pos)
	g.cells[idx] = append(g.cells[idx], gridEntry{index: index, pos: pos})
}

// Len returns the number of entries in the grid.
func (g *SpatialGrid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// QueryRadiusInto appends every entry within radius of pos (other than
// exclude) to dst and returns the updated slice. Reuse dst across calls to
// avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos components.Position, radius float64, exclude int) []Neighbor {
	radiusSq := radius * radius
	cellRadius := int(radius/g.cellSize) + 1

	visit := func(idx int) {
		for _, e := range g.cells[idx] {
			if e.index == exclude {
				continue
			}
			dx, dy := ToroidalDelta(pos, e.pos)
			distSq := dx*dx + dy*dy
			if distSq <= radiusSq {
				dst = append(dst, Neighbor{Index: e.index, DX: dx, DY: dy, DistSq: distSq})
			}
		}
	}

	// Wrapped ranges would revisit cells; scan everything once instead
	if 2*cellRadius+1 >= g.res {
		for idx := range g.cells {
			visit(idx)
		}
		return dst
	}

	centerCol := g.clamp(int(pos.X / g.cellSize))
	centerRow := g.clamp(int(pos.Y / g.cellSize))
	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			// Toroidal wrap
			col := (centerCol + dc + g.res) % g.res
			row := (centerRow + dr + g.res) % g.res
			visit(row*g.res + col)
		}
	}
	return dst
}

// cellIndex returns the flat index for a position.
func (g *SpatialGrid) cellIndex(pos components.Position) int {
	return g.clamp(int(pos.Y/g.cellSize))*g.res + g.clamp(int(pos.X/g.cellSize))
}

func (g *SpatialGrid) clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v >= g.res {
		return g.res - 1
	}
	return v
}

// ToroidalDelta returns the shortest delta from a to b on the unit torus.
func ToroidalDelta(a, b components.Position) (dx, dy float64) {
	dx = b.X - a.X
	dy = b.Y - a.Y

	if dx > 0.5 {
		dx -= 1
	} else if dx < -0.5 {
		dx += 1
	}
	if dy > 0.5 {
		dy -= 1
	} else if dy < -0.5 {
		dy += 1
	}

	return dx, dy
}
