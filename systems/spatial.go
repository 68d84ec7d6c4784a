// Package systems provides ECS systems for the kennel.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // delta from query origin
	DistSq float64
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over
// the yard. Positions outside the yard are clamped into the edge cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	origin   navigation.Vec2
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering bounds.
func NewSpatialGrid(bounds navigation.Bounds, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(bounds.Size.X/cellSize) + 1
	rows := int(bounds.Size.Y/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		origin:   bounds.Min(),
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, p navigation.Vec2) {
	col, row := g.cellOf(p)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius of p and appends them to dst
// (up to MaxQueryResults).
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p navigation.Vec2, radius float64, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellOf(p)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx, dy := pos.X-p.X, pos.Y-p.Y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// Nearest returns the closest entity within radius of p.
func (g *SpatialGrid) Nearest(p navigation.Vec2, radius float64, posMap *ecs.Map[components.Position]) (ecs.Entity, bool) {
	var (
		best   ecs.Entity
		bestSq = math.Inf(1)
		found  bool
	)
	for _, n := range g.QueryRadiusInto(nil, p, radius, ecs.Entity{}, posMap) {
		if n.DistSq < bestSq {
			best, bestSq, found = n.E, n.DistSq, true
		}
	}
	return best, found
}

// cellOf returns the clamped column and row for a world position.
func (g *SpatialGrid) cellOf(p navigation.Vec2) (col, row int) {
	col = int(math.Floor((p.X - g.origin.X) / g.cellSize))
	row = int(math.Floor((p.Y - g.origin.Y) / g.cellSize))

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
