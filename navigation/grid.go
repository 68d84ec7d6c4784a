package navigation

import "math"

// Cell is one discretised unit of the grid. G, H and the parent link are
// scratch state for the most recent search and are reset on every rebuild.
type Cell struct {
	Pos      Vec2 // world-space center
	Coord    Coord
	Walkable bool
	G        float64
	H        float64

	parent    int
	heapIndex int
}

// F is the A* priority key.
func (c *Cell) F() float64 { return c.G + c.H }

// HeapIndex reports the cell's slot in the open set, or -1.
func (c *Cell) HeapIndex() int { return c.heapIndex }

// SetHeapIndex is called by the open set on every move.
func (c *Cell) SetHeapIndex(i int) { c.heapIndex = i }

func (c *Cell) reset() {
	c.G = 0
	c.H = 0
	c.parent = -1
	c.heapIndex = -1
}

// Grid is a cols x rows array of cells anchored at its bottom-left corner.
// Dimensions never change for the lifetime of one Grid.
type Grid struct {
	cols, rows int
	cellSize   float64
	origin     Vec2
	cells      []Cell
	dirty      bool
}

// BuildGrid discretises bounds into cells of cellSize and marks each cell
// walkable iff query reports nothing within probeRadius of its center.
func BuildGrid(bounds Bounds, cellSize float64, query ObstacleQuery, probeRadius float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	if query == nil {
		query = NoObstacles
	}
	cols, rows := GridSize(bounds.Size, cellSize)

	g := &Grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		origin:   bounds.Min(),
		cells:    make([]Cell, cols*rows),
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := Coord{Col: col, Row: row}
			pos := g.WorldPos(c)
			cell := &g.cells[g.index(c)]
			cell.Pos = pos
			cell.Coord = c
			cell.Walkable = !query.IsBlocked(pos, probeRadius)
			cell.reset()
		}
	}
	return g
}

// GridSize returns the cell counts BuildGrid uses for an area of size. Each
// axis is rounded to the nearest whole cell, with at least one cell.
func GridSize(size Vec2, cellSize float64) (cols, rows int) {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols = max(1, int(math.Round(size.X/cellSize)))
	rows = max(1, int(math.Round(size.Y/cellSize)))
	return cols, rows
}

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Len returns the total cell count.
func (g *Grid) Len() int { return len(g.cells) }

// CellSize returns world units per cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin returns the world-space bottom-left corner.
func (g *Grid) Origin() Vec2 { return g.origin }

// Extent returns the world-space size actually covered by the cells.
func (g *Grid) Extent() Vec2 {
	return Vec2{X: float64(g.cols) * g.cellSize, Y: float64(g.rows) * g.cellSize}
}

// InBounds reports whether c addresses a cell of this grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < g.cols && c.Row < g.rows
}

func (g *Grid) index(c Coord) int {
	return c.Row*g.cols + c.Col
}

// Cell returns the cell at c. Out-of-range coordinates report false.
func (g *Grid) Cell(c Coord) (*Cell, bool) {
	if !g.InBounds(c) {
		return nil, false
	}
	return &g.cells[g.index(c)], true
}

// IsWalkable reports whether c is in bounds and traversable.
func (g *Grid) IsWalkable(c Coord) bool {
	cell, ok := g.Cell(c)
	return ok && cell.Walkable
}

// Cells exposes the backing storage in row-major order. Callers must treat
// it as read-only.
func (g *Grid) Cells() []Cell { return g.cells }

// Parent returns the predecessor of c on the most recent search.
func (g *Grid) Parent(c *Cell) (*Cell, bool) {
	if c == nil || c.parent < 0 {
		return nil, false
	}
	return &g.cells[c.parent], true
}

// WorldPos returns the center of cell c. It does not check bounds.
func (g *Grid) WorldPos(c Coord) Vec2 {
	return Vec2{
		X: g.origin.X + (float64(c.Col)+0.5)*g.cellSize,
		Y: g.origin.Y + (float64(c.Row)+0.5)*g.cellSize,
	}
}

// Snap maps an arbitrary world point to the cell containing it. Points
// outside the grid are clamped to the nearest edge cell.
func (g *Grid) Snap(p Vec2) Coord {
	ext := g.Extent()
	px := clamp((p.X-g.origin.X)/ext.X, 0, 1)
	py := clamp((p.Y-g.origin.Y)/ext.Y, 0, 1)
	return Coord{
		Col: clampInt(int(math.Floor(px*float64(g.cols))), 0, g.cols-1),
		Row: clampInt(int(math.Floor(py*float64(g.rows))), 0, g.rows-1),
	}
}

func (g *Grid) resetSearch() {
	for i := range g.cells {
		g.cells[i].reset()
	}
	g.dirty = false
}
