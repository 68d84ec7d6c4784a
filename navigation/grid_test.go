package navigation

import (
	"math"
	"testing"
)

// blockCells reports a block when p falls inside any listed cell of a grid
// with unit cells anchored at the origin. The probe radius is ignored so each
// test controls exactly which cells are blocked.
func blockCells(cells ...Coord) ObstacleQuery {
	set := make(map[Coord]bool, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	return ObstacleFunc(func(p Vec2, _ float64) bool {
		return set[Coord{Col: int(math.Floor(p.X)), Row: int(math.Floor(p.Y))}]
	})
}

func unitBounds(cols, rows int) Bounds {
	return Bounds{
		Center: Vec2{X: float64(cols) / 2, Y: float64(rows) / 2},
		Size:   Vec2{X: float64(cols), Y: float64(rows)},
	}
}

func TestBuildGridDimensions(t *testing.T) {
	bounds := Bounds{Center: Vec2{X: 2, Y: -1}, Size: Vec2{X: 7, Y: 5}}
	g := BuildGrid(bounds, 0.5, nil, 0.5)

	if g.Cols() != 14 || g.Rows() != 10 {
		t.Fatalf("grid = %dx%d, want 14x10", g.Cols(), g.Rows())
	}
	if g.Len() != 140 {
		t.Errorf("Len = %d, want 140", g.Len())
	}
	if o := g.Origin(); o.X != -1.5 || o.Y != -3.5 {
		t.Errorf("origin = %v, want (-1.5,-3.5)", o)
	}
	first, _ := g.Cell(Coord{})
	if first.Pos.X != -1.25 || first.Pos.Y != -3.25 {
		t.Errorf("first cell center = %v", first.Pos)
	}
}

func TestBuildGridRoundsExtent(t *testing.T) {
	g := BuildGrid(Bounds{Size: Vec2{X: 10.4, Y: 0.2}}, 1, nil, 1)
	if g.Cols() != 10 {
		t.Errorf("cols = %d, want 10", g.Cols())
	}
	if g.Rows() != 1 {
		t.Errorf("rows = %d, want minimum of 1", g.Rows())
	}
}

func TestBuildGridMarksBlockedCells(t *testing.T) {
	blocked := []Coord{{Col: 1, Row: 1}, {Col: 3, Row: 0}}
	g := BuildGrid(unitBounds(4, 3), 1, blockCells(blocked...), 1)

	for _, cell := range g.Cells() {
		want := true
		for _, b := range blocked {
			if cell.Coord == b {
				want = false
			}
		}
		if cell.Walkable != want {
			t.Errorf("cell %v walkable = %v, want %v", cell.Coord, cell.Walkable, want)
		}
		if cell.G != 0 || cell.H != 0 || cell.HeapIndex() != -1 {
			t.Errorf("cell %v not reset", cell.Coord)
		}
		if _, ok := g.Parent(&cell); ok {
			t.Errorf("cell %v has a parent after build", cell.Coord)
		}
	}
}

func TestBuildGridPassesProbeRadius(t *testing.T) {
	var seen []float64
	q := ObstacleFunc(func(_ Vec2, r float64) bool {
		seen = append(seen, r)
		return false
	})
	BuildGrid(unitBounds(2, 2), 1, q, 0.75)

	if len(seen) != 4 {
		t.Fatalf("query called %d times, want 4", len(seen))
	}
	for _, r := range seen {
		if r != 0.75 {
			t.Errorf("probe radius = %f, want 0.75", r)
		}
	}
}

func TestSnapCellCenterIsIdempotent(t *testing.T) {
	bounds := Bounds{Center: Vec2{X: -3, Y: 12}, Size: Vec2{X: 9, Y: 6}}
	g := BuildGrid(bounds, 0.75, nil, 0.75)

	for _, cell := range g.Cells() {
		if got := g.Snap(cell.Pos); got != cell.Coord {
			t.Fatalf("Snap(center of %v) = %v", cell.Coord, got)
		}
	}
}

func TestSnapClampsOutOfBounds(t *testing.T) {
	g := BuildGrid(unitBounds(10, 10), 1, nil, 1)

	tests := []struct {
		name string
		p    Vec2
		want Coord
	}{
		{"far left below", Vec2{X: -50, Y: -3}, Coord{Col: 0, Row: 0}},
		{"far right above", Vec2{X: 1e6, Y: 99}, Coord{Col: 9, Row: 9}},
		{"right edge exactly", Vec2{X: 10, Y: 4.2}, Coord{Col: 9, Row: 4}},
		{"inside", Vec2{X: 3.99, Y: 7.01}, Coord{Col: 3, Row: 7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.Snap(tc.p); got != tc.want {
				t.Errorf("Snap(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestCellOutOfRangeRejected(t *testing.T) {
	g := BuildGrid(unitBounds(3, 3), 1, nil, 1)
	for _, c := range []Coord{{Col: -1}, {Row: 3}, {Col: 3, Row: 0}} {
		if _, ok := g.Cell(c); ok {
			t.Errorf("Cell(%v) should be rejected", c)
		}
		if g.IsWalkable(c) {
			t.Errorf("IsWalkable(%v) should be false", c)
		}
	}
}
