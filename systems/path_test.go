package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
)

var yard = navigation.Bounds{
	Center: navigation.Vec2{X: 5, Y: 5},
	Size:   navigation.Vec2{X: 10, Y: 10},
}

// wallQuery blocks column 5 except for a gap in the top row.
var wallQuery = navigation.ObstacleFunc(func(p navigation.Vec2, _ float64) bool {
	return math.Floor(p.X) == 5 && math.Floor(p.Y) <= 8
})

func v(x, y float64) navigation.Vec2 { return navigation.Vec2{X: x, Y: y} }

func TestSimplifyPathStraightLine(t *testing.T) {
	grid := navigation.BuildGrid(yard, 1, navigation.NoObstacles, 0.25)

	path := make([]navigation.Vec2, 10)
	for i := range path {
		path[i] = v(float64(i)+0.5, float64(i)+0.5)
	}

	got := SimplifyPath(path, grid, false)
	if len(got) != 2 {
		t.Fatalf("simplified to %d waypoints, want 2", len(got))
	}
	if got[0] != path[0] || got[1] != path[9] {
		t.Errorf("endpoints = %v, want %v and %v", got, path[0], path[9])
	}
}

func TestSimplifyPathKeepsCorners(t *testing.T) {
	pf := navigation.NewPathfinder(yard, wallQuery, navigation.WithProbeRadius(0.25))
	res, err := pf.RequestPath(v(0.5, 0.5), v(9.5, 0.5))
	if err != nil || !res.Found() {
		t.Fatalf("no path: %v %v", res.Status, err)
	}

	got := SimplifyPath(res.Path, pf.Grid(), true)
	if len(got) >= len(res.Path) {
		t.Errorf("simplified %d waypoints to %d", len(res.Path), len(got))
	}
	if got[0] != res.Path[0] || got[len(got)-1] != res.Path[len(res.Path)-1] {
		t.Error("endpoints not preserved")
	}
	for i := 1; i < len(got); i++ {
		if !HasLineOfSight(pf.Grid(), got[i-1], got[i], true) {
			t.Errorf("segment %v -> %v crosses the wall", got[i-1], got[i])
		}
	}
}

func TestSimplifyPathShortPaths(t *testing.T) {
	grid := navigation.BuildGrid(yard, 1, navigation.NoObstacles, 0.25)
	for _, path := range [][]navigation.Vec2{nil, {v(1, 1)}, {v(1, 1), v(2, 2)}} {
		if got := SimplifyPath(path, grid, true); len(got) != len(path) {
			t.Errorf("SimplifyPath(%v) = %v", path, got)
		}
	}
}

func TestHasLineOfSight(t *testing.T) {
	grid := navigation.BuildGrid(yard, 1, wallQuery, 0.25)

	tests := []struct {
		name string
		a, b navigation.Vec2
		want bool
	}{
		{"same point", v(2.5, 2.5), v(2.5, 2.5), true},
		{"open side", v(0.5, 0.5), v(4.5, 8.5), true},
		{"through wall", v(0.5, 0.5), v(9.5, 0.5), false},
		{"through gap", v(0.5, 9.5), v(9.5, 9.5), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasLineOfSight(grid, tc.a, tc.b, true); got != tc.want {
				t.Errorf("HasLineOfSight(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// blockedSet is an obstacle query over whole unit cells.
type blockedSet map[navigation.Coord]bool

func (b blockedSet) IsBlocked(p navigation.Vec2, _ float64) bool {
	return b[navigation.Coord{Col: int(math.Floor(p.X)), Row: int(math.Floor(p.Y))}]
}

func TestHasLineOfSightExactCells(t *testing.T) {
	bounds := navigation.Bounds{Center: v(6, 6), Size: v(12, 12)}
	grid := navigation.BuildGrid(bounds, 1, blockedSet{{Col: 1, Row: 0}: true, {Col: 4, Row: 4}: true}, 0.25)

	tests := []struct {
		name    string
		a, b    navigation.Vec2
		corners bool
		want    bool
	}{
		// enters cell (1,0) just below y=1
		{"clips blocked cell", v(0.5, 0.5), v(7.5, 5.5), true, false},
		{"clips interior cell", v(0.5, 0.5), v(5.5, 4.5), true, false},
		{"passes above", v(0.5, 1.5), v(3.5, 5.5), true, true},
		{"corner next to blocked cell", v(0.5, 0.5), v(1.5, 1.5), false, false},
		{"corner with cutting allowed", v(0.5, 0.5), v(1.5, 1.5), true, true},
		{"corner between open cells", v(1.5, 1.5), v(2.5, 2.5), false, true},
		{"reverse direction", v(7.5, 5.5), v(0.5, 0.5), true, false},
		{"vertical", v(4.5, 0.5), v(4.5, 8.5), true, false},
		{"blocked start", v(4.5, 4.5), v(8.5, 4.5), true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasLineOfSight(grid, tc.a, tc.b, tc.corners); got != tc.want {
				t.Errorf("HasLineOfSight(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.corners, got, tc.want)
			}
		})
	}
}

// segmentCells returns every cell whose interior the segment a-b enters,
// found by dense sampling. Points on a cell boundary are skipped.
func segmentCells(a, b navigation.Vec2, samples int) map[navigation.Coord]bool {
	cells := make(map[navigation.Coord]bool)
	for i := 0; i <= samples; i++ {
		p := a.Add(b.Sub(a).Scale(float64(i) / float64(samples)))
		fx, fy := p.X-math.Floor(p.X), p.Y-math.Floor(p.Y)
		if fx < 1e-9 || fy < 1e-9 || fx > 1-1e-9 || fy > 1-1e-9 {
			continue
		}
		cells[navigation.Coord{Col: int(math.Floor(p.X)), Row: int(math.Floor(p.Y))}] = true
	}
	return cells
}

func cellCenter(c navigation.Coord) navigation.Vec2 {
	return v(float64(c.Col)+0.5, float64(c.Row)+0.5)
}

func TestSimplifiedPathsAvoidBlockedCells(t *testing.T) {
	bounds := navigation.Bounds{Center: v(6, 6), Size: v(12, 12)}
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		blocked := blockedSet{}
		for len(blocked) < 25 {
			blocked[navigation.Coord{Col: rng.Intn(12), Row: rng.Intn(12)}] = true
		}
		var start, goal navigation.Coord
		for {
			start = navigation.Coord{Col: rng.Intn(12), Row: rng.Intn(12)}
			goal = navigation.Coord{Col: rng.Intn(12), Row: rng.Intn(12)}
			if !blocked[start] && !blocked[goal] && start != goal {
				break
			}
		}

		for _, corners := range []bool{false, true} {
			pf := navigation.NewPathfinder(bounds, blocked,
				navigation.WithProbeRadius(0.25),
				navigation.WithCornerCutting(corners),
				navigation.WithHeuristic(navigation.Octile),
			)
			res, err := pf.RequestPath(cellCenter(start), cellCenter(goal))
			if err != nil {
				t.Fatal(err)
			}
			if !res.Found() {
				continue
			}
			got := SimplifyPath(res.Path, pf.Grid(), corners)
			for i := 1; i < len(got); i++ {
				for c := range segmentCells(got[i-1], got[i], 4000) {
					if blocked[c] {
						t.Fatalf("trial %d corners=%v: segment %v -> %v crosses blocked cell %v",
							trial, corners, got[i-1], got[i], c)
					}
				}
			}
		}
	}
}

// TestPathCacheValidity verifies path cache validation logic.
func TestPathCacheValidity(t *testing.T) {
	grid := navigation.BuildGrid(yard, 1, wallQuery, 0.25)
	goal := v(9.5, 9.5)

	valid := func() *components.PathFollow {
		return &components.PathFollow{
			Waypoints: []navigation.Vec2{v(0.5, 0.5), v(4.5, 9.5), goal},
			Goal:      goal,
			ValidTick: 100,
			Active:    true,
		}
	}

	tests := []struct {
		name   string
		cache  func() *components.PathFollow
		goal   navigation.Vec2
		tick   int32
		maxAge int32
		want   bool
	}{
		{"fresh", valid, goal, 150, 100, true},
		{"nil", func() *components.PathFollow { return nil }, goal, 150, 100, false},
		{"inactive", func() *components.PathFollow {
			c := valid()
			c.Active = false
			return c
		}, goal, 150, 100, false},
		{"exhausted", func() *components.PathFollow {
			c := valid()
			c.Index = 3
			return c
		}, goal, 150, 100, false},
		{"too old", valid, goal, 201, 100, false},
		{"age check disabled", valid, goal, 10000, 0, true},
		{"goal within drift", valid, v(9.5, 8.5), 150, 100, true},
		{"goal drifted", valid, v(6.5, 9.5), 150, 100, false},
		{"waypoint blocked", func() *components.PathFollow {
			c := valid()
			c.Waypoints[1] = v(5.5, 4.5)
			return c
		}, goal, 150, 100, false},
		{"blocked waypoint already passed", func() *components.PathFollow {
			c := valid()
			c.Waypoints[0] = v(5.5, 4.5)
			c.Index = 1
			return c
		}, goal, 150, 100, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPathValid(tc.cache(), grid, tc.goal, tc.tick, tc.maxAge, 1.5); got != tc.want {
				t.Errorf("IsPathValid = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextWaypoint(t *testing.T) {
	cache := &components.PathFollow{
		Waypoints: []navigation.Vec2{v(0, 0), v(3, 0), v(3, 4)},
		Active:    true,
	}

	// Standing on the first waypoint advances to the second
	wp, ok := NextWaypoint(cache, v(0, 0), 0.5)
	if !ok || wp != v(3, 0) || cache.Index != 1 {
		t.Fatalf("got %v %v index %d, want (3,0) true index 1", wp, ok, cache.Index)
	}

	// Far from the waypoint: no advance
	wp, ok = NextWaypoint(cache, v(1, 0), 0.5)
	if !ok || wp != v(3, 0) || cache.Index != 1 {
		t.Errorf("got %v %v index %d, want (3,0) true index 1", wp, ok, cache.Index)
	}

	wp, ok = NextWaypoint(cache, v(2.8, 0), 0.5)
	if !ok || wp != v(3, 4) {
		t.Errorf("got %v %v, want (3,4) true", wp, ok)
	}

	// Reaching the last waypoint exhausts the path
	if _, ok = NextWaypoint(cache, v(3, 3.9), 0.5); ok {
		t.Error("path should be exhausted")
	}
	if len(cache.Remaining()) != 0 {
		t.Errorf("remaining = %v", cache.Remaining())
	}

	if _, ok := NextWaypoint(nil, v(0, 0), 0.5); ok {
		t.Error("nil cache should report no waypoint")
	}
}

func TestMove(t *testing.T) {
	pos := &components.Position{X: 0, Y: 0}

	moved, vel := Move(pos, v(3, 4), 2, 0.5)
	if moved != 1 {
		t.Errorf("moved = %v, want 1", moved)
	}
	if math.Abs(pos.X-0.6) > 1e-9 || math.Abs(pos.Y-0.8) > 1e-9 {
		t.Errorf("pos = %+v, want (0.6, 0.8)", *pos)
	}
	if math.Abs(vel.X-1.2) > 1e-9 || math.Abs(vel.Y-1.6) > 1e-9 {
		t.Errorf("vel = %+v, want (1.2, 1.6)", vel)
	}

	// Never overshoots the target
	moved, _ = Move(pos, v(3, 4), 100, 1)
	if math.Abs(moved-4) > 1e-9 || pos.Vec().Dist(v(3, 4)) > 1e-9 {
		t.Errorf("moved %v to %+v, want to land on (3,4)", moved, *pos)
	}

	if moved, vel = Move(pos, v(3, 4), 2, 0.5); moved != 0 || vel != (components.Velocity{}) {
		t.Errorf("at target: moved %v vel %+v", moved, vel)
	}
}
