// Package navigation discretises a bounded world area into a traversability
// grid and runs A* over it.
//
// The grid is rebuilt from an injected ObstacleQuery on every path request so
// that moved obstacles are always reflected. A Pathfinder serves one search at
// a time; callers that need concurrent searches use separate instances.
package navigation

import "math"

// Vec2 is a world-space point.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Coord is an integer cell coordinate within one grid.
type Coord struct {
	Col, Row int
}

// Bounds is the host area the grid covers, given by its center and size.
type Bounds struct {
	Center Vec2
	Size   Vec2
}

// Min returns the bottom-left corner.
func (b Bounds) Min() Vec2 { return b.Center.Sub(b.Size.Scale(0.5)) }

// Max returns the top-right corner.
func (b Bounds) Max() Vec2 { return b.Center.Add(b.Size.Scale(0.5)) }

// Contains reports whether p lies inside the bounds (edges inclusive).
func (b Bounds) Contains(p Vec2) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
