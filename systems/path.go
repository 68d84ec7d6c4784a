package systems

import (
	"math"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
)

// SimplifyPath removes waypoints that have line of sight past them.
// The first and last waypoints are always kept. cornerCutting must match the
// search that produced path.
func SimplifyPath(path []navigation.Vec2, grid *navigation.Grid, cornerCutting bool) []navigation.Vec2 {
	if len(path) <= 2 || grid == nil {
		return path
	}

	simplified := make([]navigation.Vec2, 0, len(path))
	simplified = append(simplified, path[0])

	anchor := path[0]
	for i := 1; i < len(path)-1; i++ {
		// Keep curr if we cannot reach next from the last kept waypoint
		if !HasLineOfSight(grid, anchor, path[i+1], cornerCutting) {
			simplified = append(simplified, path[i])
			anchor = path[i]
		}
	}

	simplified = append(simplified, path[len(path)-1])
	return simplified
}

// cornerEps is how close the next vertical and horizontal crossings must be
// for the segment to count as passing through a cell corner.
const cornerEps = 1e-9

// HasLineOfSight reports whether every cell the segment a-b enters is
// walkable. Cells are visited exactly (Amanatides-Woo). Where the segment
// passes through a cell corner it only touches the two side cells; without
// corner cutting both must be walkable, as for a diagonal search step.
func HasLineOfSight(grid *navigation.Grid, a, b navigation.Vec2, cornerCutting bool) bool {
	cs := grid.CellSize()
	o := grid.Origin()
	ax, ay := (a.X-o.X)/cs, (a.Y-o.Y)/cs
	bx, by := (b.X-o.X)/cs, (b.Y-o.Y)/cs

	cur := grid.Snap(a)
	end := grid.Snap(b)
	if !grid.IsWalkable(cur) {
		return false
	}

	dx, dy := bx-ax, by-ay
	stepX, tMaxX, tDeltaX := traversalAxis(ax, dx)
	stepY, tMaxY, tDeltaY := traversalAxis(ay, dy)

	// Every step moves one cell closer along some axis.
	for n := grid.Cols() + grid.Rows(); cur != end && n >= 0; n-- {
		if min(tMaxX, tMaxY) > 1 {
			break
		}
		switch {
		case math.Abs(tMaxX-tMaxY) <= cornerEps:
			if !cornerCutting {
				if !grid.IsWalkable(navigation.Coord{Col: cur.Col + stepX, Row: cur.Row}) ||
					!grid.IsWalkable(navigation.Coord{Col: cur.Col, Row: cur.Row + stepY}) {
					return false
				}
			}
			cur.Col += stepX
			cur.Row += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
		case tMaxX < tMaxY:
			cur.Col += stepX
			tMaxX += tDeltaX
		default:
			cur.Row += stepY
			tMaxY += tDeltaY
		}
		if !grid.IsWalkable(cur) {
			return false
		}
	}
	return grid.IsWalkable(end)
}

// traversalAxis returns the cell step along one axis, the segment parameter
// of the first cell boundary crossed, and the parameter distance between
// boundaries. u is in cell units.
func traversalAxis(u, d float64) (step int, tMax, tDelta float64) {
	switch {
	case d > 0:
		return 1, (math.Floor(u) + 1 - u) / d, 1 / d
	case d < 0:
		return -1, (u - math.Floor(u)) / -d, 1 / -d
	}
	return 0, math.Inf(1), math.Inf(1)
}

// IsPathValid checks if a cached path is still usable.
// A path is invalid if:
// - it is empty or exhausted
// - the goal has drifted more than drift from where it was planned
// - any remaining waypoint is no longer walkable
// - it is older than maxAge ticks (0 disables the age check)
func IsPathValid(cache *components.PathFollow, grid *navigation.Grid, goal navigation.Vec2, tick, maxAge int32, drift float64) bool {
	if cache == nil || !cache.Active || cache.Index >= len(cache.Waypoints) {
		return false
	}
	if maxAge > 0 && tick-cache.ValidTick > maxAge {
		return false
	}
	if goal.Dist(cache.Goal) > drift {
		return false
	}
	if grid == nil {
		return true
	}
	for _, wp := range cache.Remaining() {
		if !grid.IsWalkable(grid.Snap(wp)) {
			return false
		}
	}
	return true
}

// NextWaypoint returns the waypoint to head toward. It advances the path
// index when pos is within arrivalDist of the current waypoint. ok is false
// once the path is exhausted.
func NextWaypoint(cache *components.PathFollow, pos navigation.Vec2, arrivalDist float64) (wp navigation.Vec2, ok bool) {
	if cache == nil || cache.Index >= len(cache.Waypoints) {
		return pos, false
	}

	wp = cache.Waypoints[cache.Index]
	if wp.Dist(pos) < arrivalDist {
		cache.Index++
		if cache.Index >= len(cache.Waypoints) {
			return wp, false
		}
		wp = cache.Waypoints[cache.Index]
	}
	return wp, true
}

// Move steps pos toward target at speed for dt seconds without overshooting.
// It returns the distance covered and the velocity applied.
func Move(pos *components.Position, target navigation.Vec2, speed, dt float64) (moved float64, vel components.Velocity) {
	d := target.Sub(pos.Vec())
	dist := d.Len()
	if dist == 0 || speed <= 0 || dt <= 0 {
		return 0, components.Velocity{}
	}
	dir := d.Scale(1 / dist)
	step := speed * dt
	if step >= dist {
		step = dist
		pos.X, pos.Y = target.X, target.Y
	} else {
		pos.X += dir.X * step
		pos.Y += dir.Y * step
	}
	return step, components.Velocity{X: dir.X * step / dt, Y: dir.Y * step / dt}
}
