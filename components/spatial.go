package components

import "github.com/pthm-cable/kennel/navigation"

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a navigation point.
func (p Position) Vec() navigation.Vec2 { return navigation.Vec2{X: p.X, Y: p.Y} }

// Velocity is the displacement applied on the last tick, in units per second.
type Velocity struct {
	X, Y float64
}
