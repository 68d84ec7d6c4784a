// Package components defines ECS components for the kennel.
package components

import "github.com/pthm-cable/kennel/navigation"

// Activity is what a dog is doing right now.
type Activity uint8

const (
	ActivityIdle    Activity = iota // waiting out its idle timer
	ActivityWalking                 // following a path
)

// String returns the display name for an Activity.
func (a Activity) String() string {
	switch a {
	case ActivityIdle:
		return "idle"
	case ActivityWalking:
		return "walking"
	}
	return "unknown"
}

// Dog holds per-dog state.
type Dog struct {
	ID        uint32
	Name      string
	Breed     uint8 // index into config breeds
	Speed     float64
	Activity  Activity
	IdleTimer float64 // seconds until the next goal pick

	// Lifetime counters
	Requests int
	Failures int
	Distance float64
}

// PathFollow is a dog's cached path. Waypoints are consumed from Index
// onward; the path is stale once the goal drifts or the grid changes under it.
type PathFollow struct {
	Waypoints []navigation.Vec2
	Index     int
	Goal      navigation.Vec2
	ValidTick int32 // tick the path was computed
	Active    bool
}

// Remaining returns the waypoints not yet reached.
func (p *PathFollow) Remaining() []navigation.Vec2 {
	if p.Index >= len(p.Waypoints) {
		return nil
	}
	return p.Waypoints[p.Index:]
}

// Clear drops the cached path.
func (p *PathFollow) Clear() {
	p.Waypoints = p.Waypoints[:0]
	p.Index = 0
	p.Active = false
}
