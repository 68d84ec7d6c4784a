package game

import (
	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/renderer"
	"github.com/pthm-cable/kennel/ui"
)

// selectedDog returns the selected dog's components, or ok=false when
// nothing is selected.
func (g *Game) selectedDog() (pos *components.Position, dog *components.Dog, follow *components.PathFollow, ok bool) {
	if !g.hasSelection || !g.world.Alive(g.selected) {
		return nil, nil, nil, false
	}
	return g.posMap.Get(g.selected), g.dogMap.Get(g.selected), g.followMap.Get(g.selected), true
}

// dogView copies the selected dog into the inspector's view model.
func (g *Game) dogView() (*ui.DogView, bool) {
	pos, dog, follow, ok := g.selectedDog()
	if !ok {
		return nil, false
	}
	v := &ui.DogView{
		Name:       dog.Name,
		Breed:      g.planner.Breed(dog.Breed).Name,
		BreedColor: renderer.BreedColor(int(dog.Breed)),
		Activity:   dog.Activity.String(),
		X:          pos.X,
		Y:          pos.Y,
		Speed:      dog.Speed,
		IdleTimer:  max(dog.IdleTimer, 0),
		Requests:   dog.Requests,
		Failures:   dog.Failures,
		Distance:   dog.Distance,
	}
	if dog.Activity == components.ActivityWalking {
		v.Walking = true
		v.GoalX, v.GoalY = follow.Goal.X, follow.Goal.Y
		v.Waypoints = len(follow.Waypoints)
		v.Remaining = len(follow.Remaining())
		v.PathAge = g.tick - follow.ValidTick
	}
	return v, true
}

// refreshTrace reruns the selected dog's current search with tracing on so
// the search overlay can show which cells A* expanded. It only reruns when
// the selection or the dog's path changes.
func (g *Game) refreshTrace() {
	pos, dog, follow, ok := g.selectedDog()
	if !ok || dog.Activity != components.ActivityWalking {
		g.trace = g.trace[:0]
		return
	}
	if len(g.trace) > 0 && g.traceDog == g.selected && g.traceValid == follow.ValidTick {
		return
	}

	finder := g.planner.Finder(dog.Breed)
	if finder == nil || g.planner.Grid(dog.Breed) == nil {
		return
	}
	tracing := finder.Options().Trace
	finder.SetTrace(true)
	res, err := finder.FindPath(pos.Vec(), follow.Goal)
	finder.SetTrace(tracing)
	if err != nil {
		g.logger.Debug("trace search failed", "dog", dog.Name, "error", err)
	}

	g.trace = append(g.trace[:0], res.Expanded...)
	g.traceDog = g.selected
	g.traceValid = follow.ValidTick
}
