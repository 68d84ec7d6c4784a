package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/components"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/renderer"
	"github.com/pthm-cable/kennel/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.uiOverlays.Toggle(desc.ID)
		}
	}
}

// viewBreed is the breed whose grid the navigation overlays show: the
// selected dog's, else the first breed.
func (g *Game) viewBreed() uint8 {
	if _, dog, _, ok := g.selectedDog(); ok {
		return dog.Breed
	}
	return 0
}

// drawGroundOverlays renders the grid overlays that sit under obstacles and dogs.
func (g *Game) drawGroundOverlays() {
	var grid *navigation.Grid
	gridFor := func() *navigation.Grid {
		if grid == nil {
			grid = g.planner.Grid(g.viewBreed())
		}
		return grid
	}

	if g.uiOverlays.IsEnabled(ui.OverlayWalkability) {
		g.yard.DrawWalkability(gridFor())
	}
	if g.uiOverlays.IsEnabled(ui.OverlaySearch) {
		g.refreshTrace()
		g.yard.DrawSearch(gridFor(), g.trace)
	}
	if g.uiOverlays.IsEnabled(ui.OverlayGridLines) {
		g.yard.DrawGridLines(gridFor())
	}
}

// drawObstacles draws the layout, dimming layers that do not block. With a
// dog selected, its breed's layers decide.
func (g *Game) drawObstacles() {
	if g.space == nil || !g.uiOverlays.IsEnabled(ui.OverlayObstacles) {
		return
	}
	active := g.space.Active
	if _, dog, _, ok := g.selectedDog(); ok {
		if view, err := g.space.View(g.planner.Breed(dog.Breed).ObstacleLayers); err == nil {
			active = view.Active
		}
	}
	g.yard.DrawObstacles(g.space.Obstacles(), active)
}

// drawPathOverlays renders remaining paths and goals of walking dogs.
func (g *Game) drawPathOverlays() {
	showPaths := g.uiOverlays.IsEnabled(ui.OverlayPaths)
	showGoals := g.uiOverlays.IsEnabled(ui.OverlayGoals)
	if !showPaths && !showGoals {
		return
	}

	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, dog, follow := query.Get()
		if dog.Activity != components.ActivityWalking {
			continue
		}
		color := renderer.BreedColor(int(dog.Breed))
		if showPaths {
			g.yard.DrawPath(pos.Vec(), follow.Remaining(), color)
		}
		if showGoals {
			g.yard.DrawGoal(follow.Goal, color)
		}
	}
}

// drawNames labels every dog.
func (g *Game) drawNames() {
	if !g.uiOverlays.IsEnabled(ui.OverlayNames) {
		return
	}
	query := g.dogFilter.Query()
	for query.Next() {
		pos, _, dog, _ := query.Get()
		g.yard.DrawLabel(pos.Vec(), dog.Name)
	}
}
