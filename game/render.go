package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/renderer"
	"github.com/pthm-cable/kennel/ui"
)

var clearColor = rl.Color{R: 24, G: 28, B: 22, A: 255}

const controlsLegend = "SPACE pause | < > speed | K heuristic | C corners | shift+click rally | R/right click clear | TAB controls | F perf"

// Draw renders the yard and the UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(clearColor)

	g.yard.DrawBackground(g.cfg.Derived.Bounds)
	g.drawGroundOverlays()
	g.drawObstacles()
	g.drawPathOverlays()
	g.drawDogs()
	g.drawNames()
	if rally, ok := g.wander.Rally(); ok {
		g.yard.DrawRally(rally)
	}

	g.drawUI()

	rl.EndDrawing()
}

// drawDogs draws every dog as a disc sized to its breed's body.
func (g *Game) drawDogs() {
	query := g.dogFilter.Query()
	for query.Next() {
		pos, vel, dog, _ := query.Get()
		breed := g.planner.Breed(dog.Breed)
		selected := g.hasSelection && query.Entity() == g.selected
		g.yard.DrawDog(
			pos.Vec(),
			navigation.Vec2{X: vel.X, Y: vel.Y},
			breed.ProbeSize/2,
			renderer.BreedColor(int(dog.Breed)),
			selected,
		)
	}
}

// drawUI renders the HUD and panels, applying any control panel clicks.
func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:         "Kennel",
		Dogs:          g.Dogs(),
		Walking:       g.walking,
		Requests:      g.requests,
		Failures:      g.failures,
		Tick:          g.tick,
		Speed:         g.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
		Heuristic:     g.heuristic,
		CornerCutting: g.cornerCutting,
	}
	if rally, ok := g.wander.Rally(); ok {
		data.Rally, data.RallyX, data.RallyY = true, rally.X, rally.Y
	}
	if g.hub != nil {
		data.Subscribers = g.hub.Clients()
	}
	g.uiHUD.Draw(data)

	actions := g.uiControls.Draw(g.uiOverlays, g.stepsPerUpdate, g.heuristic, g.cornerCutting)
	g.stepsPerUpdate = min(max(actions.Speed, 1), ui.MaxSpeed)
	if actions.CycleHeuristic {
		g.cycleHeuristic()
	}
	if actions.ToggleCorner {
		g.toggleCornerCutting()
	}
	if actions.ClearRally {
		g.ClearRally()
	}

	if view, ok := g.dogView(); ok {
		g.uiInspector.Draw(view)
	}
	if g.showPerf {
		g.uiPerfPanel.Draw(g.perfCollector.Stats())
	}

	g.uiHUD.DrawControls(int32(g.screenWidth), int32(g.screenHeight), controlsLegend)
}
