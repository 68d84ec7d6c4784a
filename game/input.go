package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < ui.MaxSpeed {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.uiControls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		g.showPerf = !g.showPerf
	}

	// Navigation settings
	if rl.IsKeyPressed(rl.KeyK) {
		g.cycleHeuristic()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.toggleCornerCutting()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.ClearRally()
	}

	g.handleOverlayKeys()
	g.handleCameraInput()
	g.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
	if g.uiInspector != nil {
		g.uiInspector.SetPosition(int32(w)-250, 10)
	}
	if g.uiPerfPanel != nil {
		g.uiPerfPanel.SetPosition(int32(w)-250, 330)
	}
}

// cycleHeuristic switches every breed to the next heuristic by name.
func (g *Game) cycleHeuristic() {
	names := navigation.HeuristicNames()
	next := names[0]
	for i, name := range names {
		if name == g.heuristic {
			next = names[(i+1)%len(names)]
			break
		}
	}
	h, err := navigation.HeuristicByName(next)
	if err != nil {
		g.logger.Warn("unknown heuristic", "name", next, "error", err)
		return
	}
	g.planner.SetHeuristic(h)
	g.heuristic = next
	g.logger.Info("heuristic changed", "heuristic", next, "tick", g.tick)
}

// toggleCornerCutting flips the diagonal corner rule for every breed.
func (g *Game) toggleCornerCutting() {
	g.cornerCutting = !g.cornerCutting
	g.planner.SetCornerCutting(g.cornerCutting)
	g.logger.Info("corner cutting changed", "allowed", g.cornerCutting, "tick", g.tick)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		g.camera.ZoomBy(1.0 + wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handleMouse selects dogs and places the rally point.
// Left click picks the nearest dog, shift+left click sets the rally and
// right click clears it.
func (g *Game) handleMouse() {
	if g.camera == nil {
		return
	}
	mouse := rl.GetMousePosition()
	if g.uiControls.Contains(mouse.X, mouse.Y) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)
	p := navigation.Vec2{X: wx, Y: wy}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			if g.cfg.Derived.Bounds.Contains(p) {
				g.SetRally(p)
			}
			return
		}
		if e, ok := g.spatialGrid.Nearest(p, selectRadius, g.posMap); ok {
			g.selected = e
			g.hasSelection = true
		} else {
			g.hasSelection = false
		}
		g.trace = g.trace[:0]
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.ClearRally()
	}
}
