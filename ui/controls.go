package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxSpeed is the highest steps-per-update the speed slider offers.
const MaxSpeed = 10

// ControlActions reports what the user clicked in the controls panel this frame.
type ControlActions struct {
	Speed          int // steps per update after the slider
	CycleHeuristic bool
	ToggleCorner   bool
	ClearRally     bool
}

// ControlsPanel renders the left-side controls panel with overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   float32 // as of the last Draw
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not also handled by the yard.
func (c *ControlsPanel) Contains(sx, sy float32) bool {
	if !c.visible {
		return false
	}
	rect := rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: c.height}
	return rl.CheckCollisionPointRec(rl.Vector2{X: sx, Y: sy}, rect)
}

func (c *ControlsPanel) panelHeight(overlays *OverlayRegistry) float32 {
	lineHeight := c.renderer.Theme.LineHeight
	rows := int32(7) // title, speed, two button rows, gaps
	for _, cat := range overlays.Categories() {
		rows += int32(len(overlays.ByCategory(cat))) + 1
	}
	return float32(rows*(lineHeight+4) + c.renderer.Theme.Padding*2)
}

// Draw renders the controls panel and returns the actions taken.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, speed int, heuristic string, cornerCutting bool) ControlActions {
	actions := ControlActions{Speed: speed}
	if !c.visible {
		return actions
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	c.height = c.panelHeight(overlays)
	r.DrawPanel(c.x, c.y, c.width, int32(c.height))

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight + 6)

	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x + 50, Y: y, Width: inner - 90, Height: 16},
		"Speed", fmt.Sprintf("%dx", speed),
		float32(speed), 1, MaxSpeed,
	)
	actions.Speed = int(newSpeed + 0.5)
	y += float32(lineHeight + 8)

	half := (inner - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 22}, heuristic) {
		actions.CycleHeuristic = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: y, Width: half, Height: 22}, toggleText(cornerCutting, "Corners: on", "Corners: off")) {
		actions.ToggleCorner = true
	}
	y += 28
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: 22}, "Clear rally") {
		actions.ClearRally = true
	}
	y += 32

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(lineHeight + 2)

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			label := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner, Height: float32(lineHeight + 2)}, toggleText(enabled, "* "+label, label)) {
				overlays.Toggle(desc.ID)
			}
			y += float32(lineHeight + 4)
		}
		y += 4
	}

	return actions
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "yard":
		return "Yard"
	case "navigation":
		return "Navigation"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
