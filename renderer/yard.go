// Package renderer draws the kennel yard with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/kennel/camera"
	"github.com/pthm-cable/kennel/navigation"
	"github.com/pthm-cable/kennel/obstacles"
)

var (
	grassColor   = rl.Color{R: 62, G: 96, B: 48, A: 255}
	blockedColor = rl.Color{R: 150, G: 40, B: 40, A: 90}
	lineColor    = rl.Color{R: 0, G: 0, B: 0, A: 40}
	rallyColor   = rl.Color{R: 255, G: 150, B: 40, A: 255}
)

// layerColors covers the usual yard layers; anything else gets a palette color.
var layerColors = map[string]rl.Color{
	"fence":    {R: 150, G: 110, B: 70, A: 255},
	"building": {R: 120, G: 120, B: 130, A: 255},
	"garden":   {R: 200, G: 90, B: 150, A: 255},
	"water":    {R: 60, G: 120, B: 200, A: 255},
}

var palette = []rl.Color{
	{R: 240, G: 200, B: 90, A: 255},
	{R: 230, G: 120, B: 80, A: 255},
	{R: 120, G: 200, B: 230, A: 255},
	{R: 200, G: 150, B: 230, A: 255},
	{R: 250, G: 250, B: 250, A: 255},
	{R: 160, G: 230, B: 120, A: 255},
}

// LayerColor returns the fill color for an obstacle layer.
func LayerColor(layer string) rl.Color {
	if c, ok := layerColors[layer]; ok {
		return c
	}
	h := 0
	for _, r := range layer {
		h = h*31 + int(r)
	}
	return palette[(h&0x7fffffff)%len(palette)]
}

// BreedColor returns the body color for breed index i.
func BreedColor(i int) rl.Color {
	return palette[i%len(palette)]
}

// YardRenderer draws the yard in world coordinates through a camera.
type YardRenderer struct {
	cam *camera.Camera
}

// NewYardRenderer creates a renderer bound to cam.
func NewYardRenderer(cam *camera.Camera) *YardRenderer {
	return &YardRenderer{cam: cam}
}

// rect converts a world-space box given by its center and size to screen space.
func (r *YardRenderer) rect(cx, cy, w, h float64) rl.Rectangle {
	x0, y0 := r.cam.WorldToScreen(cx-w/2, cy+h/2) // top-left on screen
	s := r.cam.PixelsPerUnit()
	return rl.Rectangle{X: x0, Y: y0, Width: float32(w) * s, Height: float32(h) * s}
}

func (r *YardRenderer) point(p navigation.Vec2) rl.Vector2 {
	x, y := r.cam.WorldToScreen(p.X, p.Y)
	return rl.Vector2{X: x, Y: y}
}

// DrawBackground fills the yard area.
func (r *YardRenderer) DrawBackground(bounds navigation.Bounds) {
	rl.DrawRectangleRec(r.rect(bounds.Center.X, bounds.Center.Y, bounds.Size.X, bounds.Size.Y), grassColor)
}

// DrawWalkability shades blocked cells.
func (r *YardRenderer) DrawWalkability(grid *navigation.Grid) {
	if grid == nil {
		return
	}
	cs := grid.CellSize()
	cells := grid.Cells()
	for i := range cells {
		cell := &cells[i]
		if cell.Walkable || !r.cam.IsVisible(cell.Pos.X, cell.Pos.Y, cs) {
			continue
		}
		rl.DrawRectangleRec(r.rect(cell.Pos.X, cell.Pos.Y, cs, cs), blockedColor)
	}
}

// DrawGridLines draws cell boundaries.
func (r *YardRenderer) DrawGridLines(grid *navigation.Grid) {
	if grid == nil {
		return
	}
	cs := grid.CellSize()
	if cs*float64(r.cam.PixelsPerUnit()) < 4 {
		return // too dense to read
	}
	o := grid.Origin()
	ext := grid.Extent()
	for c := 0; c <= grid.Cols(); c++ {
		x := o.X + float64(c)*cs
		rl.DrawLineV(r.point(navigation.Vec2{X: x, Y: o.Y}), r.point(navigation.Vec2{X: x, Y: o.Y + ext.Y}), lineColor)
	}
	for row := 0; row <= grid.Rows(); row++ {
		y := o.Y + float64(row)*cs
		rl.DrawLineV(r.point(navigation.Vec2{X: o.X, Y: y}), r.point(navigation.Vec2{X: o.X + ext.X, Y: y}), lineColor)
	}
}

// DrawSearch shades expanded cells, early expansions dark and late ones bright.
func (r *YardRenderer) DrawSearch(grid *navigation.Grid, expanded []navigation.Coord) {
	if grid == nil || len(expanded) == 0 {
		return
	}
	cs := grid.CellSize()
	n := float32(len(expanded))
	for i, c := range expanded {
		p := grid.WorldPos(c)
		if !r.cam.IsVisible(p.X, p.Y, cs) {
			continue
		}
		t := float32(i) / n
		col := rl.Color{R: uint8(40 + 180*t), G: uint8(80 + 120*t), B: 220, A: 110}
		rl.DrawRectangleRec(r.rect(p.X, p.Y, cs, cs), col)
	}
}

// DrawObstacles draws every obstacle, dimming layers the viewer's breed
// walks through.
func (r *YardRenderer) DrawObstacles(obs []obstacles.Obstacle, active func(layer string) bool) {
	s := r.cam.PixelsPerUnit()
	for _, o := range obs {
		col := LayerColor(o.Layer)
		if active != nil && !active(o.Layer) {
			col.A = 70
		}
		if o.Kind == obstacles.KindCircle {
			if !r.cam.IsVisible(o.X, o.Y, o.R) {
				continue
			}
			center := r.point(navigation.Vec2{X: o.X, Y: o.Y})
			rl.DrawCircleV(center, float32(o.R)*s, col)
			rl.DrawCircleLinesV(center, float32(o.R)*s, rl.Fade(rl.Black, 0.4))
			continue
		}
		if !r.cam.IsVisible(o.X, o.Y, math.Max(o.W, o.H)) {
			continue
		}
		rect := r.rect(o.X, o.Y, o.W, o.H)
		rl.DrawRectangleRec(rect, col)
		rl.DrawRectangleLinesEx(rect, 1, rl.Fade(rl.Black, 0.4))
	}
}

// DrawPath draws the line from a dog through its remaining waypoints.
func (r *YardRenderer) DrawPath(from navigation.Vec2, waypoints []navigation.Vec2, color rl.Color) {
	if len(waypoints) == 0 {
		return
	}
	color.A = 160
	prev := r.point(from)
	for _, wp := range waypoints {
		next := r.point(wp)
		rl.DrawLineEx(prev, next, 2, color)
		rl.DrawCircleV(next, 2.5, color)
		prev = next
	}
}

// DrawGoal marks a goal with a small cross.
func (r *YardRenderer) DrawGoal(p navigation.Vec2, color rl.Color) {
	c := r.point(p)
	const k = 5
	rl.DrawLineEx(rl.Vector2{X: c.X - k, Y: c.Y - k}, rl.Vector2{X: c.X + k, Y: c.Y + k}, 2, color)
	rl.DrawLineEx(rl.Vector2{X: c.X - k, Y: c.Y + k}, rl.Vector2{X: c.X + k, Y: c.Y - k}, 2, color)
}

// DrawRally draws the rally flag.
func (r *YardRenderer) DrawRally(p navigation.Vec2) {
	c := r.point(p)
	rl.DrawLineEx(c, rl.Vector2{X: c.X, Y: c.Y - 22}, 2, rl.RayWhite)
	rl.DrawTriangle(
		rl.Vector2{X: c.X, Y: c.Y - 22},
		rl.Vector2{X: c.X, Y: c.Y - 12},
		rl.Vector2{X: c.X + 12, Y: c.Y - 17},
		rallyColor,
	)
	rl.DrawCircleLinesV(c, 6, rallyColor)
}

// DrawDog draws a dog as a disc of the given world radius with a heading tick
// along its velocity.
func (r *YardRenderer) DrawDog(p, vel navigation.Vec2, radius float64, color rl.Color, selected bool) {
	if !r.cam.IsVisible(p.X, p.Y, radius) {
		return
	}
	c := r.point(p)
	px := max(float32(radius)*r.cam.PixelsPerUnit(), 3)
	rl.DrawCircleV(c, px, color)
	if l := vel.Len(); l > 1e-6 {
		tip := r.point(p.Add(vel.Scale(radius * 1.6 / l)))
		rl.DrawLineEx(c, tip, 2, rl.Fade(rl.Black, 0.6))
	}
	if selected {
		rl.DrawCircleLinesV(c, px+4, rl.Yellow)
	}
}

// DrawLabel writes text just above a world point.
func (r *YardRenderer) DrawLabel(p navigation.Vec2, text string) {
	c := r.point(p)
	w := rl.MeasureText(text, 10)
	rl.DrawText(text, int32(c.X)-w/2, int32(c.Y)-18, 10, rl.RayWhite)
}
