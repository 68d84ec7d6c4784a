// Package camera provides a 2D camera system for viewport control.
package camera

import "github.com/pthm-cable/kennel/navigation"

// Camera controls the viewport into the yard. World Y points up, screen Y
// points down; the camera center is kept inside the yard.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom level (1.0 = whole yard fits the viewport)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Yard bounds
	World navigation.Bounds

	// Zoom constraints
	MinZoom, MaxZoom float32

	fit float32 // pixels per world unit at zoom 1
}

// New creates a camera centered on the yard at zoom 1.
func New(viewportW, viewportH float32, world navigation.Bounds) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		World:     world,
		MinZoom:   0.5,
		MaxZoom:   8.0,
	}
	c.fit = fitScale(viewportW, viewportH, world)
	c.Reset()
	return c
}

// fitScale is the largest pixels-per-unit that shows the whole yard.
func fitScale(viewportW, viewportH float32, world navigation.Bounds) float32 {
	if world.Size.X <= 0 || world.Size.Y <= 0 {
		return 1
	}
	sx := viewportW / float32(world.Size.X)
	sy := viewportH / float32(world.Size.Y)
	if sy < sx {
		return sy
	}
	return sx
}

// PixelsPerUnit returns the current world-to-screen scale.
func (c *Camera) PixelsPerUnit() float32 { return c.fit * c.Zoom }

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float32) {
	s := c.PixelsPerUnit()
	sx = c.ViewportW/2 + float32(wx-c.X)*s
	sy = c.ViewportH/2 - float32(wy-c.Y)*s
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float64) {
	s := c.PixelsPerUnit()
	wx = c.X + float64((sx-c.ViewportW/2)/s)
	wy = c.Y - float64((sy-c.ViewportH/2)/s)
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+radius >= minX && wx-radius <= maxX && wy+radius >= minY && wy-radius <= maxY
}

// Resize updates viewport dimensions and the fit scale.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fit = fitScale(viewportW, viewportH, c.World)
}

// Pan moves the camera by the given delta in screen pixels.
// The center stays inside the yard.
func (c *Camera) Pan(dx, dy float32) {
	s := c.PixelsPerUnit()
	lo, hi := c.World.Min(), c.World.Max()
	c.X = clamp(c.X+float64(dx/s), lo.X, hi.X)
	c.Y = clamp(c.Y-float64(dy/s), lo.Y, hi.Y)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = float32(clamp(float64(zoom), float64(c.MinZoom), float64(c.MaxZoom)))
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.World.Center.X
	c.Y = c.World.Center.Y
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	s := c.PixelsPerUnit()
	halfW := float64(c.ViewportW / (2 * s))
	halfH := float64(c.ViewportH / (2 * s))
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
