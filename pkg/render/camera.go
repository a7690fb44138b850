package render

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// Camera is the viewport onto the schematic plane. World coordinates
// are Y up; screen coordinates are Y down with the origin top left, so
// the Y axis is inverted in both directions of the mapping.
type Camera struct {
	// Center is the world point at the middle of the screen.
	Center r2.Vec

	// Zoom is pixels per world unit.
	Zoom float64

	ScreenWidth  int
	ScreenHeight int
}

const (
	minZoom = 0.1
	maxZoom = 1000.0
)

// NewCamera returns a camera with a usable default zoom.
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         10.0,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts a world point to screen pixels.
func (c *Camera) WorldToScreen(p r2.Vec) (float64, float64) {
	x := (p.X - c.Center.X) * c.Zoom
	y := (p.Y - c.Center.Y) * c.Zoom

	x += float64(c.ScreenWidth) / 2
	y = float64(c.ScreenHeight)/2 - y

	return x, y
}

// ScreenToWorld converts screen pixels to a world point.
func (c *Camera) ScreenToWorld(screenX, screenY float64) r2.Vec {
	x := screenX - float64(c.ScreenWidth)/2
	y := float64(c.ScreenHeight)/2 - screenY

	return r2.Vec{
		X: x/c.Zoom + c.Center.X,
		Y: y/c.Zoom + c.Center.Y,
	}
}

// Pan moves the camera by a screen pixel delta.
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.Center.X -= deltaX / c.Zoom
	c.Center.Y += deltaY / c.Zoom
}

// ZoomAt zooms in or out while keeping the world point under the
// cursor stationary. factor > 1 zooms in.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)

	c.Zoom *= factor
	if c.Zoom < minZoom {
		c.Zoom = minZoom
	}
	if c.Zoom > maxZoom {
		c.Zoom = maxZoom
	}

	after := c.ScreenToWorld(screenX, screenY)
	c.Center.X += before.X - after.X
	c.Center.Y += before.Y - after.Y
}

// Fit centers the camera on the bounds and picks the largest zoom
// that shows everything with a margin.
func (c *Camera) Fit(b geom.Bounds) {
	if b.IsEmpty() || b.Width() <= 0 || b.Height() <= 0 {
		return
	}

	c.Center = b.Center()

	zoomX := float64(c.ScreenWidth) * 0.9 / b.Width()
	zoomY := float64(c.ScreenHeight) * 0.9 / b.Height()
	if zoomX < zoomY {
		c.Zoom = zoomX
	} else {
		c.Zoom = zoomY
	}
}

// UpdateScreenSize tracks window resizes.
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}
