package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

func TestCameraRoundTrip(t *testing.T) {
	c := NewCamera(1200, 800)
	c.Center = r2.Vec{X: 30, Y: -12}
	c.Zoom = 7.5

	for _, p := range []r2.Vec{{}, {X: 10, Y: 10}, {X: -55.5, Y: 3.25}} {
		sx, sy := c.WorldToScreen(p)
		back := c.ScreenToWorld(sx, sy)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestCameraYAxisInversion(t *testing.T) {
	c := NewCamera(800, 600)

	// A point above the center in world space appears above the
	// screen midline, i.e. at a smaller pixel Y.
	_, yUp := c.WorldToScreen(r2.Vec{Y: 10})
	_, yCenter := c.WorldToScreen(r2.Vec{})
	assert.Less(t, yUp, yCenter)
}

func TestCameraPan(t *testing.T) {
	c := NewCamera(800, 600)
	c.Zoom = 10

	before := c.ScreenToWorld(400, 300)
	c.Pan(50, -30)
	after := c.ScreenToWorld(400, 300)

	assert.InDelta(t, before.X-5, after.X, 1e-9)
	assert.InDelta(t, before.Y-3, after.Y, 1e-9)
}

func TestCameraZoomAtKeepsCursorPoint(t *testing.T) {
	c := NewCamera(1000, 700)
	c.Center = r2.Vec{X: 5, Y: 5}

	before := c.ScreenToWorld(200, 150)
	c.ZoomAt(200, 150, 1.5)
	after := c.ScreenToWorld(200, 150)

	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
	assert.InDelta(t, 15.0, c.Zoom, 1e-9)
}

func TestCameraZoomClamped(t *testing.T) {
	c := NewCamera(800, 600)
	c.ZoomAt(0, 0, 1e9)
	assert.Equal(t, maxZoom, c.Zoom)
	c.ZoomAt(0, 0, 1e-12)
	assert.Equal(t, minZoom, c.Zoom)
}

func TestCameraFit(t *testing.T) {
	c := NewCamera(1000, 500)

	b := geom.NewBounds()
	b.Expand(r2.Vec{X: -10, Y: -10})
	b.Expand(r2.Vec{X: 10, Y: 10})
	c.Fit(b)

	assert.Equal(t, r2.Vec{}, c.Center)
	// Height limits: 500 * 0.9 / 20.
	assert.InDelta(t, 22.5, c.Zoom, 1e-9)

	// Degenerate bounds leave the camera untouched.
	prev := *c
	c.Fit(geom.NewBounds())
	assert.Equal(t, prev, *c)
}
