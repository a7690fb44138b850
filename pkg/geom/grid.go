// Package geom provides the planar geometry primitives shared by the
// schematic model, the glyph engine, and the auto-layout engine: grid
// snapping with a deterministic tie-break, and 90-degree-step
// mirror/rotate transforms for offsets, sides, and label text.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// GridPitch is the connection grid spacing. Every pin connection point
// must land on a multiple of this pitch.
const GridPitch = 2.54

// snapEpsilon biases the rounding threshold so an exact half-grid value
// resolves to the lower multiple on every platform.
const snapEpsilon = 1e-9

// SnapLowerTie rounds v to the nearest multiple of grid. An exact
// half-grid tie resolves to the lower multiple, never the upper one.
func SnapLowerTie(v, grid float64) float64 {
	if grid == 0 {
		return v
	}
	return math.Floor(v/grid+0.5-snapEpsilon) * grid
}

// Snap rounds v to the nearest multiple of the connection grid pitch.
func Snap(v float64) float64 {
	return SnapLowerTie(v, GridPitch)
}

// SnapVec snaps both coordinates of p to the connection grid.
func SnapVec(p r2.Vec) r2.Vec {
	return r2.Vec{X: Snap(p.X), Y: Snap(p.Y)}
}

// GridAlignmentOffset returns the (dx, dy) that moves the anchor point
// onto the connection grid. A whole symbol is aligned by applying one
// anchor's offset to every point of the symbol, so relative geometry is
// preserved exactly.
func GridAlignmentOffset(anchor r2.Vec) r2.Vec {
	return r2.Vec{
		X: Snap(anchor.X) - anchor.X,
		Y: Snap(anchor.Y) - anchor.Y,
	}
}
