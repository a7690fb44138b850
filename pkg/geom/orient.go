package geom

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Side identifies which edge of a symbol body a pin leaves from.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// String returns the lowercase side name used in build documents.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// ParseSide converts a document side name to a Side. Unknown names
// default to SideLeft.
func ParseSide(name string) Side {
	switch name {
	case "right":
		return SideRight
	case "top":
		return SideTop
	case "bottom":
		return SideBottom
	default:
		return SideLeft
	}
}

// Opposite returns the side across the body.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideTop:
		return SideBottom
	default:
		return SideTop
	}
}

// Outward returns the unit vector pointing away from the body through
// this side.
func (s Side) Outward() r2.Vec {
	switch s {
	case SideRight:
		return r2.Vec{X: 1}
	case SideTop:
		return r2.Vec{Y: 1}
	case SideBottom:
		return r2.Vec{Y: -1}
	default:
		return r2.Vec{X: -1}
	}
}

// NormalizeRotation reduces a rotation in degrees to a 90-degree step
// in [0, 360).
func NormalizeRotation(deg float64) float64 {
	r := SnapLowerTie(deg, 90)
	for r < 0 {
		r += 360
	}
	for r >= 360 {
		r -= 360
	}
	return r
}

// TransformOffset maps a local offset through the placement transform:
// mirror first, then rotate in 90-degree steps. The order matches
// conventional schematic-tool semantics.
func TransformOffset(p r2.Vec, rotationDeg float64, mirrorX, mirrorY bool) r2.Vec {
	if mirrorX {
		p.X = -p.X
	}
	if mirrorY {
		p.Y = -p.Y
	}
	switch int(NormalizeRotation(rotationDeg)) {
	case 90:
		return r2.Vec{X: -p.Y, Y: p.X}
	case 180:
		return r2.Vec{X: -p.X, Y: -p.Y}
	case 270:
		return r2.Vec{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// sideCycle is the counter-clockwise order sides step through under
// successive 90-degree rotations.
var sideCycle = [4]Side{SideRight, SideTop, SideLeft, SideBottom}

// TransformSide maps a logical side through the same mirror-then-rotate
// placement transform as TransformOffset.
func TransformSide(s Side, rotationDeg float64, mirrorX, mirrorY bool) Side {
	if mirrorX {
		switch s {
		case SideLeft:
			s = SideRight
		case SideRight:
			s = SideLeft
		}
	}
	if mirrorY {
		switch s {
		case SideTop:
			s = SideBottom
		case SideBottom:
			s = SideTop
		}
	}

	steps := int(NormalizeRotation(rotationDeg)) / 90
	idx := 0
	for i, c := range sideCycle {
		if c == s {
			idx = i
			break
		}
	}
	return sideCycle[(idx+steps)%4]
}

// TextTransform is the rotation/scale pair applied to a label so its
// glyphs stay readable under any placement transform.
type TextTransform struct {
	RotationZ float64
	ScaleX    float64
	ScaleY    float64
}

// UprightTextTransform returns the counter-transform that keeps label
// text upright. A 180-degree placement is expressed as a double axis
// negation instead of a literal upside-down rotation, so glyphs render
// right side up.
func UprightTextTransform(rotationDeg float64, mirrorX, mirrorY bool) TextTransform {
	t := TextTransform{RotationZ: NormalizeRotation(rotationDeg), ScaleX: 1, ScaleY: 1}
	if mirrorX {
		t.ScaleX = -1
	}
	if mirrorY {
		t.ScaleY = -1
	}
	switch t.RotationZ {
	case 180:
		t.RotationZ = 0
		t.ScaleX, t.ScaleY = -t.ScaleX, -t.ScaleY
	case 270:
		t.RotationZ = 90
		t.ScaleX, t.ScaleY = -t.ScaleX, -t.ScaleY
	}
	return t
}
