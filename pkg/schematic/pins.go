package schematic

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// PinWorldGeometry returns the raw world-frame pin point and body
// attachment point for a placed component, before grid normalization.
func PinWorldGeometry(c *Component, placement Position, pin *Pin) (r2.Vec, r2.Vec) {
	center := placement.Vec()
	pinPt := r2.Add(center, geom.TransformOffset(pin.Offset, placement.Rotation, placement.MirrorX, placement.MirrorY))
	bodyPt := r2.Add(center, geom.TransformOffset(pin.Body, placement.Rotation, placement.MirrorX, placement.MirrorY))
	return pinPt, bodyPt
}

// AlignmentOffset returns the single translation that puts the
// component's anchor pin (its first pin) on the connection grid. The
// same offset is applied to every pin of the component so relative
// geometry is preserved exactly. Components without pins need no
// alignment.
func AlignmentOffset(c *Component, placement Position) r2.Vec {
	if len(c.Pins) == 0 {
		return r2.Vec{}
	}
	anchor, _ := PinWorldGeometry(c, placement, &c.Pins[0])
	return geom.GridAlignmentOffset(anchor)
}

// NormalizedPinGeometry snaps a pin's world point onto the connection
// grid using the whole-component alignment offset, then re-derives the
// body attachment point by constraining its movement to the symbol
// edge axis: pins on the left/right edges keep their body X and slide
// only in Y, pins on the top/bottom edges keep their body Y and slide
// only in X. The constraint keeps the lead stub visually attached to
// the body edge after snapping.
func NormalizedPinGeometry(c *Component, placement Position, pin *Pin) (r2.Vec, r2.Vec) {
	rawPin, rawBody := PinWorldGeometry(c, placement, pin)
	offset := AlignmentOffset(c, placement)

	snapped := r2.Add(rawPin, offset)
	body := rawBody

	visualSide := geom.TransformSide(pin.Side, placement.Rotation, placement.MirrorX, placement.MirrorY)
	switch visualSide {
	case geom.SideLeft, geom.SideRight:
		body.Y += snapped.Y - rawPin.Y
	case geom.SideTop, geom.SideBottom:
		body.X += snapped.X - rawPin.X
	}

	return snapped, body
}
