package glyph

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// Transform is the single affine mapping from canonical symbol space
// into a component's body box. Every primitive point, fill vertex, and
// pin of one glyph goes through the same Transform, so the glyph's
// visual elements cannot drift relative to each other.
type Transform struct {
	// Center is the midpoint of the symbol's body bounds in symbol
	// space; all rotation and scaling happens around it.
	Center r2.Vec

	// RotateToHorizontal rotates library symbols drawn vertically into
	// the horizontal convention used for passives on this canvas.
	RotateToHorizontal bool

	// RotateClockwise fixes the rotation sign by pin-position
	// correlation; only meaningful when RotateToHorizontal is set.
	RotateClockwise bool

	// Flip180 flips polarized glyphs so the drawn polarity matches the
	// wired polarity.
	Flip180 bool

	// Unit is the uniform fit scale from symbol space to body space.
	Unit float64

	// Body rotation and anisotropic scale from the family tuning.
	BodyCos   float64
	BodySin   float64
	BodyScale r2.Vec

	// BodyOffset is the final translation, in the component frame.
	BodyOffset r2.Vec
}

// Scale override clamps: user scale never collapses or explodes a
// glyph.
const (
	minScaleOverride = 0.1
	maxScaleOverride = 4.0
)

// DeriveTransform computes the glyph transform for a component and its
// matched canonical symbol. Returns nil when the symbol has degenerate
// bounds; the caller falls back to generic rendering.
func DeriveTransform(c *schematic.Component, fam symbol.Family, sym *symbol.Symbol, tun Tuning) *Transform {
	if sym == nil || sym.Degenerate() {
		return nil
	}

	t := &Transform{
		Center: sym.BodyBounds.Center(),
	}

	// Vertically drawn symbols rotate to horizontal, except transistor
	// families, whose canonical orientation is already correct, and
	// connectors/testpoints, which keep their drawn orientation.
	if fam != symbol.FamilyConnector && fam != symbol.FamilyTestpoint && !fam.Transistor() {
		t.RotateToHorizontal = sym.BodyBounds.Height() > sym.BodyBounds.Width()
	}

	if t.RotateToHorizontal {
		t.RotateClockwise = chooseRotationDirection(c, sym, t.Center)
	}

	if fam.Polarized() && c.Polarity == schematic.PolarityAnodeCathode {
		t.Flip180 = needsPolarityFlip(c, sym, t)
	}

	t.Unit = fitScale(c, fam, sym, t.RotateToHorizontal)

	rad := tun.BodyRotationDeg * math.Pi / 180
	t.BodyCos = math.Cos(rad)
	t.BodySin = math.Sin(rad)

	t.BodyScale = axisScale(fam)
	if tun.BodyScale.X != 0 {
		t.BodyScale.X *= clampScale(tun.BodyScale.X)
	}
	if tun.BodyScale.Y != 0 {
		t.BodyScale.Y *= clampScale(tun.BodyScale.Y)
	}

	t.BodyOffset = tun.BodyOffset

	return t
}

// TransformBodyPoint maps one symbol-space point into the component
// frame: translate to the symbol center, rotate (and flip), apply the
// uniform fit scale, then the tuning's body rotation, anisotropic
// scale, and offset.
func TransformBodyPoint(p r2.Vec, t *Transform) r2.Vec {
	p = r2.Sub(p, t.Center)

	if t.RotateToHorizontal {
		if t.RotateClockwise {
			p = r2.Vec{X: p.Y, Y: -p.X}
		} else {
			p = r2.Vec{X: -p.Y, Y: p.X}
		}
	}
	if t.Flip180 {
		p = r2.Vec{X: -p.X, Y: -p.Y}
	}

	p = r2.Scale(t.Unit, p)

	p = r2.Vec{
		X: p.X*t.BodyCos - p.Y*t.BodySin,
		Y: p.X*t.BodySin + p.Y*t.BodyCos,
	}

	p.X *= t.BodyScale.X
	p.Y *= t.BodyScale.Y

	return r2.Add(p, t.BodyOffset)
}

// TransformPinPoint maps a canonical pin position into the component
// frame without the final body offset. Used for pin-distance
// comparisons where only relative geometry matters.
func TransformPinPoint(p r2.Vec, t *Transform) r2.Vec {
	return r2.Sub(TransformBodyPoint(p, t), t.BodyOffset)
}

// chooseRotationDirection disambiguates the 90-degree rotation sign by
// correlating canonical pin positions against where the component's
// pins actually are. For every pin matched by number, both candidate
// rotations are scored by dot product; the higher aggregate wins.
// With no matched pins the direction defaults to clockwise.
func chooseRotationDirection(c *schematic.Component, sym *symbol.Symbol, center r2.Vec) bool {
	var scoreCW, scoreCCW float64
	matched := false

	for i := range c.Pins {
		pin := &c.Pins[i]
		canon := sym.PinByNumber(pin.Number)
		if canon == nil {
			continue
		}
		matched = true

		rel := r2.Sub(canon.Position, center)
		cw := r2.Vec{X: rel.Y, Y: -rel.X}
		ccw := r2.Vec{X: -rel.Y, Y: rel.X}

		scoreCW += r2.Dot(cw, pin.Offset)
		scoreCCW += r2.Dot(ccw, pin.Offset)
	}

	if !matched {
		return true
	}
	return scoreCW >= scoreCCW
}

// needsPolarityFlip compares the anode-to-cathode direction of the
// component against the canonical symbol (after the rotation decided
// above, before any flip). A negative dot product means the drawn
// triangle would point the wrong way.
func needsPolarityFlip(c *schematic.Component, sym *symbol.Symbol, t *Transform) bool {
	compAnode := findSemanticPin(c.Pins, "a", "anode")
	compCathode := findSemanticPin(c.Pins, "k", "cathode")
	if compAnode == nil || compCathode == nil {
		return false
	}

	canonAnode := findCanonicalSemanticPin(sym.Pins, "a", "anode")
	canonCathode := findCanonicalSemanticPin(sym.Pins, "k", "cathode")
	if canonAnode == nil || canonCathode == nil {
		return false
	}

	canonVec := r2.Sub(canonCathode.Position, canonAnode.Position)
	if t.RotateToHorizontal {
		if t.RotateClockwise {
			canonVec = r2.Vec{X: canonVec.Y, Y: -canonVec.X}
		} else {
			canonVec = r2.Vec{X: -canonVec.Y, Y: canonVec.X}
		}
	}

	compVec := r2.Sub(compCathode.Offset, compAnode.Offset)

	return r2.Dot(canonVec, compVec) < 0
}

// semanticName reduces a pin name for polarity matching: lowercase,
// alphanumerics only.
func semanticName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findSemanticPin(pins []schematic.Pin, names ...string) *schematic.Pin {
	for i := range pins {
		n := semanticName(pins[i].Name)
		for _, want := range names {
			if n == want {
				return &pins[i]
			}
		}
	}
	return nil
}

func findCanonicalSemanticPin(pins []symbol.Pin, names ...string) *symbol.Pin {
	for i := range pins {
		n := semanticName(pins[i].Name)
		for _, want := range names {
			if n == want {
				return &pins[i]
			}
		}
	}
	return nil
}

// fitScale computes the uniform symbol-to-body scale: family target
// factors against the effective symbol extent (swapped when rotated),
// taking the smaller axis ratio so aspect is never distorted, times
// the package size correction.
func fitScale(c *schematic.Component, fam symbol.Family, sym *symbol.Symbol, rotated bool) float64 {
	effW := sym.BodyBounds.Width()
	effH := sym.BodyBounds.Height()
	if rotated {
		effW, effH = effH, effW
	}

	sf := targetFactors(fam)
	targetW := c.BodyWidth * sf.W
	targetH := c.BodyHeight * sf.H

	scale := math.Min(targetW/effW, targetH/effH)
	return scale * packageCorrection(c.Package)
}

func clampScale(v float64) float64 {
	if v < minScaleOverride {
		return minScaleOverride
	}
	if v > maxScaleOverride {
		return maxScaleOverride
	}
	return v
}
