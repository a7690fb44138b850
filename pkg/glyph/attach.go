package glyph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// MinLeadLength is the shortest visible lead segment the lead-length
// tuning may produce, in body units.
const MinLeadLength = 0.08

// ResolveAttachments maps every component pin number to the point on
// the transformed glyph where its lead should terminate. Resolution
// runs in three passes, each filling only still-unmapped pins:
// semantic polarity names, exact pin-number match, then
// nearest-neighbor fallback. Pins left over when canonical pins are
// exhausted stay unmapped; callers treat an unmapped pin as "use the
// default geometry".
func ResolveAttachments(c *schematic.Component, fam symbol.Family, sym *symbol.Symbol, t *Transform) map[string]r2.Vec {
	attach := make(map[string]r2.Vec)
	if sym == nil || t == nil {
		return attach
	}

	used := make([]bool, len(sym.Pins))
	bodyPoints := correctedBodyPoints(sym, t.Center)

	// Semantic polarity pass.
	if fam.Polarized() && c.Polarity == schematic.PolarityAnodeCathode {
		for _, names := range [][]string{{"a", "anode"}, {"k", "cathode"}} {
			compPin := findSemanticPin(c.Pins, names...)
			if compPin == nil {
				continue
			}
			for i := range sym.Pins {
				if used[i] {
					continue
				}
				n := semanticName(sym.Pins[i].Name)
				if n == names[0] || n == names[1] {
					attach[compPin.Number] = TransformBodyPoint(bodyPoints[i], t)
					used[i] = true
					break
				}
			}
		}
	}

	// Exact pin-number pass. Canonical symbols may repeat a number
	// across unit variants; the first unused pin with the number wins.
	for i := range sym.Pins {
		if used[i] {
			continue
		}
		number := sym.Pins[i].Number
		if _, mapped := attach[number]; mapped {
			continue
		}
		if c.PinByNumber(number) == nil {
			continue
		}
		attach[number] = TransformBodyPoint(bodyPoints[i], t)
		used[i] = true
	}

	// Nearest-neighbor fallback: compare transformed, un-offset
	// canonical pin positions against component pin offsets, so a
	// component numbered "1","2" still lands on a symbol numbered
	// "A1","A2".
	for pi := range c.Pins {
		pin := &c.Pins[pi]
		if _, mapped := attach[pin.Number]; mapped {
			continue
		}

		best := -1
		bestDist := math.MaxFloat64
		for i := range sym.Pins {
			if used[i] {
				continue
			}
			d := distSq(TransformPinPoint(sym.Pins[i].Position, t), pin.Offset)
			if d < bestDist {
				best = i
				bestDist = d
			}
		}
		if best < 0 {
			// Canonical pins exhausted; remaining component pins stay
			// unmapped.
			break
		}
		attach[pin.Number] = TransformBodyPoint(bodyPoints[best], t)
		used[best] = true
	}

	return attach
}

// correctedBodyPoints returns each canonical pin's body attachment
// point, fixed up for the library inconsistency where pin and body
// ends are stored reversed: "body side" must always mean "closer to
// symbol center". A reversed body point is mirrored through the pin
// point.
func correctedBodyPoints(sym *symbol.Symbol, center r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(sym.Pins))
	for i := range sym.Pins {
		pin := &sym.Pins[i]
		body := pin.Body
		if distSq(body, center) > distSq(pin.Position, center) {
			body = r2.Sub(r2.Scale(2, pin.Position), body)
		}
		out[i] = body
	}
	return out
}

// TunedPinGeometry applies the family lead-length tuning: the body
// endpoint slides along the axis from the pin point toward the glyph
// center by LeadDelta, while the pin's external connection point stays
// fixed. The slide is clamped so the visible lead never drops under
// MinLeadLength and never crosses the glyph center. A zero delta
// returns the body point unchanged.
func TunedPinGeometry(pinPt, bodyPt r2.Vec, t *Transform, tun Tuning) r2.Vec {
	if tun.LeadDelta == 0 {
		return bodyPt
	}

	axis := r2.Sub(t.BodyOffset, pinPt)
	length := r2.Norm(axis)
	if length == 0 {
		return bodyPt
	}

	// Parametrize the axis: 0 at the pin, 1 at the glyph center.
	s := r2.Dot(r2.Sub(bodyPt, pinPt), axis) / (length * length)
	s += tun.LeadDelta / length

	if floor := MinLeadLength / length; s < floor {
		s = floor
	}
	if s > 1 {
		s = 1
	}

	return r2.Add(pinPt, r2.Scale(s, axis))
}

func distSq(a, b r2.Vec) float64 {
	d := r2.Sub(a, b)
	return d.X*d.X + d.Y*d.Y
}
