// Package symbol provides the canonical symbol catalog: read-only
// library drawings (pins plus primitives) used as ground truth for
// glyph shapes, the closed symbol family enumeration, and family
// inference for abstract components.
package symbol

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// Pin is a connection point of a canonical symbol. Position is the
// external connection end of the lead; Body is where the lead meets
// the drawn outline.
type Pin struct {
	Name     string
	Number   string
	Position r2.Vec
	AngleDeg float64
	Length   float64
	Body     r2.Vec
}

// Rectangle is a drawn rectangle primitive.
type Rectangle struct {
	Start  r2.Vec
	End    r2.Vec
	Width  float64 // stroke width
	Filled bool
}

// Center returns the rectangle midpoint.
func (r Rectangle) Center() r2.Vec {
	return r2.Vec{
		X: (r.Start.X + r.End.X) / 2,
		Y: (r.Start.Y + r.End.Y) / 2,
	}
}

// Circle is a drawn circle primitive.
type Circle struct {
	Center r2.Vec
	Radius float64
	Width  float64
	Filled bool
}

// Polyline is a drawn open or closed point sequence.
type Polyline struct {
	Points []r2.Vec
	Width  float64
	Filled bool
}

// Arc is a drawn circular arc through three points.
type Arc struct {
	Start r2.Vec
	Mid   r2.Vec
	End   r2.Vec
	Width float64
}

// Symbol is one read-only canonical library record.
type Symbol struct {
	Name      string
	Reference string
	Value     string
	Footprint string

	Pins       []Pin
	Rectangles []Rectangle
	Circles    []Circle
	Polylines  []Polyline
	Arcs       []Arc

	// BodyBounds covers the drawn outline only; FullBounds includes
	// pin leads. Both are computed once at load.
	BodyBounds geom.Bounds
	FullBounds geom.Bounds
}

// Degenerate reports whether the symbol cannot serve as a glyph
// source. Callers must fall back to generic rendering.
func (s *Symbol) Degenerate() bool {
	return s.BodyBounds.IsEmpty() || s.BodyBounds.Width() <= 0 || s.BodyBounds.Height() <= 0
}

// PinByNumber returns the first pin with the given number, or nil.
// Canonical symbols may repeat a number across unit variants.
func (s *Symbol) PinByNumber(number string) *Pin {
	for i := range s.Pins {
		if s.Pins[i].Number == number {
			return &s.Pins[i]
		}
	}
	return nil
}

// computeBounds fills BodyBounds and FullBounds from the symbol's
// primitives and pins.
func (s *Symbol) computeBounds() {
	body := geom.NewBounds()
	for _, r := range s.Rectangles {
		body.Expand(r.Start)
		body.Expand(r.End)
	}
	for _, c := range s.Circles {
		body.Expand(r2.Vec{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius})
		body.Expand(r2.Vec{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	}
	for _, p := range s.Polylines {
		for _, pt := range p.Points {
			body.Expand(pt)
		}
	}
	for _, a := range s.Arcs {
		body.Expand(a.Start)
		body.Expand(a.Mid)
		body.Expand(a.End)
	}

	full := body
	for _, pin := range s.Pins {
		full.Expand(pin.Position)
		full.Expand(pin.Body)
	}

	s.BodyBounds = body
	s.FullBounds = full
}
