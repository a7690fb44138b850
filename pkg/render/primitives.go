// Package render turns placed schematic items into flat primitive
// descriptors. The descriptors are the output boundary of the
// geometry core: an external scene renderer consumes them and owns
// all rasterization and GPU state.
package render

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// Kind discriminates the primitive variants.
type Kind int

const (
	// KindLine is an open stroked polyline.
	KindLine Kind = iota
	// KindPolygon is a closed filled polygon.
	KindPolygon
	// KindText is a single text run anchored at Points[0].
	KindText
)

// Primitive is one drawable element in the shared output frame
// (world units, Y up). Stroke width applies to lines, fill opacity to
// polygons, and the text fields to text runs.
type Primitive struct {
	Kind        Kind
	Points      []r2.Vec
	Color       color.NRGBA
	StrokeWidth float64
	FillOpacity float64

	Text     string
	TextSize float64
	TextXf   geom.TextTransform
}

// Line builds a stroked polyline primitive.
func Line(points []r2.Vec, col color.NRGBA, width float64) Primitive {
	return Primitive{Kind: KindLine, Points: points, Color: col, StrokeWidth: width}
}

// Polygon builds a filled polygon primitive.
func Polygon(points []r2.Vec, col color.NRGBA, opacity float64) Primitive {
	return Primitive{Kind: KindPolygon, Points: points, Color: col, FillOpacity: opacity}
}

// Text builds a text primitive anchored at pos.
func Text(pos r2.Vec, s string, col color.NRGBA, size float64, xf geom.TextTransform) Primitive {
	return Primitive{
		Kind:     KindText,
		Points:   []r2.Vec{pos},
		Color:    col,
		Text:     s,
		TextSize: size,
		TextXf:   xf,
	}
}
