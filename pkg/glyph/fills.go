package glyph

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// Family-specific fills are derived geometrically from the canonical
// drawing rather than stored in the library.

// NegativePlateOpacity is the fill opacity for the polarized-capacitor
// negative plate.
const NegativePlateOpacity = 0.4

// TriangleFill locates the diode/LED triangle among a symbol's
// polylines: a closed loop with exactly three unique points. Returns
// the triangle vertices in symbol space.
func TriangleFill(sym *symbol.Symbol) ([3]r2.Vec, bool) {
	for _, poly := range sym.Polylines {
		if tri, ok := closedTriangle(poly.Points); ok {
			return tri, true
		}
	}
	return [3]r2.Vec{}, false
}

func closedTriangle(points []r2.Vec) ([3]r2.Vec, bool) {
	if len(points) < 3 || len(points) > 4 {
		return [3]r2.Vec{}, false
	}
	// A 4-point loop must close back onto its first point.
	if len(points) == 4 && !samePoint(points[0], points[3]) {
		return [3]r2.Vec{}, false
	}

	unique := points[:3]
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if samePoint(unique[i], unique[j]) {
				return [3]r2.Vec{}, false
			}
		}
	}
	return [3]r2.Vec{unique[0], unique[1], unique[2]}, true
}

// NegativePlate locates the polarized-capacitor negative plate: by
// library convention it is the rectangle drawn lowest, i.e. with the
// smallest center Y.
func NegativePlate(sym *symbol.Symbol) (symbol.Rectangle, bool) {
	if len(sym.Rectangles) == 0 {
		return symbol.Rectangle{}, false
	}
	best := sym.Rectangles[0]
	for _, r := range sym.Rectangles[1:] {
		if r.Center().Y < best.Center().Y {
			best = r
		}
	}
	return best, true
}

// IsCenterBridge recognizes the library drawing artifact suppressed
// from diode/LED glyphs: a two-point horizontal polyline at y ~ 0
// whose span falls inside the catalog's bridge window. It is not a
// real connection and renders as a stray bar through the glyph.
func IsCenterBridge(poly symbol.Polyline, spanMin, spanMax float64) bool {
	if len(poly.Points) != 2 {
		return false
	}
	a, b := poly.Points[0], poly.Points[1]

	const tol = 1e-3
	if math.Abs(a.Y) > tol || math.Abs(b.Y) > tol {
		return false
	}

	span := math.Abs(b.X - a.X)
	return span >= spanMin && span <= spanMax
}

func samePoint(a, b r2.Vec) bool {
	const tol = 1e-6
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}
