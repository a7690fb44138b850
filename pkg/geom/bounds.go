package geom

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Bounds is an axis-aligned rectangle in symbol or sheet coordinates.
type Bounds struct {
	Min r2.Vec
	Max r2.Vec
}

// NewBounds returns an empty bounds ready for Expand calls.
func NewBounds() Bounds {
	return Bounds{
		Min: r2.Vec{X: 1e9, Y: 1e9},
		Max: r2.Vec{X: -1e9, Y: -1e9},
	}
}

// IsEmpty reports whether no point has been added yet.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Expand grows the bounds to include p.
func (b *Bounds) Expand(p r2.Vec) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
}

// ExpandBounds grows the bounds to include another bounds.
func (b *Bounds) ExpandBounds(other Bounds) {
	if !other.IsEmpty() {
		b.Expand(other.Min)
		b.Expand(other.Max)
	}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() r2.Vec {
	return r2.Vec{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
	}
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
