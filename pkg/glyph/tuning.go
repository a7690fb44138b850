// Package glyph derives the visual transform that maps a canonical
// library symbol onto an abstract component's body box, and resolves
// each component pin to an attachment point on the transformed glyph.
// Everything here is pure: one Transform per (component, family,
// symbol, tuning) tuple, recomputed whenever an input changes.
package glyph

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// Tuning is the per-family constant record of placement and scale
// adjustments applied uniformly to every glyph of the family.
type Tuning struct {
	BodyOffset      r2.Vec
	BodyRotationDeg float64
	// BodyScale is a user/tuning override on top of the built-in
	// family axis scale. Zero axes mean "no override".
	BodyScale r2.Vec
	LeadDelta float64
}

// sizeFactors is a family's target glyph size as a fraction of the
// component's declared body box.
type sizeFactors struct {
	W float64
	H float64
}

// Guarded minimums for the target-size factors: glyphs never shrink
// below this fraction of the body box, whatever the table says.
const (
	minWidthFactor  = 0.7
	minHeightFactor = 0.55
)

// familySizeFactors holds the fixed target-size factors per family.
// Families absent from the table use the guarded minimums directly.
var familySizeFactors = map[symbol.Family]sizeFactors{
	symbol.FamilyResistor:           {W: 0.95, H: 0.8},
	symbol.FamilyCapacitor:          {W: 0.9, H: 0.85},
	symbol.FamilyCapacitorPolarized: {W: 0.9, H: 0.85},
	symbol.FamilyInductor:           {W: 0.95, H: 0.7},
	symbol.FamilyDiode:              {W: 0.9, H: 0.75},
	symbol.FamilyLED:                {W: 0.9, H: 0.75},
	symbol.FamilyTransistorNPN:      {W: 0.85, H: 0.9},
	symbol.FamilyTransistorPNP:      {W: 0.85, H: 0.9},
	symbol.FamilyMosfetN:            {W: 0.85, H: 0.9},
	symbol.FamilyMosfetP:            {W: 0.85, H: 0.9},
	symbol.FamilyTestpoint:          {W: 0.8, H: 0.8},
}

// familyAxisScale holds the built-in non-uniform axis scale per
// family. Capacitors compress visual width so their glyph proportions
// match resistors and diodes.
var familyAxisScale = map[symbol.Family]r2.Vec{
	symbol.FamilyCapacitor:          {X: 0.62, Y: 1},
	symbol.FamilyCapacitorPolarized: {X: 0.62, Y: 1},
}

// packageSizeCorrection scales the fitted glyph by package class: tiny
// chip packages read better slightly smaller, large ones slightly
// bigger.
var packageSizeCorrection = map[string]float64{
	"01005": 0.82,
	"0201":  0.82,
	"0402":  0.82,
	"1206":  1.16,
	"1210":  1.16,
	"2010":  1.16,
	"2512":  1.16,
}

// targetFactors returns the clamped target-size factors for a family.
func targetFactors(f symbol.Family) sizeFactors {
	sf := familySizeFactors[f]
	if sf.W < minWidthFactor {
		sf.W = minWidthFactor
	}
	if sf.H < minHeightFactor {
		sf.H = minHeightFactor
	}
	return sf
}

// axisScale returns the built-in family axis scale, identity when the
// family has none.
func axisScale(f symbol.Family) r2.Vec {
	if s, ok := familyAxisScale[f]; ok {
		return s
	}
	return r2.Vec{X: 1, Y: 1}
}

// packageCorrection returns the size correction for a package code,
// 1.0 when the code is not a recognized chip size.
func packageCorrection(pkg string) float64 {
	if c, ok := packageSizeCorrection[pkg]; ok {
		return c
	}
	return 1.0
}
