package glyph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

func twoPinSymbol() *symbol.Symbol {
	return squareSymbol(
		symbol.Pin{Number: "1", Position: r2.Vec{X: -5}, Body: r2.Vec{X: -1}},
		symbol.Pin{Number: "2", Position: r2.Vec{X: 5}, Body: r2.Vec{X: 1}},
	)
}

func TestResolveAttachmentsExactNumbers(t *testing.T) {
	sym := twoPinSymbol()
	comp := resistorComponent()
	tr := DeriveTransform(comp, symbol.FamilyResistor, sym, Tuning{})
	require.NotNil(t, tr)

	attach := ResolveAttachments(comp, symbol.FamilyResistor, sym, tr)
	require.Len(t, attach, 2)
	assert.InDelta(t, -4.0, attach["1"].X, 1e-12)
	assert.InDelta(t, 4.0, attach["2"].X, 1e-12)
}

func TestResolveAttachmentsCompleteness(t *testing.T) {
	// Whenever a component has at most as many pins as the canonical
	// symbol, every component pin number ends up mapped.
	sym := squareSymbol(
		symbol.Pin{Number: "A1", Position: r2.Vec{X: -5}, Body: r2.Vec{X: -1}},
		symbol.Pin{Number: "A2", Position: r2.Vec{X: 5}, Body: r2.Vec{X: 1}},
		symbol.Pin{Number: "A3", Position: r2.Vec{Y: 5}, Body: r2.Vec{Y: 1}},
	)
	comp := &schematic.Component{
		ID: "u1", BodyWidth: 10, BodyHeight: 10,
		Pins: []schematic.Pin{
			{Number: "1", Offset: r2.Vec{X: -5}},
			{Number: "2", Offset: r2.Vec{X: 5}},
		},
	}
	tr := DeriveTransform(comp, symbol.FamilyNone, sym, Tuning{})
	require.NotNil(t, tr)

	attach := ResolveAttachments(comp, symbol.FamilyNone, sym, tr)
	for _, pin := range comp.Pins {
		_, ok := attach[pin.Number]
		assert.True(t, ok, "pin %s left unmapped", pin.Number)
	}
}

func TestResolveAttachmentsNearestNeighbor(t *testing.T) {
	// No numbers match, so geometry decides: the left component pin
	// must claim the left canonical pin.
	sym := squareSymbol(
		symbol.Pin{Number: "A1", Position: r2.Vec{X: -5}, Body: r2.Vec{X: -1}},
		symbol.Pin{Number: "A2", Position: r2.Vec{X: 5}, Body: r2.Vec{X: 1}},
	)
	comp := resistorComponent()
	tr := DeriveTransform(comp, symbol.FamilyResistor, sym, Tuning{})
	require.NotNil(t, tr)

	attach := ResolveAttachments(comp, symbol.FamilyResistor, sym, tr)
	require.Len(t, attach, 2)
	assert.Less(t, attach["1"].X, 0.0)
	assert.Greater(t, attach["2"].X, 0.0)
}

func TestResolveAttachmentsSemanticPass(t *testing.T) {
	// Numbers disagree with polarity names; the semantic pass must win
	// for anode and cathode.
	sym := squareSymbol(
		symbol.Pin{Name: "K", Number: "1", Position: r2.Vec{X: 5}, Body: r2.Vec{X: 1}},
		symbol.Pin{Name: "A", Number: "2", Position: r2.Vec{X: -5}, Body: r2.Vec{X: -1}},
	)
	comp := &schematic.Component{
		ID:       "d1",
		Polarity: schematic.PolarityAnodeCathode,
		BodyWidth: 10, BodyHeight: 10,
		Pins: []schematic.Pin{
			{Number: "1", Name: "anode", Side: geom.SideLeft, Offset: r2.Vec{X: -5}},
			{Number: "2", Name: "cathode", Side: geom.SideRight, Offset: r2.Vec{X: 5}},
		},
	}
	tr := DeriveTransform(comp, symbol.FamilyDiode, sym, Tuning{})
	require.NotNil(t, tr)
	assert.False(t, tr.Flip180)

	attach := ResolveAttachments(comp, symbol.FamilyDiode, sym, tr)
	require.Len(t, attach, 2)
	assert.Less(t, attach["1"].X, 0.0, "anode must attach on the symbol's anode side")
	assert.Greater(t, attach["2"].X, 0.0)
}

func TestResolveAttachmentsNilInputs(t *testing.T) {
	comp := resistorComponent()
	assert.Empty(t, ResolveAttachments(comp, symbol.FamilyResistor, nil, &Transform{}))
	assert.Empty(t, ResolveAttachments(comp, symbol.FamilyResistor, twoPinSymbol(), nil))
}

func TestCorrectedBodyPoints(t *testing.T) {
	// The second pin stores its body end outside the pin end; the
	// correction mirrors it through the pin point.
	sym := squareSymbol(
		symbol.Pin{Number: "1", Position: r2.Vec{X: -5}, Body: r2.Vec{X: -1}},
		symbol.Pin{Number: "2", Position: r2.Vec{X: 5}, Body: r2.Vec{X: 9}},
	)
	pts := correctedBodyPoints(sym, sym.BodyBounds.Center())
	assert.InDelta(t, -1.0, pts[0].X, 1e-12)
	assert.InDelta(t, 1.0, pts[1].X, 1e-12)
}

func TestTunedPinGeometryZeroDelta(t *testing.T) {
	tr := &Transform{BodyOffset: r2.Vec{}}
	body := r2.Vec{X: -4}
	got := TunedPinGeometry(r2.Vec{X: -5}, body, tr, Tuning{})
	assert.Equal(t, body, got)
}

func TestTunedPinGeometrySlide(t *testing.T) {
	tr := &Transform{BodyOffset: r2.Vec{}}
	pin := r2.Vec{X: -5}
	body := r2.Vec{X: -4}

	// Positive delta slides the body point toward the center.
	got := TunedPinGeometry(pin, body, tr, Tuning{LeadDelta: 0.5})
	assert.InDelta(t, -3.5, got.X, 1e-12)

	// Negative delta slides it back out toward the pin.
	got = TunedPinGeometry(pin, body, tr, Tuning{LeadDelta: -0.5})
	assert.InDelta(t, -4.5, got.X, 1e-12)
}

func TestTunedPinGeometryLeadFloor(t *testing.T) {
	tr := &Transform{BodyOffset: r2.Vec{}}
	pin := r2.Vec{X: -5}
	body := r2.Vec{X: -4}

	// Any delta, however extreme, leaves at least MinLeadLength of
	// visible lead and never crosses the glyph center.
	for _, delta := range []float64{-0.2, -1, -10, -1000} {
		got := TunedPinGeometry(pin, body, tr, Tuning{LeadDelta: delta})
		lead := math.Hypot(got.X-pin.X, got.Y-pin.Y)
		assert.GreaterOrEqual(t, lead, MinLeadLength-1e-12, "delta %v", delta)
	}
	for _, delta := range []float64{10, 1000} {
		got := TunedPinGeometry(pin, body, tr, Tuning{LeadDelta: delta})
		assert.LessOrEqual(t, got.X, tr.BodyOffset.X+1e-12, "delta %v", delta)
	}
}
