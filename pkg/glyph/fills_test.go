package glyph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

func TestTriangleFill(t *testing.T) {
	sym := &symbol.Symbol{
		Polylines: []symbol.Polyline{
			// Straight cathode bar, not a triangle.
			{Points: []r2.Vec{{X: 1, Y: -1}, {X: 1, Y: 1}}},
			// The diode triangle, closed by repeating the first point.
			{Points: []r2.Vec{{X: -1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 0}, {X: -1, Y: -1}}},
		},
	}

	tri, ok := TriangleFill(sym)
	require.True(t, ok)
	assert.Equal(t, r2.Vec{X: -1, Y: -1}, tri[0])
	assert.Equal(t, r2.Vec{X: 1, Y: 0}, tri[2])
}

func TestTriangleFillThreePointLoop(t *testing.T) {
	sym := &symbol.Symbol{
		Polylines: []symbol.Polyline{
			{Points: []r2.Vec{{X: 0, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}},
		},
	}
	_, ok := TriangleFill(sym)
	assert.True(t, ok)
}

func TestTriangleFillRejectsOpenAndDegenerate(t *testing.T) {
	cases := map[string][]r2.Vec{
		"two points":      {{X: 0, Y: 0}, {X: 1, Y: 0}},
		"open quad":       {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		"repeated vertex": {{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}},
		"five points":     {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}},
	}
	for name, pts := range cases {
		sym := &symbol.Symbol{Polylines: []symbol.Polyline{{Points: pts}}}
		if _, ok := TriangleFill(sym); ok {
			t.Errorf("%s: unexpectedly recognized as triangle", name)
		}
	}
}

func TestNegativePlate(t *testing.T) {
	sym := &symbol.Symbol{
		Rectangles: []symbol.Rectangle{
			{Start: r2.Vec{X: -1, Y: 0.5}, End: r2.Vec{X: 1, Y: 1}},
			{Start: r2.Vec{X: -1, Y: -1}, End: r2.Vec{X: 1, Y: -0.5}},
		},
	}
	plate, ok := NegativePlate(sym)
	require.True(t, ok)
	assert.InDelta(t, -0.75, plate.Center().Y, 1e-12)

	_, ok = NegativePlate(&symbol.Symbol{})
	assert.False(t, ok)
}

func TestIsCenterBridge(t *testing.T) {
	bridge := symbol.Polyline{Points: []r2.Vec{{X: -1.27, Y: 0}, {X: 1.27, Y: 0}}}
	assert.True(t, IsCenterBridge(bridge, symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax))

	// Off-axis lines and out-of-window spans are real drawing, not
	// the suppressed artifact.
	offAxis := symbol.Polyline{Points: []r2.Vec{{X: -1.27, Y: 0.5}, {X: 1.27, Y: 0.5}}}
	assert.False(t, IsCenterBridge(offAxis, symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax))

	short := symbol.Polyline{Points: []r2.Vec{{X: -0.5, Y: 0}, {X: 0.5, Y: 0}}}
	assert.False(t, IsCenterBridge(short, symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax))

	long := symbol.Polyline{Points: []r2.Vec{{X: -2, Y: 0}, {X: 2, Y: 0}}}
	assert.False(t, IsCenterBridge(long, symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax))

	threePt := symbol.Polyline{Points: []r2.Vec{{X: -1.27, Y: 0}, {X: 0, Y: 0}, {X: 1.27, Y: 0}}}
	assert.False(t, IsCenterBridge(threePt, symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax))
}
