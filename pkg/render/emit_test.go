package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/glyph"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// testCatalog builds a minimal catalog with a resistor and diode as
// library-shaped symbols.
func testCatalog(t *testing.T) *symbol.Catalog {
	resistor := &symbol.Symbol{
		Name: "Device:R",
		Rectangles: []symbol.Rectangle{
			{Start: r2.Vec{X: -1, Y: -2.5}, End: r2.Vec{X: 1, Y: 2.5}},
		},
		Pins: []symbol.Pin{
			{Number: "1", Position: r2.Vec{Y: 3.8}, Body: r2.Vec{Y: 2.5}},
			{Number: "2", Position: r2.Vec{Y: -3.8}, Body: r2.Vec{Y: -2.5}},
		},
	}
	diode := &symbol.Symbol{
		Name: "Device:D",
		Polylines: []symbol.Polyline{
			{Points: []r2.Vec{{X: 1.27, Y: -1}, {X: 1.27, Y: 1}}},
			{Points: []r2.Vec{{X: -1.27, Y: -1}, {X: -1.27, Y: 1}, {X: 1.27, Y: 0}, {X: -1.27, Y: -1}}},
			// Library drawing artifact spanning the bridge window.
			{Points: []r2.Vec{{X: -1.27, Y: 0}, {X: 1.27, Y: 0}}},
		},
		Pins: []symbol.Pin{
			{Name: "A", Number: "1", Position: r2.Vec{X: -3.8}, Body: r2.Vec{X: -1.27}},
			{Name: "K", Number: "2", Position: r2.Vec{X: 3.8}, Body: r2.Vec{X: 1.27}},
		},
	}
	for _, s := range []*symbol.Symbol{resistor, diode} {
		computeTestBounds(s)
	}

	cat, err := symbol.BuildCatalog([]*symbol.Symbol{resistor, diode})
	require.NoError(t, err)
	return cat
}

func computeTestBounds(s *symbol.Symbol) {
	body := geom.NewBounds()
	for _, r := range s.Rectangles {
		body.Expand(r.Start)
		body.Expand(r.End)
	}
	for _, p := range s.Polylines {
		for _, pt := range p.Points {
			body.Expand(pt)
		}
	}
	s.BodyBounds = body
	full := body
	for _, pin := range s.Pins {
		full.Expand(pin.Position)
	}
	s.FullBounds = full
}

func testComponent() *schematic.Component {
	return &schematic.Component{
		ID: "r1", Designator: "R1", Family: "resistor",
		BodyWidth: 10, BodyHeight: 10,
		Pins: []schematic.Pin{
			{Number: "1", Side: geom.SideLeft, Offset: r2.Vec{X: -5}},
			{Number: "2", Side: geom.SideRight, Offset: r2.Vec{X: 5}},
		},
	}
}

func countKind(prims []Primitive, k Kind) int {
	n := 0
	for _, p := range prims {
		if p.Kind == k {
			n++
		}
	}
	return n
}

func TestComponentEmitsGlyphAndLeads(t *testing.T) {
	e := NewEmitter(testCatalog(t), glyph.NewTuningStore(), ThemeColors(ThemeLight))

	prims := e.Component(testComponent(), schematic.Position{})
	require.NotEmpty(t, prims)

	// Rectangle outline, two pin leads, designator text.
	assert.GreaterOrEqual(t, countKind(prims, KindLine), 3)
	assert.Equal(t, 1, countKind(prims, KindText))
}

func TestComponentGenericFallback(t *testing.T) {
	e := NewEmitter(nil, glyph.NewTuningStore(), ThemeColors(ThemeLight))

	comp := testComponent()
	prims := e.Component(comp, schematic.Position{})
	require.NotEmpty(t, prims)

	// Box outline plus one lead per pin plus the designator.
	assert.Equal(t, 1+len(comp.Pins), countKind(prims, KindLine))
	assert.Equal(t, 1, countKind(prims, KindText))
}

func TestDiodeBridgeSuppressedAndTriangleFilled(t *testing.T) {
	e := NewEmitter(testCatalog(t), glyph.NewTuningStore(), ThemeColors(ThemeLight))

	comp := &schematic.Component{
		ID: "d1", Designator: "D1", Family: "diode",
		Polarity:  schematic.PolarityAnodeCathode,
		BodyWidth: 10, BodyHeight: 10,
		Pins: []schematic.Pin{
			{Number: "1", Name: "A", Side: geom.SideLeft, Offset: r2.Vec{X: -5}},
			{Number: "2", Name: "K", Side: geom.SideRight, Offset: r2.Vec{X: 5}},
		},
	}
	prims := e.Component(comp, schematic.Position{})
	require.NotEmpty(t, prims)

	// The triangle fill is the only polygon; the bridge artifact line
	// is suppressed, leaving cathode bar + triangle outline + 2 leads.
	assert.Equal(t, 1, countKind(prims, KindPolygon))
	assert.Equal(t, 4, countKind(prims, KindLine))
}

func TestPortEmission(t *testing.T) {
	e := NewEmitter(nil, nil, ThemeColors(ThemeDark))

	ports, _ := schematic.DeriveViews(&schematic.Sheet{Path: "/"}, []schematic.InterfacePin{
		{Name: "BUS", Side: geom.SideLeft, Signals: []string{"sda", "scl"}},
	})
	require.Len(t, ports, 1)

	prims := e.Port(ports[0], schematic.Position{})
	// Body box + one stub per pin (2 signals + aggregate).
	assert.Equal(t, 4, countKind(prims, KindLine))
	// Two signal labels plus the port name.
	assert.Equal(t, 3, countKind(prims, KindText))
}

func TestPowerPortEmission(t *testing.T) {
	e := NewEmitter(nil, nil, ThemeColors(ThemeLight))

	ground := &schematic.PowerPort{ID: "g", NetName: "GND", Ground: true, Pin: schematic.Pin{Offset: r2.Vec{Y: 3}}}
	prims := e.PowerPort(ground, schematic.Position{})
	assert.Equal(t, 4, countKind(prims, KindLine), "stub plus three ground bars")
	assert.Zero(t, countKind(prims, KindText))

	rail := &schematic.PowerPort{ID: "v", NetName: "VCC", Pin: schematic.Pin{Offset: r2.Vec{Y: -3}}}
	prims = e.PowerPort(rail, schematic.Position{})
	assert.Equal(t, 2, countKind(prims, KindLine), "stub plus rail bar")
	assert.Equal(t, 1, countKind(prims, KindText))
}

func TestDesignatorStaysUpright(t *testing.T) {
	e := NewEmitter(nil, nil, ThemeColors(ThemeLight))

	comp := testComponent()
	prims := e.Component(comp, schematic.Position{Rotation: 180})
	var label *Primitive
	for i := range prims {
		if prims[i].Kind == KindText {
			label = &prims[i]
		}
	}
	require.NotNil(t, label)
	assert.Zero(t, label.TextXf.RotationZ)
	assert.Equal(t, -1.0, label.TextXf.ScaleX)
	assert.Equal(t, -1.0, label.TextXf.ScaleY)
}
