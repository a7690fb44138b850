package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/glyph"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// Stroke widths and text sizes, in world units.
const (
	outlineWidth   = 0.25
	leadWidth      = 0.2
	wireWidth      = 0.15
	designatorSize = 2.0
	pinNameSize    = 1.3
	circleSegments = 24
)

// Emitter converts placed schematic items into primitives. It holds
// the catalog and the injected tuning store; per-item caching keyed by
// the store revision is left to callers.
type Emitter struct {
	catalog *symbol.Catalog
	store   *glyph.TuningStore
	colors  *Colors
}

// NewEmitter builds an emitter. The catalog may be nil, in which case
// everything renders through the generic fallback path.
func NewEmitter(catalog *symbol.Catalog, store *glyph.TuningStore, colors *Colors) *Emitter {
	return &Emitter{catalog: catalog, store: store, colors: colors}
}

// Component emits the full primitive set for one placed component:
// glyph outline, derived fills, pin leads, and the designator label.
func (e *Emitter) Component(c *schematic.Component, placement schematic.Position) []Primitive {
	fam := symbol.InferFamily(c)
	sym := e.lookupSymbol(c, fam)
	tun := e.tuning(fam)

	tr := glyph.DeriveTransform(c, fam, sym, tun)
	if tr == nil {
		if prims, ok := e.parametricComponent(c, fam, placement); ok {
			return prims
		}
		return e.genericComponent(c, placement)
	}

	var prims []Primitive
	prims = append(prims, e.glyphBody(c, fam, sym, tr, placement)...)
	prims = append(prims, e.pinLeads(c, fam, sym, tr, tun, placement)...)
	prims = append(prims, e.designator(c, placement))
	return prims
}

func (e *Emitter) lookupSymbol(c *schematic.Component, fam symbol.Family) *symbol.Symbol {
	if e.catalog == nil {
		return nil
	}
	if fam != symbol.FamilyNone {
		return e.catalog.Lookup(fam, len(c.Pins))
	}
	return e.catalog.Lookup(symbol.FamilyConnector, len(c.Pins))
}

func (e *Emitter) tuning(fam symbol.Family) glyph.Tuning {
	if e.store == nil {
		return glyph.Tuning{BodyScale: r2.Vec{X: 1, Y: 1}}
	}
	return e.store.Tuning(fam)
}

// glyphBody emits the transformed canonical drawing: polylines minus
// the center-bridge artifact, rectangles, tessellated circles and
// arcs, plus the family fills.
func (e *Emitter) glyphBody(c *schematic.Component, fam symbol.Family, sym *symbol.Symbol, tr *glyph.Transform, placement schematic.Position) []Primitive {
	var prims []Primitive

	world := func(p r2.Vec) r2.Vec {
		return e.toWorld(c, placement, glyph.TransformBodyPoint(p, tr))
	}

	spanMin, spanMax := e.bridgeSpan()
	for _, poly := range sym.Polylines {
		if (fam == symbol.FamilyDiode || fam == symbol.FamilyLED) &&
			glyph.IsCenterBridge(poly, spanMin, spanMax) {
			continue
		}
		prims = append(prims, Line(mapPoints(poly.Points, world), e.colors.GlyphOutline, outlineWidth))
	}

	for _, rect := range sym.Rectangles {
		pts := mapPoints(rectCorners(rect), world)
		if rect.Filled {
			prims = append(prims, Polygon(pts, e.colors.GlyphFill, 1))
		}
		prims = append(prims, Line(append(pts, pts[0]), e.colors.GlyphOutline, outlineWidth))
	}

	for _, circ := range sym.Circles {
		pts := mapPoints(tessellateCircle(circ), world)
		if circ.Filled {
			prims = append(prims, Polygon(pts, e.colors.GlyphFill, 1))
		}
		prims = append(prims, Line(append(pts, pts[0]), e.colors.GlyphOutline, outlineWidth))
	}

	for _, arc := range sym.Arcs {
		prims = append(prims, Line(mapPoints(tessellateArc(arc), world), e.colors.GlyphOutline, outlineWidth))
	}

	// Derived family fills.
	if fam == symbol.FamilyDiode || fam == symbol.FamilyLED {
		if tri, ok := glyph.TriangleFill(sym); ok {
			prims = append(prims, Polygon(mapPoints(tri[:], world), e.colors.GlyphOutline, 1))
		}
	}
	if fam == symbol.FamilyCapacitorPolarized {
		if plate, ok := glyph.NegativePlate(sym); ok {
			pts := mapPoints(rectCorners(plate), world)
			prims = append(prims, Polygon(pts, e.colors.GlyphOutline, glyph.NegativePlateOpacity))
		}
	}

	return prims
}

func (e *Emitter) bridgeSpan() (float64, float64) {
	if e.catalog != nil {
		return e.catalog.BridgeSpanMin, e.catalog.BridgeSpanMax
	}
	return symbol.DefaultBridgeSpanMin, symbol.DefaultBridgeSpanMax
}

// pinLeads emits one lead per component pin, from the grid-snapped pin
// point to the resolved attachment on the glyph. Unmapped pins keep
// their default body geometry.
func (e *Emitter) pinLeads(c *schematic.Component, fam symbol.Family, sym *symbol.Symbol, tr *glyph.Transform, tun glyph.Tuning, placement schematic.Position) []Primitive {
	attach := glyph.ResolveAttachments(c, fam, sym, tr)

	var prims []Primitive
	for i := range c.Pins {
		pin := &c.Pins[i]
		pinWorld, bodyWorld := schematic.NormalizedPinGeometry(c, placement, pin)

		if local, ok := attach[pin.Number]; ok {
			local = glyph.TunedPinGeometry(pin.Offset, local, tr, tun)
			bodyWorld = e.toWorld(c, placement, local)
		}
		prims = append(prims, Line([]r2.Vec{pinWorld, bodyWorld}, e.colors.Lead, leadWidth))
	}
	return prims
}

// parametricComponent draws a two-pin basic family without a catalog
// symbol: a hardcoded shape spanning the gap between the two pins.
// Anything it cannot handle falls through to the generic box.
func (e *Emitter) parametricComponent(c *schematic.Component, fam symbol.Family, placement schematic.Position) ([]Primitive, bool) {
	if len(c.Pins) != 2 {
		return nil, false
	}

	a, _ := schematic.NormalizedPinGeometry(c, placement, &c.Pins[0])
	b, _ := schematic.NormalizedPinGeometry(c, placement, &c.Pins[1])
	axis := r2.Sub(b, a)
	span := math.Hypot(axis.X, axis.Y)
	if span < 1e-9 {
		return nil, false
	}
	dir := r2.Scale(1/span, axis)
	perp := r2.Vec{X: -dir.Y, Y: dir.X}
	mid := r2.Scale(0.5, r2.Add(a, b))

	at := func(along, across float64) r2.Vec {
		return r2.Add(mid, r2.Add(r2.Scale(along, dir), r2.Scale(across, perp)))
	}

	var prims []Primitive
	line := func(pts ...r2.Vec) {
		prims = append(prims, Line(pts, e.colors.GlyphOutline, outlineWidth))
	}
	lead := func(pts ...r2.Vec) {
		prims = append(prims, Line(pts, e.colors.Lead, leadWidth))
	}

	switch fam {
	case symbol.FamilyResistor:
		half, wide := span*0.3, geom.GridPitch*0.4
		line(at(-half, -wide), at(half, -wide), at(half, wide), at(-half, wide), at(-half, -wide))
		lead(a, at(-half, 0))
		lead(at(half, 0), b)

	case symbol.FamilyCapacitor, symbol.FamilyCapacitorPolarized:
		gap, plate := span*0.08, geom.GridPitch*0.7
		line(at(-gap, -plate), at(-gap, plate))
		line(at(gap, -plate), at(gap, plate))
		lead(a, at(-gap, 0))
		lead(at(gap, 0), b)
		if fam == symbol.FamilyCapacitorPolarized {
			prims = append(prims, Polygon([]r2.Vec{
				at(gap, -plate), at(gap+outlineWidth*2, -plate),
				at(gap+outlineWidth*2, plate), at(gap, plate),
			}, e.colors.GlyphOutline, glyph.NegativePlateOpacity))
		}

	case symbol.FamilyInductor:
		half := span * 0.3
		for i := 0; i < 4; i++ {
			arc := symbol.Arc{
				Start: at(-half+float64(i)*half/2, 0),
				Mid:   at(-half+(float64(i)+0.5)*half/2, geom.GridPitch*0.4),
				End:   at(-half+(float64(i)+1)*half/2, 0),
			}
			line(tessellateArc(arc)...)
		}
		lead(a, at(-half, 0))
		lead(at(half, 0), b)

	case symbol.FamilyDiode, symbol.FamilyLED:
		half, wide := span*0.2, geom.GridPitch*0.5
		tri := []r2.Vec{at(-half, -wide), at(-half, wide), at(half, 0)}
		prims = append(prims, Polygon(tri, e.colors.GlyphOutline, 1))
		line(append(tri, tri[0])...)
		line(at(half, -wide), at(half, wide))
		lead(a, at(-half, 0))
		lead(at(half, 0), b)

	default:
		return nil, false
	}

	prims = append(prims, e.designator(c, placement))
	return prims, true
}

// genericComponent is the low-fidelity fallback for catalog misses and
// degenerate symbols: a plain body box, default pin stubs, and the
// designator.
func (e *Emitter) genericComponent(c *schematic.Component, placement schematic.Position) []Primitive {
	var prims []Primitive

	w, h := c.BodyWidth/2, c.BodyHeight/2
	if w == 0 {
		w = geom.GridPitch
	}
	if h == 0 {
		h = geom.GridPitch
	}
	corners := []r2.Vec{{X: -w, Y: -h}, {X: w, Y: -h}, {X: w, Y: h}, {X: -w, Y: h}}
	pts := make([]r2.Vec, 0, 5)
	for _, p := range corners {
		pts = append(pts, e.toWorld(c, placement, p))
	}
	pts = append(pts, pts[0])
	prims = append(prims, Line(pts, e.colors.GlyphOutline, outlineWidth))

	for i := range c.Pins {
		pinWorld, bodyWorld := schematic.NormalizedPinGeometry(c, placement, &c.Pins[i])
		prims = append(prims, Line([]r2.Vec{pinWorld, bodyWorld}, e.colors.Lead, leadWidth))
	}

	prims = append(prims, e.designator(c, placement))
	return prims
}

// designator places the reference label above the body, kept upright
// for every orientation.
func (e *Emitter) designator(c *schematic.Component, placement schematic.Position) Primitive {
	pos := r2.Add(placement.Vec(), r2.Vec{Y: c.BodyHeight/2 + geom.GridPitch})
	xf := geom.UprightTextTransform(placement.Rotation, placement.MirrorX, placement.MirrorY)
	return Text(pos, c.Designator, e.colors.Designator, designatorSize, xf)
}

// ModuleSize returns the drawn body box for a module: a fixed width
// with height growing by interface pin count.
func ModuleSize(m *schematic.Module) (float64, float64) {
	w := 8 * geom.GridPitch
	h := 6 * geom.GridPitch
	if need := float64(len(m.Interface)+1) * 2 * geom.GridPitch; need > h {
		h = need
	}
	return w, h
}

// Module emits a nested-sheet box: outline, one stub per interface
// pin, and the module name.
func (e *Emitter) Module(m *schematic.Module, placement schematic.Position) []Primitive {
	w, h := ModuleSize(m)
	half := r2.Vec{X: w / 2, Y: h / 2}

	var prims []Primitive
	corners := []r2.Vec{{X: -half.X, Y: -half.Y}, {X: half.X, Y: -half.Y}, {X: half.X, Y: half.Y}, {X: -half.X, Y: half.Y}}
	pts := make([]r2.Vec, 0, 5)
	for _, corner := range corners {
		pts = append(pts, r2.Add(placement.Vec(), geom.TransformOffset(corner, placement.Rotation, placement.MirrorX, placement.MirrorY)))
	}
	pts = append(pts, pts[0])
	prims = append(prims, Line(pts, e.colors.GlyphOutline, outlineWidth))

	xf := geom.UprightTextTransform(placement.Rotation, placement.MirrorX, placement.MirrorY)
	for i, ip := range m.Interface {
		edge := r2.Scale(half.X, ip.Side.Outward())
		if ip.Side == geom.SideTop || ip.Side == geom.SideBottom {
			edge = r2.Scale(half.Y, ip.Side.Outward())
		}
		// Stagger pins sharing a side down the edge.
		slot := r2.Vec{Y: half.Y - float64(i+1)*2*geom.GridPitch}
		if ip.Side == geom.SideTop || ip.Side == geom.SideBottom {
			slot = r2.Vec{X: -half.X + float64(i+1)*2*geom.GridPitch}
		}
		start := r2.Add(edge, slot)
		end := r2.Add(start, r2.Scale(geom.GridPitch, ip.Side.Outward()))

		a := r2.Add(placement.Vec(), geom.TransformOffset(start, placement.Rotation, placement.MirrorX, placement.MirrorY))
		b := r2.Add(placement.Vec(), geom.TransformOffset(end, placement.Rotation, placement.MirrorX, placement.MirrorY))
		prims = append(prims, Line([]r2.Vec{a, b}, e.colors.Lead, leadWidth))
		prims = append(prims, Text(a, ip.Name, e.colors.PinName, pinNameSize, xf))
	}

	label := r2.Add(placement.Vec(), r2.Vec{Y: half.Y + geom.GridPitch})
	prims = append(prims, Text(label, m.Name, e.colors.Designator, designatorSize, xf))
	return prims
}

// Port emits the primitives for one derived port view: body box, the
// connection stubs, and the name label.
func (e *Emitter) Port(p *schematic.Port, placement schematic.Position) []Primitive {
	var prims []Primitive

	w, h := p.BodyWidth/2, p.BodyHeight/2
	corners := []r2.Vec{{X: -w, Y: -h}, {X: w, Y: -h}, {X: w, Y: h}, {X: -w, Y: h}}
	pts := make([]r2.Vec, 0, 5)
	for _, corner := range corners {
		world := r2.Add(placement.Vec(), geom.TransformOffset(corner, placement.Rotation, placement.MirrorX, placement.MirrorY))
		pts = append(pts, world)
	}
	pts = append(pts, pts[0])
	prims = append(prims, Line(pts, e.colors.Port, outlineWidth))

	for i := range p.Pins {
		pin := &p.Pins[i]
		start := r2.Add(placement.Vec(), geom.TransformOffset(pin.Body, placement.Rotation, placement.MirrorX, placement.MirrorY))
		end := r2.Add(placement.Vec(), geom.TransformOffset(pin.Offset, placement.Rotation, placement.MirrorX, placement.MirrorY))
		prims = append(prims, Line([]r2.Vec{start, end}, e.colors.Port, leadWidth))

		if p.Breakout() && pin.Name != p.Name {
			xf := geom.UprightTextTransform(placement.Rotation, placement.MirrorX, placement.MirrorY)
			prims = append(prims, Text(start, pin.Name, e.colors.PinName, pinNameSize, xf))
		}
	}

	xf := geom.UprightTextTransform(placement.Rotation, placement.MirrorX, placement.MirrorY)
	label := r2.Add(placement.Vec(), r2.Vec{Y: h + geom.GridPitch/2})
	prims = append(prims, Text(label, p.Name, e.colors.Label, designatorSize, xf))

	return prims
}

// PowerPort emits a rail or ground symbol: the lead stub plus the
// conventional bar drawing, with the net name label on rails.
func (e *Emitter) PowerPort(p *schematic.PowerPort, placement schematic.Position) []Primitive {
	col := e.colors.PowerRail
	if p.Ground {
		col = e.colors.Ground
	}

	center := placement.Vec()
	pin := r2.Add(center, p.Pin.Offset)

	prims := []Primitive{
		Line([]r2.Vec{pin, center}, col, leadWidth),
	}

	if p.Ground {
		// Three shrinking horizontal bars below the stub.
		widths := []float64{geom.GridPitch, geom.GridPitch * 0.6, geom.GridPitch * 0.25}
		for i, bw := range widths {
			y := center.Y - float64(i)*geom.GridPitch*0.35
			prims = append(prims, Line([]r2.Vec{{X: center.X - bw, Y: y}, {X: center.X + bw, Y: y}}, col, leadWidth))
		}
	} else {
		bw := geom.GridPitch
		prims = append(prims,
			Line([]r2.Vec{{X: center.X - bw, Y: center.Y}, {X: center.X + bw, Y: center.Y}}, col, leadWidth),
			Text(r2.Vec{X: center.X, Y: center.Y + geom.GridPitch/2}, p.NetName, col, pinNameSize, geom.TextTransform{ScaleX: 1, ScaleY: 1}),
		)
	}

	return prims
}

// Wire emits one net segment.
func (e *Emitter) Wire(points []r2.Vec) Primitive {
	return Line(points, e.colors.Wire, wireWidth)
}

// toWorld maps a component-frame point through the placement
// (mirror, rotation, translation) plus the whole-component grid
// alignment offset, so glyph geometry lands in the same frame as the
// normalized pins.
func (e *Emitter) toWorld(c *schematic.Component, placement schematic.Position, p r2.Vec) r2.Vec {
	world := r2.Add(placement.Vec(), geom.TransformOffset(p, placement.Rotation, placement.MirrorX, placement.MirrorY))
	return r2.Add(world, schematic.AlignmentOffset(c, placement))
}

func mapPoints(points []r2.Vec, f func(r2.Vec) r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = f(p)
	}
	return out
}

func rectCorners(r symbol.Rectangle) []r2.Vec {
	return []r2.Vec{
		r.Start,
		{X: r.End.X, Y: r.Start.Y},
		r.End,
		{X: r.Start.X, Y: r.End.Y},
	}
}

func tessellateCircle(c symbol.Circle) []r2.Vec {
	pts := make([]r2.Vec, circleSegments)
	for i := 0; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = r2.Vec{
			X: c.Center.X + c.Radius*math.Cos(a),
			Y: c.Center.Y + c.Radius*math.Sin(a),
		}
	}
	return pts
}

// tessellateArc renders a three-point arc as a polyline. The circle
// through the points is recovered from the perpendicular bisector
// intersection; collinear inputs degrade to a straight segment.
func tessellateArc(a symbol.Arc) []r2.Vec {
	center, ok := circumcenter(a.Start, a.Mid, a.End)
	if !ok {
		return []r2.Vec{a.Start, a.End}
	}

	radius := r2.Norm(r2.Sub(a.Start, center))
	start := math.Atan2(a.Start.Y-center.Y, a.Start.X-center.X)
	mid := math.Atan2(a.Mid.Y-center.Y, a.Mid.X-center.X)
	end := math.Atan2(a.End.Y-center.Y, a.End.X-center.X)

	// Sweep from start to end passing through mid.
	sweep := normalizeAngle(end - start)
	if normalizeAngle(mid-start) > sweep {
		sweep -= 2 * math.Pi
	}

	const steps = 16
	pts := make([]r2.Vec, steps+1)
	for i := 0; i <= steps; i++ {
		ang := start + sweep*float64(i)/steps
		pts[i] = r2.Vec{
			X: center.X + radius*math.Cos(ang),
			Y: center.Y + radius*math.Sin(ang),
		}
	}
	return pts
}

func normalizeAngle(a float64) float64 {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func circumcenter(p1, p2, p3 r2.Vec) (r2.Vec, bool) {
	d := 2 * (p1.X*(p2.Y-p3.Y) + p2.X*(p3.Y-p1.Y) + p3.X*(p1.Y-p2.Y))
	if math.Abs(d) < 1e-12 {
		return r2.Vec{}, false
	}
	s1 := p1.X*p1.X + p1.Y*p1.Y
	s2 := p2.X*p2.X + p2.Y*p2.Y
	s3 := p3.X*p3.X + p3.Y*p3.Y
	return r2.Vec{
		X: (s1*(p2.Y-p3.Y) + s2*(p3.Y-p1.Y) + s3*(p1.Y-p2.Y)) / d,
		Y: (s1*(p3.X-p2.X) + s2*(p1.X-p3.X) + s3*(p2.X-p1.X)) / d,
	}, true
}
