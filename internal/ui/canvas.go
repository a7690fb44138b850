package ui

import (
	"math"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/render"
)

// drawPrimitives rasterizes emitted primitives through Gio ops. The
// camera maps the world frame; stroke widths scale with zoom but never
// drop below one pixel.
func drawPrimitives(gtx layout.Context, cam *render.Camera, shaper *text.Shaper, prims []render.Primitive) {
	for i := range prims {
		p := &prims[i]
		switch p.Kind {
		case render.KindLine:
			drawLine(gtx, cam, p)
		case render.KindPolygon:
			drawPolygon(gtx, cam, p)
		case render.KindText:
			drawText(gtx, cam, shaper, p)
		}
	}
}

func drawLine(gtx layout.Context, cam *render.Camera, p *render.Primitive) {
	if len(p.Points) < 2 {
		return
	}

	var path clip.Path
	path.Begin(gtx.Ops)
	x, y := cam.WorldToScreen(p.Points[0])
	path.MoveTo(f32.Pt(float32(x), float32(y)))
	for _, pt := range p.Points[1:] {
		x, y = cam.WorldToScreen(pt)
		path.LineTo(f32.Pt(float32(x), float32(y)))
	}

	width := p.StrokeWidth * cam.Zoom
	if width < 1 {
		width = 1
	}
	stroke := clip.Stroke{Path: path.End(), Width: float32(width)}.Op()
	paint.FillShape(gtx.Ops, p.Color, stroke)
}

func drawPolygon(gtx layout.Context, cam *render.Camera, p *render.Primitive) {
	if len(p.Points) < 3 {
		return
	}

	var path clip.Path
	path.Begin(gtx.Ops)
	x, y := cam.WorldToScreen(p.Points[0])
	path.MoveTo(f32.Pt(float32(x), float32(y)))
	for _, pt := range p.Points[1:] {
		x, y = cam.WorldToScreen(pt)
		path.LineTo(f32.Pt(float32(x), float32(y)))
	}
	path.Close()

	col := p.Color
	if p.FillOpacity < 1 {
		col.A = uint8(float64(col.A) * p.FillOpacity)
	}
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawText(gtx layout.Context, cam *render.Camera, shaper *text.Shaper, p *render.Primitive) {
	size := p.TextSize * cam.Zoom
	if size < 6 {
		// Too small to read; skip instead of smearing pixels.
		return
	}
	if size > 64 {
		size = 64
	}

	x, y := cam.WorldToScreen(p.Points[0])

	macro := op.Record(gtx.Ops)

	// The upright transform is stated in world axes; screen Y points
	// the other way, so the rotation sign flips and a Y flip becomes a
	// screen-space Y flip around the anchor.
	xf := f32.Affine2D{}
	if p.TextXf.RotationZ != 0 {
		xf = xf.Rotate(f32.Pt(0, 0), -float32(p.TextXf.RotationZ*math.Pi/180))
	}
	if p.TextXf.ScaleX != 1 || p.TextXf.ScaleY != 1 {
		xf = xf.Scale(f32.Pt(0, 0), f32.Pt(float32(p.TextXf.ScaleX), float32(p.TextXf.ScaleY)))
	}
	xf = xf.Offset(f32.Pt(float32(x), float32(y)))

	stack := op.Affine(xf).Push(gtx.Ops)
	paint.ColorOp{Color: p.Color}.Add(gtx.Ops)
	label := widget.Label{Alignment: text.Middle, MaxLines: 1}
	label.Layout(gtx, shaper, font.Font{}, unit.Sp(size), p.Text, op.CallOp{})
	stack.Pop()

	call := macro.Stop()
	call.Add(gtx.Ops)
}
