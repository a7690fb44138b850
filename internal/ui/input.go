package ui

import (
	"fmt"
	"math"
	"os"

	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/render"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

func (v *Viewer) handleInput(gtx layout.Context) {
	if v.openBtn.Clicked(gtx) {
		v.openFilePicker()
	}
	if v.fitBtn.Clicked(gtx) {
		v.fitToView()
	}
	if v.upBtn.Clicked(gtx) {
		v.goUp()
	}
	if v.themeMenu != nil && v.themeBtn.Clicked(gtx) {
		v.themeMenu.ToggleVisibility(gtx)
	}

	v.handleKeys(gtx)
	v.handlePointer(gtx)
}

func (v *Viewer) handleKeys(gtx layout.Context) {
	type binding struct {
		filter key.Filter
		action func()
	}
	bindings := []binding{
		{key.Filter{Name: "O", Required: key.ModShortcut}, v.openFilePicker},
		{key.Filter{Name: "T", Required: key.ModShortcut}, v.toggleTheme},
		{key.Filter{Name: "F"}, v.fitToView},
		{key.Filter{Name: "U"}, v.goUp},
		{key.Filter{Name: key.NameReturn}, v.enterSelection},
		{key.Filter{Name: "R"}, v.rotateSelection},
		{key.Filter{Name: "M"}, v.mirrorSelection},
		{key.Filter{Name: "Q"}, func() { os.Exit(0) }},
		{key.Filter{Name: key.NameEscape}, func() { os.Exit(0) }},
	}

	for _, b := range bindings {
		for {
			ev, ok := gtx.Event(b.filter)
			if !ok {
				break
			}
			if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
				b.action()
			}
		}
	}
}

func (v *Viewer) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Kinds: pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons != pointer.ButtonPrimary {
				break
			}
			v.lastPointer = pe.Position
			v.dragStart = pe.Position
			if id, pos, ok := v.hitTest(pe.Position); ok {
				v.dragItem = id
				v.dragOrigin = pos
				v.dragPos = pos
				v.dragMoved = false
			} else {
				v.panning = true
			}

		case pointer.Drag:
			if pe.Buttons != pointer.ButtonPrimary {
				break
			}
			if v.dragItem != "" {
				v.updateDrag(pe.Position)
			} else if v.panning {
				v.camera.Pan(float64(pe.Position.X-v.lastPointer.X), float64(pe.Position.Y-v.lastPointer.Y))
			}
			v.lastPointer = pe.Position
			v.window.Invalidate()

		case pointer.Release:
			if v.dragItem != "" {
				if v.dragMoved {
					v.commitDrag()
				} else {
					// Under the movement threshold: plain selection.
					v.selectItem(v.dragItem)
				}
				v.dragItem = ""
				v.window.Invalidate()
			}
			v.panning = false

		case pointer.Scroll:
			factor := 1.0 + float64(pe.Scroll.Y)*0.1
			v.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
			v.window.Invalidate()
		}
	}
}

// updateDrag holds the candidate position in transient, ungridded
// state; the grid snap happens only at commit.
func (v *Viewer) updateDrag(p f32.Point) {
	dx := float64(p.X - v.dragStart.X)
	dy := float64(p.Y - v.dragStart.Y)
	if math.Hypot(dx, dy) > dragThreshold {
		v.dragMoved = true
	}

	v.dragPos = v.dragOrigin
	v.dragPos.X += dx / v.camera.Zoom
	v.dragPos.Y -= dy / v.camera.Zoom
}

// hitTest finds the topmost item under a screen point, checking ports
// and power symbols before components and modules.
func (v *Viewer) hitTest(p f32.Point) (string, schematic.Position, bool) {
	sheet := v.currentSheet()
	if sheet == nil {
		return "", schematic.Position{}, false
	}
	world := v.camera.ScreenToWorld(float64(p.X), float64(p.Y))

	for _, pp := range v.powerPorts {
		pos := v.positionFor(pp.ID)
		if hitBox(world, pos.Vec(), geom.GridPitch*2, geom.GridPitch*2) {
			return pp.ID, pos, true
		}
	}
	for _, port := range v.ports {
		pos := v.positionFor(port.ID)
		if hitBox(world, pos.Vec(), port.BodyWidth, port.BodyHeight) {
			return port.ID, pos, true
		}
	}
	for _, c := range sheet.Components {
		pos := v.positionFor(c.ID)
		w, h := c.BodyWidth, c.BodyHeight
		if w == 0 {
			w = 2 * geom.GridPitch
		}
		if h == 0 {
			h = 2 * geom.GridPitch
		}
		// Rotation swaps the extents; a square cover is close enough
		// for picking.
		if pos.Rotation == 90 || pos.Rotation == 270 {
			w, h = h, w
		}
		if hitBox(world, pos.Vec(), w, h) {
			return c.ID, pos, true
		}
	}
	for _, m := range sheet.Modules {
		pos := v.positionFor(m.ID)
		w, h := render.ModuleSize(m)
		if hitBox(world, pos.Vec(), w, h) {
			return m.ID, pos, true
		}
	}

	return "", schematic.Position{}, false
}

// selectItem records the selection and forwards any source reference
// the item carries.
func (v *Viewer) selectItem(id string) {
	v.selection = id
	if v.onSourceRef == nil {
		return
	}
	sheet := v.currentSheet()
	if sheet == nil {
		return
	}
	if c := sheet.ComponentByID(id); c != nil && c.Source != nil {
		v.onSourceRef(*c.Source)
	} else if m := sheet.ModuleByID(id); m != nil && m.Source != nil {
		v.onSourceRef(*m.Source)
	}
}

// enterSelection descends into the selected module, if the selection
// is one.
func (v *Viewer) enterSelection() {
	sheet := v.currentSheet()
	if sheet == nil || v.selection == "" {
		return
	}
	if sheet.ModuleByID(v.selection) != nil {
		v.enterModule(v.selection)
	}
}

func hitBox(p, center r2.Vec, w, h float64) bool {
	return math.Abs(p.X-center.X) <= w/2 && math.Abs(p.Y-center.Y) <= h/2
}

func (v *Viewer) layoutUI(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, v.colors.Background)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(v.layoutToolbar),
		layout.Flexed(1, v.layoutCanvas),
	)
}

func (v *Viewer) layoutToolbar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Top: 8, Bottom: 8, Left: 8, Right: 8}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(v.theme, &v.openBtn, "Open (Ctrl+O)").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(v.theme, &v.upBtn, "Up (U)").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(v.theme, &v.fitBtn, "Fit (F)").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						dims := material.Button(v.theme, &v.themeBtn, "Theme: "+v.colorTheme.String()).Layout(gtx)
						if v.themeMenu != nil {
							v.themeMenu.Layout(gtx, v.gvTheme)
						}
						return dims
					}),
				)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return material.Body1(v.theme, v.statusLine()).Layout(gtx)
			}),
		)
	})
}

func (v *Viewer) statusLine() string {
	sheet := v.currentSheet()
	if sheet == nil {
		return "No document loaded"
	}
	status := fmt.Sprintf("%s | Components: %d | Nets: %d | Zoom: %.1fx",
		v.sheetPath, len(sheet.Components), len(sheet.Nets), v.camera.Zoom/10)
	if v.selection != "" {
		status += " | Selected: " + v.selectionLabel(sheet)
	}
	return status
}

func (v *Viewer) selectionLabel(sheet *schematic.Sheet) string {
	for _, c := range sheet.Components {
		if c.ID == v.selection {
			if c.Source != nil {
				// Source references are forwarded verbatim; the viewer
				// never resolves them.
				return fmt.Sprintf("%s (%s:%d)", c.Designator, c.Source.File, c.Source.Line)
			}
			return c.Designator
		}
	}
	for _, m := range sheet.Modules {
		if m.ID == v.selection {
			return m.Name
		}
	}
	return v.selection
}

func (v *Viewer) layoutCanvas(gtx layout.Context) layout.Dimensions {
	sheet := v.currentSheet()
	if sheet == nil {
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(material.H4(v.theme, "OpenTraceSchem").Layout),
				layout.Rigid(layout.Spacer{Height: 16}.Layout),
				layout.Rigid(material.Body1(v.theme, "Open a schematic document (Ctrl+O) or launch with: otsch view <doc.json>").Layout),
				layout.Rigid(layout.Spacer{Height: 8}.Layout),
				layout.Rigid(material.Body2(v.theme, "Drag to pan or move items | Scroll to zoom | R rotate | M mirror | Enter descend | U up | Q quit").Layout),
			)
		})
	}

	v.renderSheet(gtx, sheet)
	return layout.Dimensions{Size: gtx.Constraints.Max}
}

// renderSheet emits and draws the whole visible sheet: wires under
// glyphs, then ports and power symbols on top.
func (v *Viewer) renderSheet(gtx layout.Context, sheet *schematic.Sheet) {
	var prims []render.Primitive

	prims = append(prims, v.wirePrimitives(sheet)...)

	for _, m := range sheet.Modules {
		prims = append(prims, v.emitter.Module(m, v.positionFor(m.ID))...)
	}
	for _, c := range sheet.Components {
		prims = append(prims, v.emitter.Component(c, v.positionFor(c.ID))...)
	}
	for _, port := range v.ports {
		prims = append(prims, v.emitter.Port(port, v.positionFor(port.ID))...)
	}
	for _, pp := range v.powerPorts {
		prims = append(prims, v.emitter.PowerPort(pp, v.positionFor(pp.ID))...)
	}

	drawPrimitives(gtx, v.camera, v.theme.Shaper, prims)
}

// wirePrimitives draws each net: a manual route override when one is
// stored, a plain point-to-point airline otherwise. Power and ground
// nets are omitted because their members carry power symbols instead.
func (v *Viewer) wirePrimitives(sheet *schematic.Sheet) []render.Primitive {
	var prims []render.Primitive
	for _, net := range sheet.Nets {
		if net.IsPower() || net.IsGround() {
			continue
		}

		if route, ok := v.doc.RouteOverrides[schematic.PositionKey(v.sheetPath, net.Name)]; ok && len(route) >= 2 {
			prims = append(prims, v.emitter.Wire(route))
			continue
		}

		var pts []r2.Vec
		for _, m := range net.Members {
			if !m.Local() {
				continue
			}
			if world, ok := v.memberWorld(sheet, m); ok {
				pts = append(pts, world)
			}
		}
		if len(pts) >= 2 {
			prims = append(prims, v.emitter.Wire(pts))
		}
	}
	return prims
}

// memberWorld resolves one net member to the world point its wire
// should touch.
func (v *Viewer) memberWorld(sheet *schematic.Sheet, m schematic.PinRef) (r2.Vec, bool) {
	if c := sheet.ComponentByDesignator(m.Designator); c != nil {
		pin := c.PinByNumber(m.Pin)
		if pin == nil {
			return r2.Vec{}, false
		}
		world, _ := schematic.NormalizedPinGeometry(c, v.positionFor(c.ID), pin)
		return world, true
	}

	for _, port := range v.ports {
		if port.Name != m.Designator {
			continue
		}
		pos := v.positionFor(port.ID)
		for i := range port.Pins {
			if port.Pins[i].Name == m.Pin || m.Pin == "" || len(port.Pins) == 1 {
				offset := geom.TransformOffset(port.Pins[i].Offset, pos.Rotation, pos.MirrorX, pos.MirrorY)
				return r2.Add(pos.Vec(), offset), true
			}
		}
		return pos.Vec(), true
	}

	if mod := sheet.ModuleByID(m.Designator); mod != nil {
		return v.positionFor(mod.ID).Vec(), true
	}

	return r2.Vec{}, false
}
