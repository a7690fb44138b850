// Package layout computes initial placements for one sheet: modules
// and components on a fixed column grid, decoupling capacitors in
// bands near the power pin they serve, and derived port views anchored
// to whatever their nets connect to. The engine is pure; callers merge
// its result into the persisted position overlay.
package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

// Grid placement constants. Column and row pitch are deliberately not
// multiples of the connection pitch; the final pass snaps everything.
const (
	Columns     = 4
	ColumnPitch = 70.0
	RowPitch    = 40.0
)

// Decoupler band constants: bands sit above the anchor pin, one band
// per power net, capacitors packed left to right within a band.
const (
	decouplerRise  = RowPitch / 2
	decouplerPitch = 15.0
	bandPitch      = 10.0
)

// Result is the computed layout for one sheet. Positions are keyed the
// same way as the persisted overlay. PortSignalOrders is the suggested
// breakout signal ordering side-output.
type Result struct {
	Positions        map[string]schematic.Position
	PortSignalOrders map[string][]string
}

type engine struct {
	sheet      *schematic.Sheet
	ports      []*schematic.Port
	powerPorts []*schematic.PowerPort

	positions map[string]schematic.Position
	orders    map[string][]string

	// anchorCount tracks how many ports already claimed an anchor
	// point, for perpendicular stacking.
	anchorCount map[string]int
}

// Run lays out one sheet and its derived views. Existing persisted
// positions are not consulted; callers decide whether to overwrite.
func Run(sheet *schematic.Sheet, ports []*schematic.Port, powerPorts []*schematic.PowerPort) *Result {
	e := &engine{
		sheet:       sheet,
		ports:       ports,
		powerPorts:  powerPorts,
		positions:   make(map[string]schematic.Position),
		orders:      make(map[string][]string),
		anchorCount: make(map[string]int),
	}

	e.placeGrid()
	e.placeDecouplers()
	e.placePorts()
	e.placePowerPorts()
	e.finalize()

	return &Result{Positions: e.positions, PortSignalOrders: e.orders}
}

func (e *engine) key(itemID string) string {
	return schematic.PositionKey(e.sheet.Path, itemID)
}

func (e *engine) set(itemID string, x, y, rotation float64) {
	e.positions[e.key(itemID)] = schematic.Position{X: x, Y: y, Rotation: rotation}
}

func (e *engine) placed(itemID string) (schematic.Position, bool) {
	p, ok := e.positions[e.key(itemID)]
	return p, ok
}

// placeGrid walks modules first, then non-decoupler components, and
// drops each onto the next cell of a fixed-width column grid. Rows
// grow downward.
func (e *engine) placeGrid() {
	cell := 0
	place := func(itemID string) {
		col := cell % Columns
		row := cell / Columns
		e.set(itemID, float64(col)*ColumnPitch, -float64(row)*RowPitch, 0)
		cell++
	}

	for _, m := range e.sheet.Modules {
		place(m.ID)
	}
	for _, c := range e.sheet.Components {
		if e.isDecoupler(c) {
			continue
		}
		place(c.ID)
	}
}

// isDecoupler reports whether a component is a decoupling capacitor:
// designator prefix "C" and membership in at least one power net. Caps
// outside any power net go onto the ordinary grid.
func (e *engine) isDecoupler(c *schematic.Component) bool {
	if c.DesignatorPrefix() != "C" {
		return false
	}
	for _, net := range e.sheet.Nets {
		if !net.IsPower() {
			continue
		}
		for _, m := range net.Members {
			if m.Local() && m.Designator == c.Designator {
				return true
			}
		}
	}
	return false
}

// placeDecouplers opens one band per power net that has decoupling
// capacitors, anchored above the first placed non-decoupler pin of the
// net, and packs the caps left to right.
func (e *engine) placeDecouplers() {
	band := 0
	for _, net := range e.sheet.Nets {
		if !net.IsPower() {
			continue
		}

		var caps []*schematic.Component
		for _, m := range net.Members {
			if !m.Local() {
				continue
			}
			c := e.sheet.ComponentByDesignator(m.Designator)
			if c != nil && e.isDecoupler(c) {
				caps = append(caps, c)
			}
		}
		if len(caps) == 0 {
			continue
		}

		anchor := e.bandAnchor(net)
		y := anchor.Y + decouplerRise + float64(band)*bandPitch
		for slot, c := range caps {
			e.set(c.ID, anchor.X+float64(slot)*decouplerPitch, y, 0)
		}
		band++
	}
}

// bandAnchor finds the world point of the first placed non-decoupler
// pin on a power net; the band opens above it. A net with no placed
// non-decoupler member anchors at the origin.
func (e *engine) bandAnchor(net *schematic.Net) r2.Vec {
	for _, m := range net.Members {
		if !m.Local() {
			continue
		}
		c := e.sheet.ComponentByDesignator(m.Designator)
		if c == nil || e.isDecoupler(c) {
			continue
		}
		pos, ok := e.placed(c.ID)
		if !ok {
			continue
		}
		if pin := c.PinByNumber(m.Pin); pin != nil {
			world, _ := schematic.PinWorldGeometry(c, pos, pin)
			return world
		}
		return pos.Vec()
	}
	return r2.Vec{}
}

// finalize snaps every placed position to the connection grid and
// normalizes every rotation into [0,360) in 90-degree steps.
func (e *engine) finalize() {
	for k, p := range e.positions {
		p.X = geom.Snap(p.X)
		p.Y = geom.Snap(p.Y)
		p.Rotation = geom.NormalizeRotation(p.Rotation)
		e.positions[k] = p
	}
}
