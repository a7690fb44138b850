package layout

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

// Port anchoring distances, in world units before the final snap.
const (
	portAnchorGap = 2 * geom.GridPitch
	powerDrop     = 3 * geom.GridPitch
	unplacedPitch = RowPitch / 2
)

// endpoint is a resolved net terminus a port can anchor against.
type endpoint struct {
	world   r2.Vec
	outward r2.Vec
}

// placePorts anchors every derived port against the other end of its
// net. Ports whose nets resolve to nothing stack in a spare column
// left of the grid.
func (e *engine) placePorts() {
	spare := 0
	for _, port := range e.ports {
		ep, ok := e.portEndpoint(port)
		if !ok {
			e.set(port.ID, -ColumnPitch, -float64(spare)*unplacedPitch, 0)
			spare++
			continue
		}

		pos := r2.Add(ep.world, r2.Scale(port.BodyWidth/2+portAnchorGap, ep.outward))

		// Ports sharing an anchor stack along the axis perpendicular
		// to the approach direction.
		anchorKey := fmt.Sprintf("%.3f,%.3f", geom.Snap(ep.world.X), geom.Snap(ep.world.Y))
		if n := e.anchorCount[anchorKey]; n > 0 {
			perp := r2.Vec{X: -ep.outward.Y, Y: ep.outward.X}
			pos = r2.Add(pos, r2.Scale(float64(n)*(port.BodyHeight+geom.GridPitch), perp))
		}
		e.anchorCount[anchorKey]++

		rot := choosePortRotation(port, r2.Sub(ep.world, pos))
		e.set(port.ID, pos.X, pos.Y, rot)

		if port.Breakout() {
			e.orderBreakoutSignals(port)
		}
	}
}

// portEndpoint resolves the other end of the first net touching the
// port. Already-placed pass-through ports are preferred as targets
// before plain components and modules, so chained boundary bridges
// line up before anything anchors onto a part.
func (e *engine) portEndpoint(port *schematic.Port) (endpoint, bool) {
	net := e.portNet(port)
	if net == nil {
		return endpoint{}, false
	}

	var compEP, modEP *endpoint
	for _, m := range net.Members {
		if !m.Local() || m.Designator == port.Name {
			continue
		}

		if other := e.portByName(m.Designator); other != nil {
			if pos, ok := e.placed(other.ID); ok && other.PassThrough {
				return endpoint{world: pos.Vec(), outward: other.Side.Outward()}, true
			}
			continue
		}

		if c := e.sheet.ComponentByDesignator(m.Designator); c != nil && compEP == nil {
			if ep, ok := e.componentEndpoint(c, m.Pin); ok {
				compEP = &ep
			}
			continue
		}

		if mod := e.sheet.ModuleByID(m.Designator); mod != nil && modEP == nil {
			if pos, ok := e.placed(mod.ID); ok {
				modEP = &endpoint{world: pos.Vec(), outward: r2.Vec{X: 1}}
			}
		}
	}

	if compEP != nil {
		return *compEP, true
	}
	if modEP != nil {
		return *modEP, true
	}
	return endpoint{}, false
}

// portNet returns the first sheet net with a member naming the port.
func (e *engine) portNet(port *schematic.Port) *schematic.Net {
	for _, net := range e.sheet.Nets {
		for _, m := range net.Members {
			if m.Local() && m.Designator == port.Name {
				return net
			}
		}
	}
	return nil
}

func (e *engine) portByName(name string) *schematic.Port {
	for _, p := range e.ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// componentEndpoint resolves a component pin reference to its world
// point and the direction leads exit it.
func (e *engine) componentEndpoint(c *schematic.Component, pinNumber string) (endpoint, bool) {
	pos, ok := e.placed(c.ID)
	if !ok {
		return endpoint{}, false
	}
	pin := c.PinByNumber(pinNumber)
	if pin == nil {
		return endpoint{world: pos.Vec(), outward: r2.Vec{X: 1}}, true
	}
	world, _ := schematic.PinWorldGeometry(c, pos, pin)
	side := geom.TransformSide(pin.Side, pos.Rotation, pos.MirrorX, pos.MirrorY)
	return endpoint{world: world, outward: side.Outward()}, true
}

// choosePortRotation scores the four 90-degree rotations by how well
// they point the port's connection pins at the target, and returns the
// best. Ties keep the smaller rotation.
func choosePortRotation(port *schematic.Port, toTarget r2.Vec) float64 {
	best := 0.0
	bestScore := portRotationScore(port, 0, toTarget)
	for _, rot := range []float64{90, 180, 270} {
		if score := portRotationScore(port, rot, toTarget); score > bestScore {
			best, bestScore = rot, score
		}
	}
	return best
}

func portRotationScore(port *schematic.Port, rot float64, toTarget r2.Vec) float64 {
	if len(port.Pins) == 0 {
		return 0
	}
	score := math.Inf(-1)
	for i := range port.Pins {
		d := r2.Dot(geom.TransformOffset(port.Pins[i].Offset, rot, false, false), toTarget)
		if d > score {
			score = d
		}
	}
	return score
}

// placePowerPorts drops each power symbol next to its single target
// pin: ground symbols hang straight below, rail symbols sit straight
// above. Power symbols are always upright.
func (e *engine) placePowerPorts() {
	for _, pp := range e.powerPorts {
		c := e.sheet.ComponentByDesignator(pp.Target.Designator)
		if c == nil {
			continue
		}
		ep, ok := e.componentEndpoint(c, pp.Target.Pin)
		if !ok {
			continue
		}

		y := ep.world.Y
		if pp.Ground {
			y -= powerDrop
		} else {
			y += powerDrop
		}
		e.set(pp.ID, ep.world.X, y, 0)
	}
}

// orderBreakoutSignals records the suggested signal ordering for a
// breakout port: signals sorted by the Y position of the net target
// each one connects to, topmost first. The persistence layer stores
// the order so manual wiring survives reloads.
func (e *engine) orderBreakoutSignals(port *schematic.Port) {
	type ranked struct {
		signal string
		y      float64
		index  int
	}

	rows := make([]ranked, len(port.Signals))
	for i, sig := range port.Signals {
		rows[i] = ranked{signal: sig, index: i}
		if ep, ok := e.signalEndpoint(port, sig); ok {
			rows[i].y = ep.world.Y
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].y != rows[b].y {
			return rows[a].y > rows[b].y
		}
		return rows[a].index < rows[b].index
	})

	order := make([]string, len(rows))
	for i, r := range rows {
		order[i] = r.signal
	}
	e.orders[port.ID] = order
}

// signalEndpoint resolves the target of one breakout signal: the first
// net member naming the port with that signal as its pin.
func (e *engine) signalEndpoint(port *schematic.Port, signal string) (endpoint, bool) {
	for _, net := range e.sheet.Nets {
		touches := false
		for _, m := range net.Members {
			if m.Local() && m.Designator == port.Name && m.Pin == signal {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		for _, m := range net.Members {
			if !m.Local() || m.Designator == port.Name {
				continue
			}
			if c := e.sheet.ComponentByDesignator(m.Designator); c != nil {
				if ep, ok := e.componentEndpoint(c, m.Pin); ok {
					return ep, true
				}
			}
		}
	}
	return endpoint{}, false
}
