package schematic

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// Ports and power symbols are derived views: they are materialized
// every time a sheet is entered and are never part of the persisted
// document. Their ids are name-derived UUIDs so a position stored
// against a port survives re-derivation.

// Port is a sheet-boundary connector derived from one of the wrapping
// module's interface pins.
type Port struct {
	ID          string
	Name        string
	Side        geom.Side
	Signals     []string
	PassThrough bool
	BodyWidth   float64
	BodyHeight  float64
	Pins        []Pin
}

// Breakout reports whether the port exposes two or more independent
// signals.
func (p *Port) Breakout() bool {
	return len(p.Signals) >= 2
}

// PowerPort is a power or ground symbol derived from a power net. One
// symbol is materialized per net member so every pin gets its own
// rail/ground reference next to it.
type PowerPort struct {
	ID      string
	NetName string
	Ground  bool
	Target  PinRef
	Pin     Pin
}

// viewNamespace scopes the name-derived UUIDs of ephemeral views.
var viewNamespace = uuid.MustParse("8a6e1f74-2a41-4b6f-9d7c-5f3f6c1b2e90")

func viewID(kind, name string) string {
	return uuid.NewSHA1(viewNamespace, []byte(kind+":"+name)).String()
}

// DeriveViews materializes the port and power-symbol views for one
// sheet. The interface pins are those of the module wrapping the sheet
// (nil for the root sheet, which has no boundary ports).
func DeriveViews(sheet *Sheet, iface []InterfacePin) ([]*Port, []*PowerPort) {
	var ports []*Port
	for _, ip := range iface {
		ports = append(ports, derivePort(ip))
	}

	var powerPorts []*PowerPort
	for _, net := range sheet.Nets {
		ground := net.IsGround()
		if !ground && !net.IsPower() {
			continue
		}
		for _, member := range net.Members {
			if !member.Local() {
				continue
			}
			if sheet.ComponentByDesignator(member.Designator) == nil {
				continue
			}
			powerPorts = append(powerPorts, derivePowerPort(net, ground, member))
		}
	}

	return ports, powerPorts
}

func derivePort(ip InterfacePin) *Port {
	port := &Port{
		ID:          viewID("port", ip.Name),
		Name:        ip.Name,
		Side:        ip.Side,
		Signals:     ip.Signals,
		PassThrough: ip.PassThrough,
		BodyWidth:   2 * geom.GridPitch,
		BodyHeight:  geom.GridPitch,
	}

	inward := ip.Side.Opposite()
	stub := port.BodyWidth/2 + geom.GridPitch

	switch {
	case port.Breakout():
		// One stub per signal on the inward edge, stacked on the grid,
		// plus the aggregate line-level pin on the declared side.
		port.BodyHeight = float64(len(ip.Signals)+1) * geom.GridPitch
		top := float64(len(ip.Signals)-1) / 2 * geom.GridPitch
		for i, sig := range ip.Signals {
			y := top - float64(i)*geom.GridPitch
			base := r2.Scale(stub, inward.Outward())
			body := r2.Scale(port.BodyWidth/2, inward.Outward())
			port.Pins = append(port.Pins, Pin{
				Number: fmt.Sprintf("%d", i+1),
				Name:   sig,
				Side:   inward,
				Offset: r2.Vec{X: base.X, Y: base.Y + y},
				Body:   r2.Vec{X: body.X, Y: body.Y + y},
			})
		}
		port.Pins = append(port.Pins, Pin{
			Number: "COM",
			Name:   ip.Name,
			Side:   ip.Side,
			Offset: r2.Scale(stub, ip.Side.Outward()),
			Body:   r2.Scale(port.BodyWidth/2, ip.Side.Outward()),
		})

	case ip.PassThrough:
		// Two opposite-facing anchors bridging the hierarchy boundary.
		port.Pins = append(port.Pins,
			Pin{
				Number: "1",
				Name:   ip.Name,
				Side:   ip.Side,
				Offset: r2.Scale(stub, ip.Side.Outward()),
				Body:   r2.Scale(port.BodyWidth/2, ip.Side.Outward()),
			},
			Pin{
				Number: "2",
				Name:   ip.Name,
				Side:   inward,
				Offset: r2.Scale(stub, inward.Outward()),
				Body:   r2.Scale(port.BodyWidth/2, inward.Outward()),
			},
		)

	default:
		name := ip.Name
		if len(ip.Signals) == 1 {
			name = ip.Signals[0]
		}
		port.Pins = append(port.Pins, Pin{
			Number: "1",
			Name:   name,
			Side:   inward,
			Offset: r2.Scale(stub, inward.Outward()),
			Body:   r2.Scale(port.BodyWidth/2, inward.Outward()),
		})
	}

	return port
}

func derivePowerPort(net *Net, ground bool, target PinRef) *PowerPort {
	// Ground symbols hang below their pin and connect upward; rail
	// symbols sit above and connect downward. Both are always upright.
	pinSide := geom.SideTop
	if !ground {
		pinSide = geom.SideBottom
	}
	return &PowerPort{
		ID:      viewID("power", net.Name+":"+target.String()),
		NetName: net.Name,
		Ground:  ground,
		Target:  target,
		Pin: Pin{
			Number: "1",
			Name:   net.Name,
			Side:   pinSide,
			Offset: r2.Scale(geom.GridPitch, pinSide.Outward()),
			Body:   r2.Vec{},
		},
	}
}
