// Package schematic defines the hierarchical schematic document model:
// sheets containing modules, leaf components, nets, and the derived
// port views materialized when a sheet is entered. The document itself
// is produced by an external build system and consumed here as JSON.
package schematic

import (
	"strings"
	"unicode"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// Polarity tags how a two-terminal component distinguishes its pins.
type Polarity string

const (
	PolarityNone         Polarity = ""
	PolarityAnodeCathode Polarity = "anode_cathode"
	PolarityPlusMinus    Polarity = "plus_minus"
	PolarityPin1         Polarity = "pin1"
)

// SourceRef points back into the build input that produced an item.
// It is forwarded unchanged to the host's open-source collaborator and
// never resolved here.
type SourceRef struct {
	File    string
	Line    int // 1-based
	Column  int // 1-based
	Address string
}

// Pin is a connection point on a component. The offset is relative to
// the component center in a Y-up frame; Body is where the lead stub
// meets the body outline before grid normalization.
type Pin struct {
	Number     string
	Name       string
	Side       geom.Side
	Electrical string
	Category   string
	Offset     r2.Vec
	Body       r2.Vec
}

// Component is a placed leaf part on a sheet. Pin numbers are unique
// within one component.
type Component struct {
	ID         string
	Name       string
	Designator string
	Reference  string
	Family     string // declared symbol family, may be empty
	Variant    string
	Package    string
	Polarity   Polarity
	BodyWidth  float64
	BodyHeight float64
	Pins       []Pin
	Source     *SourceRef
}

// DesignatorPrefix returns the leading letters of the designator,
// uppercased ("R3" -> "R", "tp12" -> "TP").
func (c *Component) DesignatorPrefix() string {
	var b strings.Builder
	for _, r := range c.Designator {
		if !unicode.IsLetter(r) {
			break
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// PinByNumber returns the pin with the given number, or nil.
func (c *Component) PinByNumber(number string) *Pin {
	for i := range c.Pins {
		if c.Pins[i].Number == number {
			return &c.Pins[i]
		}
	}
	return nil
}

// InterfacePin is one external connection of a module. Interface pins
// become Ports of the wrapped sheet when it is entered.
type InterfacePin struct {
	Name        string
	Side        geom.Side
	Signals     []string // two or more make a breakout port
	PassThrough bool
}

// Module wraps a nested sheet plus its interface pins.
type Module struct {
	ID        string
	Name      string
	Sheet     *Sheet
	Interface []InterfacePin
	Source    *SourceRef
}

// Net is a set of pin references across components and modules of one
// sheet.
type Net struct {
	Name    string
	Members []PinRef
}

// powerPrefixes and groundNames drive the power/ground classification
// used for decoupler bands and derived power symbols.
var groundNames = map[string]bool{
	"gnd": true, "agnd": true, "dgnd": true, "pgnd": true, "vss": true, "earth": true,
}

// IsGround reports whether the net is a ground reference.
func (n *Net) IsGround() bool {
	return groundNames[strings.ToLower(n.Name)]
}

// IsPower reports whether the net is a power rail (but not ground).
func (n *Net) IsPower() bool {
	if n.IsGround() {
		return false
	}
	lower := strings.ToLower(n.Name)
	if strings.HasPrefix(lower, "vcc") || strings.HasPrefix(lower, "vdd") ||
		strings.HasPrefix(lower, "vbus") || strings.HasPrefix(lower, "vin") ||
		strings.HasPrefix(lower, "power") {
		return true
	}
	// Rails named like "+3v3", "+5v", "3v3", "12v".
	trimmed := strings.TrimPrefix(lower, "+")
	if len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9' && strings.Contains(trimmed, "v") {
		return true
	}
	return false
}

// Sheet is one level of the hierarchy.
type Sheet struct {
	Name       string
	Path       string // hierarchical path, "/" for the root
	Modules    []*Module
	Components []*Component
	Nets       []*Net
}

// ComponentByDesignator returns the component with the given
// designator, or nil.
func (s *Sheet) ComponentByDesignator(designator string) *Component {
	for _, c := range s.Components {
		if c.Designator == designator {
			return c
		}
	}
	return nil
}

// ComponentByID returns the component with the given id, or nil.
func (s *Sheet) ComponentByID(id string) *Component {
	for _, c := range s.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ModuleByID returns the module with the given id, or nil.
func (s *Sheet) ModuleByID(id string) *Module {
	for _, m := range s.Modules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Position is a persisted placement for one item, keyed by
// "<hierarchical-path>:<itemId>" in the layout overlay.
type Position struct {
	X        float64
	Y        float64
	Rotation float64 // degrees, 90-degree steps
	MirrorX  bool
	MirrorY  bool
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// PositionKey builds the overlay key for an item on a sheet.
func PositionKey(sheetPath, itemID string) string {
	return sheetPath + ":" + itemID
}
