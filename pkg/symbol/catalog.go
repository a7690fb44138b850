package symbol

import (
	"fmt"
	"sort"
	"strings"
)

// Default window for the center-bridge suppression heuristic: a
// degenerate two-point horizontal polyline spanning this many units at
// y ~ 0 is a library drawing artifact, not a real connection. The
// window is per-catalog so a different symbol library can override it.
const (
	DefaultBridgeSpanMin = 2.4
	DefaultBridgeSpanMax = 2.7
)

// Catalog is the read-only canonical symbol collection, keyed by
// family, plus a pin-count-variant table for connectors.
type Catalog struct {
	families   map[Family]*Symbol
	connectors map[int]*Symbol

	minConnectorPins int
	maxConnectorPins int

	BridgeSpanMin float64
	BridgeSpanMax float64
}

// NewCatalog returns an empty catalog with default heuristics.
func NewCatalog() *Catalog {
	return &Catalog{
		families:      make(map[Family]*Symbol),
		connectors:    make(map[int]*Symbol),
		BridgeSpanMin: DefaultBridgeSpanMin,
		BridgeSpanMax: DefaultBridgeSpanMax,
	}
}

// LoadCatalogFile parses a KiCad symbol library and assigns each
// symbol to its catalog slot by name.
func LoadCatalogFile(filename string) (*Catalog, error) {
	symbols, err := ParseLibraryFile(filename)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(symbols)
}

// BuildCatalog sorts parsed library symbols into family and connector
// slots. The first symbol claiming a family wins; later duplicates are
// ignored.
func BuildCatalog(symbols []*Symbol) (*Catalog, error) {
	cat := NewCatalog()

	for _, sym := range symbols {
		if fam := familyForSymbolName(sym.Name); fam != FamilyNone {
			if fam == FamilyConnector {
				cat.addConnector(sym)
				continue
			}
			if _, taken := cat.families[fam]; !taken {
				cat.families[fam] = sym
			}
		}
	}

	if len(cat.families) == 0 && len(cat.connectors) == 0 {
		return nil, fmt.Errorf("symbol library contains no recognized catalog symbols")
	}

	return cat, nil
}

func (c *Catalog) addConnector(sym *Symbol) {
	count := len(sym.Pins)
	if count == 0 {
		return
	}
	if _, taken := c.connectors[count]; taken {
		return
	}
	c.connectors[count] = sym
	if c.minConnectorPins == 0 || count < c.minConnectorPins {
		c.minConnectorPins = count
	}
	if count > c.maxConnectorPins {
		c.maxConnectorPins = count
	}
}

// Lookup resolves the canonical symbol for a family. For connectors the
// pin count selects the nearest variant; for every other family the
// count is ignored. Returns nil on a miss — callers fall back to
// generic rendering, never error.
func (c *Catalog) Lookup(family Family, pinCount int) *Symbol {
	if family == FamilyConnector {
		return c.lookupConnector(pinCount)
	}
	return c.families[family]
}

// lookupConnector clamps the requested pin count into the declared
// range and resolves by absolute numeric distance, ties broken toward
// the first candidate in ascending order.
func (c *Catalog) lookupConnector(pinCount int) *Symbol {
	if len(c.connectors) == 0 {
		return nil
	}

	if pinCount < c.minConnectorPins {
		pinCount = c.minConnectorPins
	}
	if pinCount > c.maxConnectorPins {
		pinCount = c.maxConnectorPins
	}

	counts := make([]int, 0, len(c.connectors))
	for count := range c.connectors {
		counts = append(counts, count)
	}
	sort.Ints(counts)

	best := counts[0]
	bestDist := abs(pinCount - best)
	for _, count := range counts[1:] {
		if d := abs(pinCount - count); d < bestDist {
			best = count
			bestDist = d
		}
	}

	return c.connectors[best]
}

// Families returns the families with a canonical symbol, in no
// particular order.
func (c *Catalog) Families() []Family {
	out := make([]Family, 0, len(c.families))
	for f := range c.families {
		out = append(out, f)
	}
	return out
}

// ConnectorPinCounts returns the available connector variants in
// ascending order.
func (c *Catalog) ConnectorPinCounts() []int {
	out := make([]int, 0, len(c.connectors))
	for count := range c.connectors {
		out = append(out, count)
	}
	sort.Ints(out)
	return out
}

// familyForSymbolName maps a library symbol name ("Device:R",
// "Device:C_Polarized_US", "Connector_Generic:Conn_01x04") to its
// catalog family.
func familyForSymbolName(name string) Family {
	base := name
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	lower := strings.ToLower(base)

	switch {
	case strings.HasPrefix(lower, "conn"):
		return FamilyConnector
	case lower == "testpoint" || strings.HasPrefix(lower, "testpoint"):
		return FamilyTestpoint
	case lower == "r" || strings.HasPrefix(lower, "r_"):
		return FamilyResistor
	case strings.HasPrefix(lower, "c_polarized") || strings.HasPrefix(lower, "cp"):
		return FamilyCapacitorPolarized
	case lower == "c" || strings.HasPrefix(lower, "c_"):
		return FamilyCapacitor
	case lower == "l" || strings.HasPrefix(lower, "l_"):
		return FamilyInductor
	case strings.HasPrefix(lower, "led"):
		return FamilyLED
	case lower == "d" || strings.HasPrefix(lower, "d_"):
		return FamilyDiode
	case strings.HasPrefix(lower, "q_npn"):
		return FamilyTransistorNPN
	case strings.HasPrefix(lower, "q_pnp"):
		return FamilyTransistorPNP
	case strings.HasPrefix(lower, "q_nmos"):
		return FamilyMosfetN
	case strings.HasPrefix(lower, "q_pmos"):
		return FamilyMosfetP
	default:
		return FamilyNone
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
