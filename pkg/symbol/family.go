package symbol

import (
	"regexp"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

// Family is the closed set of symbol families with dedicated glyphs.
// FamilyNone means generic rendering (plain box).
type Family int

const (
	FamilyNone Family = iota
	FamilyResistor
	FamilyCapacitor
	FamilyCapacitorPolarized
	FamilyInductor
	FamilyDiode
	FamilyLED
	FamilyConnector
	FamilyTransistorNPN
	FamilyTransistorPNP
	FamilyMosfetN
	FamilyMosfetP
	FamilyTestpoint
)

var familyNames = map[Family]string{
	FamilyNone:               "",
	FamilyResistor:           "resistor",
	FamilyCapacitor:          "capacitor",
	FamilyCapacitorPolarized: "capacitor_polarized",
	FamilyInductor:           "inductor",
	FamilyDiode:              "diode",
	FamilyLED:                "led",
	FamilyConnector:          "connector",
	FamilyTransistorNPN:      "transistor_npn",
	FamilyTransistorPNP:      "transistor_pnp",
	FamilyMosfetN:            "mosfet_n",
	FamilyMosfetP:            "mosfet_p",
	FamilyTestpoint:          "testpoint",
}

// String returns the family's document name.
func (f Family) String() string {
	return familyNames[f]
}

// ParseFamily converts a declared family name to a Family. Unknown
// names map to FamilyNone.
func ParseFamily(name string) Family {
	for f, n := range familyNames {
		if n != "" && n == name {
			return f
		}
	}
	return FamilyNone
}

// Transistor reports whether the family is a BJT or MOSFET. These keep
// their canonical library orientation.
func (f Family) Transistor() bool {
	switch f {
	case FamilyTransistorNPN, FamilyTransistorPNP, FamilyMosfetN, FamilyMosfetP:
		return true
	}
	return false
}

// Polarized reports whether the family distinguishes anode and
// cathode.
func (f Family) Polarized() bool {
	return f == FamilyDiode || f == FamilyLED
}

var (
	pfetPattern      = regexp.MustCompile(`p[-_ ]?(channel|ch\b|fet|mos)`)
	nfetPattern      = regexp.MustCompile(`n[-_ ]?(channel|ch\b|fet|mos)`)
	polarCapPattern  = regexp.MustCompile(`(electrolytic|tantalum|polari[sz]ed)`)
	testpointPattern = regexp.MustCompile(`test[-_ ]?point`)
)

// InferFamily classifies a component into a symbol family. An explicit
// declared family wins, except connectors, which always take the
// generic box path. Otherwise an ordered rule set matches against the
// component's descriptive text; the first rule wins.
func InferFamily(c *schematic.Component) Family {
	if c.Family != "" {
		declared := ParseFamily(c.Family)
		if declared == FamilyConnector {
			return FamilyNone
		}
		if declared != FamilyNone {
			return declared
		}
	}

	prefix := c.DesignatorPrefix()
	haystack := strings.ToLower(strings.Join([]string{
		c.Name, prefix, c.Reference, c.Variant, c.Package,
	}, " "))

	switch {
	case strings.Contains(haystack, "led"):
		return FamilyLED
	case testpointPattern.MatchString(haystack) || prefix == "TP":
		return FamilyTestpoint
	case pfetPattern.MatchString(haystack):
		return FamilyMosfetP
	case nfetPattern.MatchString(haystack),
		strings.Contains(haystack, "mosfet"),
		strings.Contains(haystack, "fet"):
		return FamilyMosfetN
	case strings.Contains(haystack, "pnp"):
		return FamilyTransistorPNP
	case strings.Contains(haystack, "npn"),
		prefix == "Q",
		strings.Contains(haystack, "bjt"),
		strings.Contains(haystack, "transistor"):
		return FamilyTransistorNPN
	case polarCapPattern.MatchString(haystack):
		return FamilyCapacitorPolarized
	case strings.Contains(haystack, "capacitor"), prefix == "C":
		return FamilyCapacitor
	case strings.Contains(haystack, "resistor"), prefix == "R":
		return FamilyResistor
	case strings.Contains(haystack, "inductor"), prefix == "L":
		return FamilyInductor
	case strings.Contains(haystack, "diode"), prefix == "D":
		return FamilyDiode
	default:
		return FamilyNone
	}
}
