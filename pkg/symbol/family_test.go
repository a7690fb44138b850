package symbol

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

func TestInferFamilyExplicit(t *testing.T) {
	c := &schematic.Component{Designator: "U1", Family: "mosfet_p"}
	if got := InferFamily(c); got != FamilyMosfetP {
		t.Errorf("Expected mosfet_p, got %v", got)
	}
}

func TestInferFamilyConnectorSuppressed(t *testing.T) {
	c := &schematic.Component{Designator: "J1", Family: "connector"}
	if got := InferFamily(c); got != FamilyNone {
		t.Errorf("Explicit connector must render generic, got %v", got)
	}
}

func TestInferFamilyByDesignator(t *testing.T) {
	cases := []struct {
		designator string
		want       Family
	}{
		{"R3", FamilyResistor},
		{"C12", FamilyCapacitor},
		{"L1", FamilyInductor},
		{"D4", FamilyDiode},
		{"Q2", FamilyTransistorNPN},
		{"TP7", FamilyTestpoint},
		{"U9", FamilyNone},
	}
	for _, tc := range cases {
		c := &schematic.Component{Designator: tc.designator}
		if got := InferFamily(c); got != tc.want {
			t.Errorf("InferFamily(%s) = %v, want %v", tc.designator, got, tc.want)
		}
	}
}

func TestInferFamilyByName(t *testing.T) {
	cases := []struct {
		name string
		want Family
	}{
		{"red LED 0603", FamilyLED},
		{"test point", FamilyTestpoint},
		{"P-channel power MOSFET", FamilyMosfetP},
		{"N-channel MOSFET", FamilyMosfetN},
		{"logic level mosfet", FamilyMosfetN},
		{"PNP small signal", FamilyTransistorPNP},
		{"NPN driver", FamilyTransistorNPN},
		{"generic bjt", FamilyTransistorNPN},
		{"tantalum cap 10uF", FamilyCapacitorPolarized},
		{"electrolytic 100uF", FamilyCapacitorPolarized},
		{"ceramic capacitor", FamilyCapacitor},
		{"thick film resistor", FamilyResistor},
		{"power inductor 10uH", FamilyInductor},
		{"schottky diode", FamilyDiode},
		{"mystery part", FamilyNone},
	}
	for _, tc := range cases {
		c := &schematic.Component{Name: tc.name, Designator: "X1"}
		if got := InferFamily(c); got != tc.want {
			t.Errorf("InferFamily(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInferFamilyLEDBeatsDiodeDesignator(t *testing.T) {
	// LEDs usually carry a D designator; the LED rule must win.
	c := &schematic.Component{Name: "status LED", Designator: "D3"}
	if got := InferFamily(c); got != FamilyLED {
		t.Errorf("Expected led, got %v", got)
	}
}

func TestFamilyRoundTrip(t *testing.T) {
	for f := FamilyResistor; f <= FamilyTestpoint; f++ {
		if got := ParseFamily(f.String()); got != f {
			t.Errorf("ParseFamily(%q) = %v, want %v", f.String(), got, f)
		}
	}
	if got := ParseFamily("warp_core"); got != FamilyNone {
		t.Errorf("Unknown family must parse to none, got %v", got)
	}
}
