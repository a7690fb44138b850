package symbol

import (
	"math"
	"strings"
	"testing"
)

const resistorLib = `(kicad_symbol_lib
	(version 20231120)
	(generator "kicad_symbol_editor")
	(symbol "Device:R"
		(property "Reference" "R" (at 2.032 0 90))
		(property "Value" "R" (at 0 0 90))
		(symbol "R_0_1"
			(rectangle (start -1.016 -2.54) (end 1.016 2.54)
				(stroke (width 0.254) (type default))
				(fill (type none))
			)
		)
		(symbol "R_1_1"
			(pin passive line (at 0 3.81 270) (length 1.27)
				(name "~" (effects (font (size 1.27 1.27))))
				(number "1" (effects (font (size 1.27 1.27))))
			)
			(pin passive line (at 0 -3.81 90) (length 1.27)
				(name "~" (effects (font (size 1.27 1.27))))
				(number "2" (effects (font (size 1.27 1.27))))
			)
		)
	)
)`

func TestParseLibraryResistor(t *testing.T) {
	symbols, err := ParseLibrary(strings.NewReader(resistorLib))
	if err != nil {
		t.Fatalf("Failed to parse library: %v", err)
	}
	if len(symbols) != 1 {
		t.Fatalf("Expected 1 symbol, got %d", len(symbols))
	}

	r := symbols[0]
	if r.Name != "Device:R" {
		t.Errorf("Expected name Device:R, got %q", r.Name)
	}
	if r.Reference != "R" {
		t.Errorf("Expected reference R, got %q", r.Reference)
	}
	if len(r.Pins) != 2 {
		t.Fatalf("Expected 2 pins, got %d", len(r.Pins))
	}
	if len(r.Rectangles) != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", len(r.Rectangles))
	}

	// Pin 1 at (0, 3.81) pointing down (270): its body end is at
	// (0, 3.81 - 1.27) = (0, 2.54), on the body outline.
	p1 := r.PinByNumber("1")
	if p1 == nil {
		t.Fatal("Expected pin 1")
	}
	if math.Abs(p1.Body.X) > 1e-9 || math.Abs(p1.Body.Y-2.54) > 1e-9 {
		t.Errorf("Expected body point (0, 2.54), got %v", p1.Body)
	}

	if r.Degenerate() {
		t.Error("Resistor symbol must not be degenerate")
	}
	if got := r.BodyBounds.Width(); math.Abs(got-2.032) > 1e-9 {
		t.Errorf("Expected body width 2.032, got %v", got)
	}
	if got := r.BodyBounds.Height(); math.Abs(got-5.08) > 1e-9 {
		t.Errorf("Expected body height 5.08, got %v", got)
	}

	// Full bounds include the pin leads.
	if got := r.FullBounds.Height(); math.Abs(got-7.62) > 1e-9 {
		t.Errorf("Expected full height 7.62, got %v", got)
	}
}

func TestParseLibraryRejectsOtherFiles(t *testing.T) {
	_, err := ParseLibrary(strings.NewReader(`(kicad_sch (version 1))`))
	if err == nil {
		t.Fatal("Expected error for non-library file")
	}
}

func TestParseLibraryPolylineAndFill(t *testing.T) {
	input := `(kicad_symbol_lib
		(symbol "Device:D"
			(symbol "D_0_1"
				(polyline
					(pts (xy -1.27 1.27) (xy 1.27 0) (xy -1.27 -1.27) (xy -1.27 1.27))
					(stroke (width 0.254))
					(fill (type outline))
				)
			)
		)
	)`

	symbols, err := ParseLibrary(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse library: %v", err)
	}
	d := symbols[0]
	if len(d.Polylines) != 1 {
		t.Fatalf("Expected 1 polyline, got %d", len(d.Polylines))
	}
	if !d.Polylines[0].Filled {
		t.Error("Expected filled polyline")
	}
	if len(d.Polylines[0].Points) != 4 {
		t.Errorf("Expected 4 points, got %d", len(d.Polylines[0].Points))
	}
}

func TestDegenerateSymbol(t *testing.T) {
	input := `(kicad_symbol_lib
		(symbol "Broken:Flat"
			(symbol "Flat_0_1"
				(polyline (pts (xy -1 0) (xy 1 0)))
			)
		)
	)`

	symbols, err := ParseLibrary(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !symbols[0].Degenerate() {
		t.Error("Zero-height symbol must report degenerate bounds")
	}
}
