package sexp

import (
	"strings"
	"testing"
)

func TestParseNested(t *testing.T) {
	input := `(symbol "Device:R"
		(pin passive line (at -2.54 0 0) (length 2.54)
			(number "1"))
	)`

	nodes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("Expected 1 top-level node, got %d", len(nodes))
	}

	root, ok := nodes[0].(*List)
	if !ok {
		t.Fatal("Expected list at top level")
	}
	if root.Key() != "symbol" {
		t.Errorf("Expected key 'symbol', got %q", root.Key())
	}
	if root.Str(1) != "Device:R" {
		t.Errorf("Expected name Device:R, got %q", root.Str(1))
	}

	pin, found := root.Find("pin")
	if !found {
		t.Fatal("Expected pin child")
	}
	at, found := pin.Find("at")
	if !found {
		t.Fatal("Expected at child")
	}
	if got := at.Float(1, 0); got != -2.54 {
		t.Errorf("Expected X -2.54, got %v", got)
	}
	if got := at.Float(3, -1); got != 0 {
		t.Errorf("Expected angle 0, got %v", got)
	}
}

func TestParseFlagsAndComments(t *testing.T) {
	input := `; library header comment
	(pin passive line hide (at 0 0))`

	nodes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	pin := nodes[0].(*List)
	if !pin.HasFlag("hide") {
		t.Error("Expected hide flag")
	}
	if pin.HasFlag("show") {
		t.Error("Unexpected show flag")
	}
}

func TestParseStringEscapes(t *testing.T) {
	nodes, err := Parse(strings.NewReader(`(name "a \"b\" c")`))
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if got := nodes[0].(*List).Str(1); got != `a "b" c` {
		t.Errorf("Expected escaped string, got %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"(a (b)", "(a))", `("unterminated`} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestFindAll(t *testing.T) {
	input := `(symbol (pin (number "1")) (pin (number "2")) (rectangle))`
	nodes, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	pins := nodes[0].(*List).FindAll("pin")
	if len(pins) != 2 {
		t.Errorf("Expected 2 pins, got %d", len(pins))
	}
}
