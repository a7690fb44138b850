package symbol

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol/sexp"
)

// ParseLibraryFile reads and parses a KiCad symbol library file
// (.kicad_sym).
func ParseLibraryFile(filename string) ([]*Symbol, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol library: %w", err)
	}
	defer file.Close()

	return ParseLibrary(file)
}

// ParseLibrary parses a KiCad symbol library from an io.Reader. Unit
// sub-symbols are flattened into their parent: the glyph engine works
// on one pin/primitive soup per symbol.
func ParseLibrary(r io.Reader) ([]*Symbol, error) {
	nodes, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol library: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("empty symbol library")
	}

	root, ok := nodes[0].(*sexp.List)
	if !ok || root.Key() != "kicad_symbol_lib" {
		return nil, fmt.Errorf("not a symbol library: expected 'kicad_symbol_lib', got %q", nodes[0].String())
	}

	var symbols []*Symbol
	for _, symNode := range root.FindAll("symbol") {
		sym := parseSymbol(symNode)
		sym.computeBounds()
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

func parseSymbol(node *sexp.List) *Symbol {
	sym := &Symbol{Name: node.Str(1)}

	for _, prop := range node.FindAll("property") {
		switch prop.Str(1) {
		case "Reference":
			sym.Reference = prop.Str(2)
		case "Value":
			sym.Value = prop.Str(2)
		case "Footprint":
			sym.Footprint = prop.Str(2)
		}
	}

	parseSymbolBody(node, sym)

	// Unit sub-symbols ("R_0_1", "R_1_1", ...) carry the actual
	// graphics and pins.
	for _, unit := range node.FindAll("symbol") {
		parseSymbolBody(unit, sym)
	}

	return sym
}

func parseSymbolBody(node *sexp.List, sym *Symbol) {
	for _, pinNode := range node.FindAll("pin") {
		sym.Pins = append(sym.Pins, parsePin(pinNode))
	}

	for _, rect := range node.FindAll("rectangle") {
		sym.Rectangles = append(sym.Rectangles, Rectangle{
			Start:  parseXY(rect, "start"),
			End:    parseXY(rect, "end"),
			Width:  parseStrokeWidth(rect),
			Filled: parseFilled(rect),
		})
	}

	for _, circ := range node.FindAll("circle") {
		c := Circle{
			Center: parseXY(circ, "center"),
			Width:  parseStrokeWidth(circ),
			Filled: parseFilled(circ),
		}
		if radius, found := circ.Find("radius"); found {
			c.Radius = radius.Float(1, 0)
		}
		sym.Circles = append(sym.Circles, c)
	}

	for _, poly := range node.FindAll("polyline") {
		p := Polyline{
			Width:  parseStrokeWidth(poly),
			Filled: parseFilled(poly),
		}
		if pts, found := poly.Find("pts"); found {
			for _, xy := range pts.FindAll("xy") {
				p.Points = append(p.Points, r2.Vec{X: xy.Float(1, 0), Y: xy.Float(2, 0)})
			}
		}
		sym.Polylines = append(sym.Polylines, p)
	}

	for _, arc := range node.FindAll("arc") {
		sym.Arcs = append(sym.Arcs, Arc{
			Start: parseXY(arc, "start"),
			Mid:   parseXY(arc, "mid"),
			End:   parseXY(arc, "end"),
			Width: parseStrokeWidth(arc),
		})
	}
}

func parsePin(node *sexp.List) Pin {
	pin := Pin{}

	if at, found := node.Find("at"); found {
		pin.Position = r2.Vec{X: at.Float(1, 0), Y: at.Float(2, 0)}
		pin.AngleDeg = at.Float(3, 0)
	}
	if length, found := node.Find("length"); found {
		pin.Length = length.Float(1, 0)
	}
	if name, found := node.Find("name"); found {
		pin.Name = name.Str(1)
	}
	if number, found := node.Find("number"); found {
		pin.Number = number.Str(1)
	}

	// The lead points from the connection end toward the body at the
	// pin's angle.
	rad := pin.AngleDeg * math.Pi / 180
	pin.Body = r2.Vec{
		X: pin.Position.X + pin.Length*math.Cos(rad),
		Y: pin.Position.Y + pin.Length*math.Sin(rad),
	}

	return pin
}

func parseXY(node *sexp.List, key string) r2.Vec {
	if sub, found := node.Find(key); found {
		return r2.Vec{X: sub.Float(1, 0), Y: sub.Float(2, 0)}
	}
	return r2.Vec{}
}

func parseStrokeWidth(node *sexp.List) float64 {
	if stroke, found := node.Find("stroke"); found {
		if width, found := stroke.Find("width"); found {
			return width.Float(1, 0)
		}
	}
	return 0
}

func parseFilled(node *sexp.List) bool {
	if fill, found := node.Find("fill"); found {
		if typ, found := fill.Find("type"); found {
			switch typ.Str(1) {
			case "outline", "background", "color":
				return true
			}
		}
	}
	return false
}
