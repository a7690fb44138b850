package schematic

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// PinRef identifies one pin in the hierarchy. Build documents encode
// net members as compact strings: "R3.1" for a local component pin,
// "power/regulator/U2.VOUT" for a pin below nested modules.
type PinRef struct {
	Path       []string // module path segments, outermost first
	Designator string
	Pin        string
}

// String renders the reference back to its document form.
func (r PinRef) String() string {
	if len(r.Path) == 0 {
		return r.Designator + "." + r.Pin
	}
	return strings.Join(r.Path, "/") + "/" + r.Designator + "." + r.Pin
}

// Local reports whether the reference targets an item on the sheet the
// net belongs to (no module path).
func (r PinRef) Local() bool {
	return len(r.Path) == 0
}

// pinRefLexer tokenizes pin reference strings. Atoms cover
// designators, module names, and pin numbers (which may be
// non-numeric, e.g. "A1" or "VOUT").
var pinRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Atom", Pattern: `[A-Za-z0-9_+~-]+`},
	{Name: "Slash", Pattern: `/`},
	{Name: "Dot", Pattern: `\.`},
})

// pinRefAST is the participle grammar for pin references.
type pinRefAST struct {
	Segments   []string `parser:"( @Atom Slash )*"`
	Designator string   `parser:"@Atom"`
	Pin        string   `parser:"Dot @Atom"`
}

var pinRefParser = participle.MustBuild[pinRefAST](
	participle.Lexer(pinRefLexer),
	participle.UseLookahead(2),
)

// ParsePinRef parses a compact pin reference string.
func ParsePinRef(s string) (PinRef, error) {
	ast, err := pinRefParser.ParseString("", s)
	if err != nil {
		return PinRef{}, fmt.Errorf("invalid pin reference %q: %w", s, err)
	}
	return PinRef{
		Path:       ast.Segments,
		Designator: ast.Designator,
		Pin:        ast.Pin,
	}, nil
}
