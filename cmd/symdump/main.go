// symdump sanity-checks a KiCad symbol library at the raw
// S-expression level. Useful when a library fails to load or a glyph
// comes out wrong: it verifies the file parses at all, counts the
// leaves the catalog loader will walk, and lists the symbol names
// found in the raw text.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/sexp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: symdump <library.kicad_sym>")
		os.Exit(1)
	}

	filename := os.Args[1]
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	info, _ := file.Stat()
	fmt.Printf("File size: %d bytes\n", info.Size())

	sexps, err := sexp.Parse(file)
	if err != nil {
		fmt.Printf("Parse failed: %v\n", err)
		fmt.Println("Retrying with the non-strict streaming parser...")
		retryNonStrict(filename)
		return
	}

	fmt.Printf("Top-level s-expressions: %d\n", len(sexps))
	if len(sexps) == 0 {
		return
	}
	fmt.Printf("Root is leaf: %v\n", sexps[0].IsLeaf())
	if !sexps[0].IsLeaf() {
		fmt.Printf("Root leaf count: %d\n", sexps[0].LeafCount())
	}

	listSymbolNames(filename)
}

// retryNonStrict drains the streaming parser to find roughly where a
// malformed library stops producing nodes.
func retryNonStrict(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	parser := sexp.NewParser(file, false)
	count := 0
	for s := range parser.Output {
		if s != nil {
			count++
			if count <= 3 {
				fmt.Printf("  sexp #%d (leaf: %v)\n", count, s.IsLeaf())
			}
		}
		if count > 100000 {
			fmt.Println("  stopping after 100000 nodes")
			break
		}
	}
	fmt.Printf("  nodes before failure: %d\n", count)
}

// listSymbolNames scans the raw text for top-level symbol definitions.
// Nested unit sub-symbols repeat the parent name with a _N_M suffix
// and are skipped.
func listSymbolNames(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return
	}

	fmt.Println("Symbols:")
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "(symbol ") {
			continue
		}
		name := strings.Trim(strings.TrimPrefix(trimmed, "(symbol "), `"() `)
		if isUnitSuffix(name) {
			continue
		}
		fmt.Printf("  %s\n", name)
		count++
	}
	fmt.Printf("Total: %d\n", count)
}

// isUnitSuffix reports whether a symbol name ends in the _N_M unit
// convention, e.g. "R_0_1".
func isUnitSuffix(name string) bool {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts[len(parts)-2:] {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
