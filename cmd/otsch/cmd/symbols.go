package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <library>",
	Short: "List the glyph catalog of a symbol library",
	Long: `Parse a KiCad symbol library (.kicad_sym) and show which component
families and connector sizes the resulting catalog can render.`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbols,
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	cat, err := symbol.LoadCatalogFile(args[0])
	if err != nil {
		return fmt.Errorf("error loading symbol library: %w", err)
	}

	families := cat.Families()
	sort.Slice(families, func(i, j int) bool {
		return families[i].String() < families[j].String()
	})

	fmt.Printf("Catalog: %s\n", args[0])
	fmt.Printf("Families (%d):\n", len(families))
	for _, f := range families {
		sym := cat.Lookup(f, 0)
		if sym == nil {
			continue
		}
		fmt.Printf("  %-12s %-28s %d pins\n", f, sym.Name, len(sym.Pins))
	}

	counts := cat.ConnectorPinCounts()
	if len(counts) > 0 {
		fmt.Printf("Connector sizes: %v\n", counts)
	}
	return nil
}
