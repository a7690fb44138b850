package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

var infoCmd = &cobra.Command{
	Use:   "info <document> [designator]",
	Short: "Show build document information",
	Long: `Display information about a build document.

Without a designator: shows a per-sheet summary of the hierarchy.
With a designator: shows details for that component on the root sheet.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, err := schematic.LoadDocument(args[0])
	if err != nil {
		return fmt.Errorf("error loading document: %w", err)
	}

	if len(args) >= 2 {
		return showComponentDetails(doc.Root, args[1])
	}

	fmt.Printf("Document: %s\n", args[0])
	fmt.Printf("Version: %d\n", doc.Version)
	fmt.Printf("Placed items: %d\n", len(doc.Positions))
	if len(doc.RouteOverrides) > 0 {
		fmt.Printf("Route overrides: %d\n", len(doc.RouteOverrides))
	}
	fmt.Println()

	showSheet(doc.Root, 0)
	return nil
}

func showSheet(sheet *schematic.Sheet, depth int) {
	if sheet == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	name := sheet.Name
	if name == "" {
		name = sheet.Path
	}
	fmt.Printf("%sSheet %s: %d components, %d modules, %d nets",
		indent, name, len(sheet.Components), len(sheet.Modules), len(sheet.Nets))

	var power, ground int
	for _, net := range sheet.Nets {
		switch {
		case net.IsGround():
			ground++
		case net.IsPower():
			power++
		}
	}
	if power+ground > 0 {
		fmt.Printf(" (%d power, %d ground)", power, ground)
	}
	fmt.Println()

	for _, m := range sheet.Modules {
		showSheet(m.Sheet, depth+1)
	}
}

func showComponentDetails(sheet *schematic.Sheet, designator string) error {
	c := sheet.ComponentByDesignator(designator)
	if c == nil {
		return fmt.Errorf("component %q not found on the root sheet", designator)
	}

	fmt.Printf("Component: %s\n", c.Designator)
	fmt.Printf("Name: %s\n", c.Name)
	if c.Reference != "" {
		fmt.Printf("Reference: %s\n", c.Reference)
	}
	fmt.Printf("Family: %s", symbol.InferFamily(c))
	if c.Family != "" {
		fmt.Printf(" (declared %q)", c.Family)
	}
	fmt.Println()
	if c.Package != "" {
		fmt.Printf("Package: %s\n", c.Package)
	}
	fmt.Printf("Body: %.2f x %.2f mm\n", c.BodyWidth, c.BodyHeight)
	if c.Source != nil {
		fmt.Printf("Source: %s:%d\n", c.Source.File, c.Source.Line)
	}

	fmt.Printf("Pins (%d):\n", len(c.Pins))
	pins := make([]schematic.Pin, len(c.Pins))
	copy(pins, c.Pins)
	sort.Slice(pins, func(i, j int) bool { return pins[i].Number < pins[j].Number })
	for _, p := range pins {
		fmt.Printf("  %-4s %-12s %s (%.2f, %.2f)\n",
			p.Number, p.Name, p.Side, p.Offset.X, p.Offset.Y)
	}
	return nil
}
