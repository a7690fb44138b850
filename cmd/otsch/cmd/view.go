package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSchem/internal/ui"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/render"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
)

var (
	viewCatalog string
	viewTuning  string
	viewDark    bool
)

var viewCmd = &cobra.Command{
	Use:   "view [document]",
	Short: "Launch the interactive schematic viewer",
	Long: `Open a build document in the interactive viewer. Without an argument
the viewer starts empty and a document can be opened with Ctrl+O.

Positions dragged in the viewer are written back to the document as a
layout overlay; the build sections are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewCatalog, "catalog", "", "KiCad symbol library for glyph rendering")
	viewCmd.Flags().StringVar(&viewTuning, "tuning", "", "TOML tuning snapshot for glyph overrides")
	viewCmd.Flags().BoolVar(&viewDark, "dark", false, "start with the dark theme")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	opts := ui.Options{
		CatalogPath:    viewCatalog,
		TuningSnapshot: viewTuning,
		Theme:          render.ThemeLight,
		Logger:         logger,
		OnSourceRef: func(ref schematic.SourceRef) {
			logger.Debug("selection source", "file", ref.File, "line", ref.Line)
		},
	}
	if viewDark {
		opts.Theme = render.ThemeDark
	}
	if len(args) > 0 {
		opts.DocumentPath = args[0]
	}
	return ui.Run(opts)
}
