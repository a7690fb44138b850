package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "otsch",
	Short: "OpenTraceSchem - Hierarchical schematic viewer and tools",
	Long: `OpenTraceSchem (otsch) renders build documents produced by the
hardware description toolchain as interactive schematics.

Examples:
  otsch view build.json                     # Launch the interactive viewer
  otsch view build.json --catalog sym.kicad_sym
  otsch info build.json                     # Show document summary
  otsch symbols sym.kicad_sym               # List the glyph catalog`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
