// Package main implements the spvir CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spvir/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "spvir",
	Short: "Structured control-flow IR toolchain",
	Long:  `spvir verifies structured control-flow modules and lowers them to SPIR-V binaries`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(disCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("jobs", 0, "maximum parallel workers (0 = all CPUs)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies the --color flag to the global color state.
func setupColor(cmd *cobra.Command) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}
