package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"buildcheck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "buildcheck",
	Short: "Static analyzer for MSBuild-style project files",
	Long:  `buildcheck analyzes XML build project files for expression, markup and semantic problems`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
