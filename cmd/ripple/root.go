package main

import (
	"github.com/spf13/cobra"

	"ripple/internal/version"
)

var (
	// projectFlag overrides the project id from config
	projectFlag string
	// rootFlag is the project root holding .ripple/
	rootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "ripple - symbol-level blast radius analysis",
	Long: `ripple builds a symbol-level dependency graph of a source tree and answers
blast-radius queries: given a changed file, which functions and classes
transitively depend on the symbols it defines.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("ripple version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "",
		"Project id (tenant) to operate on (default: from config)")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root directory")
}
