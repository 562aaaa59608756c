package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a project's entire graph",
	Long: `Remove every node and edge belonging to the project. Other projects in
the same database are untouched. Requires --yes.`,
	Args: cobra.NoArgs,
	Run:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deletion")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) {
	store, cfg, logger := mustGetStore()
	project := resolveProject(cfg)

	if !clearYes {
		fmt.Fprintf(os.Stderr, "Refusing to clear project %q without --yes\n", project)
		os.Exit(1)
	}

	if err := store.ClearProject(project); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing project: %v\n", err)
		os.Exit(1)
	}

	logger.Info("project cleared", map[string]any{"project": project})
	fmt.Printf("Cleared project %q\n", project)
}
