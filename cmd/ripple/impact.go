package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ripple/internal/config"
	"ripple/internal/explain"
	"ripple/internal/impact"
)

var (
	impactFormat  string
	impactExplain bool
	impactChanges string
)

var impactCmd = &cobra.Command{
	Use:   "impact <file>",
	Short: "Compute the blast radius of a changed file",
	Long: `Find every function and class that transitively depends on symbols
defined in the given file. The file path is relative to the project root,
forward slashes, as stored during ingestion.

Results are capped at 100 records. An empty result for a known file means
the change is isolated; an unknown file is reported as such.

Examples:
  ripple impact src/auth/login.py
  ripple impact src/api/routes.py --format=human
  ripple impact src/auth/login.py --explain --changes "renamed login()"`,
	Args: cobra.ExactArgs(1),
	Run:  runImpact,
}

func init() {
	impactCmd.Flags().StringVar(&impactFormat, "format", "json", "Output format (json, human)")
	impactCmd.Flags().BoolVar(&impactExplain, "explain", false,
		"Ask the configured LLM service to explain the impact")
	impactCmd.Flags().StringVar(&impactChanges, "changes", "",
		"Free-text description of the change, passed to --explain")
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	store, cfg, logger := mustGetStore()
	project := resolveProject(cfg)
	filename := filepath.ToSlash(args[0])

	engine := impact.NewEngine(store.DB(), logger)
	records, err := engine.FindAffected(project, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying impact: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		known, err := engine.HasSymbols(project, filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error querying impact: %v\n", err)
			os.Exit(1)
		}
		if !known {
			fmt.Printf("No symbols known for %q in project %q; was it ingested?\n", filename, project)
			return
		}
	}

	if impactExplain {
		runExplain(cfg, filename, records)
		return
	}

	switch impactFormat {
	case "human":
		fmt.Println(impact.Report(filename, records))
	default:
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	}
}

func runExplain(cfg *config.Config, filename string, records []impact.Record) {
	// Raw source of the changed file gives the model context beyond the
	// graph records; missing files just omit it.
	codeContext := ""
	if data, err := os.ReadFile(filepath.Join(rootFlag, filepath.FromSlash(filename))); err == nil {
		codeContext = string(data)
	}

	analyzer := explain.NewAnalyzer(cfg.Explain)
	assessment, err := analyzer.AnalyzeImpact(context.Background(), filename, records, impactChanges, codeContext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error explaining impact: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(assessment, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
