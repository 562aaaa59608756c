package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the project graph as a JSON snapshot",
	Long: `Write the project's full node and edge set as JSON, suitable for
visualization or offline analysis. Output ending in .gz is gzip-compressed.

Examples:
  ripple export
  ripple export -o graph.json
  ripple export -o graph.json.gz`,
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file (default: stdout; .gz suffix enables gzip)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	store, cfg, logger := mustGetStore()
	project := resolveProject(cfg)

	snapshot, err := store.Snapshot(project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting graph: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", exportOutput, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f

		if strings.HasSuffix(exportOutput, ".gz") {
			gz := gzip.NewWriter(f)
			defer gz.Close()
			out = gz
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		os.Exit(1)
	}

	logger.Info("graph exported", map[string]any{
		"project": project,
		"nodes":   len(snapshot.Nodes),
		"edges":   len(snapshot.Edges),
		"output":  exportOutput,
	})
}
