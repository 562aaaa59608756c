package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ripple/internal/crawl"
	"ripple/internal/extract"
)

var ingestNoResolve bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Crawl a source tree and build the symbol graph",
	Long: `Crawl a source tree, extract definitions, calls and imports from every
supported file, and merge them into the project's graph. After ingestion the
resolution pass links calls to definitions and derives dependency edges.

Re-ingesting is safe: all graph writes are idempotent merges.

Examples:
  ripple ingest
  ripple ingest ./services/api --project my-project
  ripple ingest --no-resolve    # batch several ingests, resolve once later`,
	Args: cobra.MaximumNArgs(1),
	Run:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoResolve, "no-resolve", false,
		"Skip the resolution pass after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	start := time.Now()
	store, cfg, logger := mustGetStore()
	project := resolveProject(cfg)

	path := rootFlag
	if len(args) == 1 {
		path = args[0]
	}

	batchID := uuid.NewString()
	logger.Info("starting ingestion", map[string]any{
		"project": project, "path": path, "batch": batchID,
	})

	crawler := crawl.New(extract.DefaultRegistry(), logger,
		crawl.WithWorkers(cfg.Crawl.Workers),
		crawl.WithExcludeDirs(cfg.Crawl.ExcludeDirs),
	)
	result, err := crawler.Discover(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error crawling %s: %v\n", path, err)
		os.Exit(1)
	}

	for _, rec := range result.Records {
		if err := store.IngestFile(project, rec); err != nil {
			fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", rec.Filename, err)
			os.Exit(1)
		}
	}

	if !ingestNoResolve {
		if err := store.Resolve(project); err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving graph: %v\n", err)
			os.Exit(1)
		}
	}

	nodes, edges, err := store.Counts(project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading graph counts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ingested %d files (%d skipped) into project %q: %d nodes, %d edges\n",
		len(result.Records), result.Skipped, project, nodes, edges)
	if result.Skipped > 0 {
		fmt.Printf("Warning: %d files failed extraction and were skipped; see log for details\n", result.Skipped)
	}

	logger.Info("ingestion completed", map[string]any{
		"project":  project,
		"batch":    batchID,
		"files":    len(result.Records),
		"skipped":  result.Skipped,
		"duration": time.Since(start).Milliseconds(),
	})
}
