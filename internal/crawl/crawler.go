// Package crawl walks a project root, filters files through a fixed
// deny-list and the root .gitignore, and routes surviving files to
// registered extractors.
package crawl

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	riperr "ripple/internal/errors"
	"ripple/internal/extract"
	"ripple/internal/logging"
)

// Crawler discovers and extracts source files under a project root.
type Crawler struct {
	registry *extract.Registry
	logger   *logging.Logger
	workers  int
	extra    map[string]struct{} // additional excluded directory names
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithWorkers bounds the number of concurrent extractions.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithExcludeDirs adds directory names to the fixed deny-list.
func WithExcludeDirs(names []string) Option {
	return func(c *Crawler) {
		for _, name := range names {
			c.extra[name] = struct{}{}
		}
	}
}

// New creates a Crawler routing files through the given registry.
func New(registry *extract.Registry, logger *logging.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		registry: registry,
		logger:   logger,
		workers:  4,
		extra:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result aggregates a crawl: per-file records plus the count of files that
// were routed to an extractor but failed to read or parse.
type Result struct {
	Records []extract.FileRecord
	Skipped int
}

// Discover walks root, extracts every routed file and returns the
// aggregated records. Filenames are root-relative with forward slashes.
// Per-file failures are logged and counted, never fatal; result order is
// not stable across runs.
func (c *Crawler) Discover(ctx context.Context, root string) (*Result, error) {
	matcher := c.loadGitignore(root)

	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			c.logger.Warn("skipping unreadable path", map[string]any{
				"path": path, "error": err.Error(),
			})
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, ok := c.extra[d.Name()]; ok || excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if excludedFile(d.Name()) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if _, ok := c.registry.ForFile(rel); !ok {
			return nil
		}

		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return nil, riperr.New(riperr.CrawlFailed, fmt.Sprintf("walk %s", root), err)
	}

	return c.extractAll(ctx, root, candidates)
}

// extractAll runs extraction for the candidate files in parallel. Each
// extraction is a pure function of its file contents, so the only shared
// state is the result slice.
func (c *Crawler) extractAll(ctx context.Context, root string, candidates []string) (*Result, error) {
	var (
		mu  sync.Mutex
		res Result
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, rel := range candidates {
		g.Go(func() error {
			extractor, _ := c.registry.ForFile(rel)

			source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				c.logger.Warn("failed to read file", map[string]any{
					"file": rel, "error": err.Error(),
				})
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}

			data, err := extractor.Extract(ctx, source)
			if err != nil {
				c.logger.Warn("extraction failed", map[string]any{
					"file": rel, "error": err.Error(),
				})
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			res.Records = append(res.Records, extract.FileRecord{Filename: rel, Data: *data})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// loadGitignore compiles the root .gitignore if present. Load failures
// degrade to the fixed deny-list only.
func (c *Crawler) loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		c.logger.Warn("failed to compile .gitignore, using built-in exclusions only", map[string]any{
			"path": path, "error": err.Error(),
		})
		return nil
	}
	return matcher
}
