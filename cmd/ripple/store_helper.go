package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ripple/internal/config"
	"ripple/internal/graphstore"
	"ripple/internal/logging"
)

var (
	storeOnce   sync.Once
	sharedStore *graphstore.Store
	sharedCfg   *config.Config
	sharedLog   *logging.Logger
	storeErr    error
)

// getStore returns a shared graph store, lazily opened from the configured
// database path under the project root.
func getStore() (*graphstore.Store, *config.Config, *logging.Logger, error) {
	storeOnce.Do(func() {
		cfg, err := config.Load(rootFlag)
		if err != nil {
			storeErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			storeErr = err
			return
		}

		logger := logging.New(logging.Config{
			Format: logging.Format(cfg.Logging.Format),
			Level:  logging.ParseLevel(cfg.Logging.Level),
		})

		dbPath := cfg.DatabasePath
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(rootFlag, dbPath)
		}
		db, err := graphstore.Open(dbPath, logger)
		if err != nil {
			storeErr = fmt.Errorf("failed to open graph database: %w", err)
			return
		}

		opts := []graphstore.StoreOption{}
		if rule := stitchRuleFromConfig(cfg); rule != nil {
			opts = append(opts, graphstore.WithStitchRule(*rule))
		}

		sharedStore = graphstore.New(db, logger, opts...)
		sharedCfg = cfg
		sharedLog = logger
	})

	return sharedStore, sharedCfg, sharedLog, storeErr
}

// mustGetStore returns the shared store or exits on error.
func mustGetStore() (*graphstore.Store, *config.Config, *logging.Logger) {
	store, cfg, logger, err := getStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store, cfg, logger
}

// stitchRuleFromConfig builds an override stitch rule, or nil when the
// config leaves the built-in rule in place.
func stitchRuleFromConfig(cfg *config.Config) *graphstore.StitchRule {
	r := cfg.Resolve
	if len(r.HTTPVerbs) == 0 && len(r.EndpointPrefixes) == 0 && len(r.EndpointSubstrings) == 0 {
		return nil
	}
	rule := graphstore.DefaultStitchRule()
	if len(r.HTTPVerbs) > 0 {
		rule.CallNames = r.HTTPVerbs
	}
	if len(r.EndpointPrefixes) > 0 {
		rule.NamePrefixes = r.EndpointPrefixes
	}
	if len(r.EndpointSubstrings) > 0 {
		rule.NameSubstrings = r.EndpointSubstrings
	}
	return &rule
}

// resolveProject returns the effective project id.
func resolveProject(cfg *config.Config) string {
	if projectFlag != "" {
		return projectFlag
	}
	if cfg.Project != "" {
		return cfg.Project
	}
	return "default"
}
