package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingConfigYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Project != "default" {
		t.Errorf("expected project default, got %q", cfg.Project)
	}
	if cfg.DatabasePath != filepath.Join(".ripple", "graph.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.Crawl.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Crawl.Workers)
	}
	if cfg.Explain.APIKeyEnv != "RIPPLE_EXPLAIN_API_KEY" {
		t.Errorf("unexpected api key env %q", cfg.Explain.APIKeyEnv)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Project = "billing"
	cfg.Crawl.Workers = 8
	cfg.Crawl.ExcludeDirs = []string{"generated"}
	cfg.Resolve.HTTPVerbs = []string{"invoke"}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Project != "billing" {
		t.Errorf("expected project billing, got %q", loaded.Project)
	}
	if loaded.Crawl.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", loaded.Crawl.Workers)
	}
	if len(loaded.Crawl.ExcludeDirs) != 1 || loaded.Crawl.ExcludeDirs[0] != "generated" {
		t.Errorf("unexpected exclude dirs %v", loaded.Crawl.ExcludeDirs)
	}
	if len(loaded.Resolve.HTTPVerbs) != 1 || loaded.Resolve.HTTPVerbs[0] != "invoke" {
		t.Errorf("unexpected http verbs %v", loaded.Resolve.HTTPVerbs)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".ripple")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Version = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported version")
	}

	cfg = DefaultConfig()
	cfg.Crawl.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero workers")
	}
}
