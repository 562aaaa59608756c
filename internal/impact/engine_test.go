package impact

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"ripple/internal/extract"
	"ripple/internal/graphstore"
	"ripple/internal/logging"
)

func newTestEngine(t *testing.T) (*Engine, *graphstore.Store) {
	t.Helper()
	logger := logging.New(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
	db, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"), logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEngine(db, logger), graphstore.New(db, logger)
}

func definitionRecord(filename, symbol string, line int) extract.FileRecord {
	return extract.FileRecord{
		Filename: filename,
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: symbol, Line: line},
			},
		},
	}
}

func callerRecord(filename, symbol, callee string) extract.FileRecord {
	return extract.FileRecord{
		Filename: filename,
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: symbol, Line: 1},
			},
			Calls: []extract.Call{
				{Name: callee, Parent: symbol, Line: 2},
			},
		},
	}
}

func ingestAll(t *testing.T, store *graphstore.Store, projectID string, recs ...extract.FileRecord) {
	t.Helper()
	for _, rec := range recs {
		if err := store.IngestFile(projectID, rec); err != nil {
			t.Fatalf("ingest %s failed: %v", rec.Filename, err)
		}
	}
	if err := store.Resolve(projectID); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
}

func TestFindAffectedTransitive(t *testing.T) {
	engine, store := newTestEngine(t)
	ingestAll(t, store, "p1",
		definitionRecord("src/a.py", "helper", 7),
		callerRecord("src/b.py", "main", "helper"),
	)

	records, err := engine.FindAffected("p1", "src/a.py")
	if err != nil {
		t.Fatalf("FindAffected failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.File != "src/b.py" {
		t.Errorf("expected dependent file src/b.py, got %q", r.File)
	}
	if r.Symbol != "main" || r.SymbolKind != "function" {
		t.Errorf("unexpected dependent symbol %q (%s)", r.Symbol, r.SymbolKind)
	}
	if r.DependsOn != "helper" {
		t.Errorf("expected dependency on helper, got %q", r.DependsOn)
	}
	if r.DependsOnLine != 7 {
		t.Errorf("expected dependency line 7, got %d", r.DependsOnLine)
	}
}

func TestFindAffectedIsolatedChange(t *testing.T) {
	engine, store := newTestEngine(t)
	ingestAll(t, store, "p1", definitionRecord("src/lonely.py", "solo", 1))

	records, err := engine.FindAffected("p1", "src/lonely.py")
	if err != nil {
		t.Fatalf("FindAffected failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no dependents, got %d", len(records))
	}

	known, err := engine.HasSymbols("p1", "src/lonely.py")
	if err != nil {
		t.Fatalf("HasSymbols failed: %v", err)
	}
	if !known {
		t.Error("expected ingested file to be known")
	}
}

func TestFindAffectedUnknownFile(t *testing.T) {
	engine, store := newTestEngine(t)
	ingestAll(t, store, "p1", definitionRecord("src/a.py", "helper", 1))

	records, err := engine.FindAffected("p1", "src/never_seen.py")
	if err != nil {
		t.Fatalf("FindAffected failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty result, got %d", len(records))
	}

	known, err := engine.HasSymbols("p1", "src/never_seen.py")
	if err != nil {
		t.Fatalf("HasSymbols failed: %v", err)
	}
	if known {
		t.Error("expected unknown file to report no symbols")
	}
}

func TestFindAffectedTenantIsolation(t *testing.T) {
	engine, store := newTestEngine(t)
	ingestAll(t, store, "p1",
		definitionRecord("src/a.py", "helper", 1),
		callerRecord("src/b.py", "main", "helper"),
	)
	ingestAll(t, store, "p2", definitionRecord("src/a.py", "helper", 1))

	records, err := engine.FindAffected("p2", "src/a.py")
	if err != nil {
		t.Fatalf("FindAffected failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected p1's dependents invisible to p2, got %d records", len(records))
	}
}

func TestFindAffectedBounded(t *testing.T) {
	engine, store := newTestEngine(t)

	recs := []extract.FileRecord{definitionRecord("src/core.py", "shared", 1)}
	for i := 0; i < 150; i++ {
		recs = append(recs, callerRecord(
			fmt.Sprintf("src/caller_%03d.py", i),
			fmt.Sprintf("use_%03d", i),
			"shared",
		))
	}
	ingestAll(t, store, "p1", recs...)

	records, err := engine.FindAffected("p1", "src/core.py")
	if err != nil {
		t.Fatalf("FindAffected failed: %v", err)
	}
	if len(records) != MaxRecords {
		t.Errorf("expected result capped at %d, got %d", MaxRecords, len(records))
	}
}

func TestReport(t *testing.T) {
	empty := Report("src/a.py", nil)
	if !strings.Contains(empty, "No downstream symbol-level impact") {
		t.Errorf("unexpected empty report: %q", empty)
	}

	full := Report("src/a.py", []Record{
		{File: "src/b.py", Symbol: "main", DependsOn: "helper"},
	})
	if !strings.Contains(full, "src/a.py") || !strings.Contains(full, "main") {
		t.Errorf("report missing expected content: %q", full)
	}
	if !strings.Contains(full, "Recommendation") {
		t.Errorf("report missing recommendation footer: %q", full)
	}
}
