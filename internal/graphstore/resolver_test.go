package graphstore

import (
	"testing"

	"ripple/internal/extract"
)

func TestResolveByName(t *testing.T) {
	store := newTestStore(t)

	defs := extract.FileRecord{
		Filename: "src/a.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "helper", Line: 1},
			},
		},
	}
	callers := extract.FileRecord{
		Filename: "src/b.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "main", Line: 1},
			},
			Calls: []extract.Call{
				{Name: "helper", Parent: "main", Line: 2},
			},
		},
	}

	for _, rec := range []extract.FileRecord{defs, callers} {
		if err := store.IngestFile("p1", rec); err != nil {
			t.Fatalf("ingest %s failed: %v", rec.Filename, err)
		}
	}
	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if n := edgeCount(t, store.DB(), "p1", EdgeTargets); n != 1 {
		t.Errorf("expected 1 TARGETS edge, got %d", n)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeDependsOn); n != 1 {
		t.Errorf("expected 1 DEPENDS_ON_SYMBOL edge, got %d", n)
	}
}

func TestResolveAmbiguousNameTargetsAll(t *testing.T) {
	store := newTestStore(t)

	// helper is defined in two files; the call must target both.
	for _, filename := range []string{"src/a.py", "src/b.py"} {
		rec := extract.FileRecord{
			Filename: filename,
			Data: extract.Result{
				Definitions: []extract.Definition{
					{Kind: extract.DefFunction, Name: "helper", Line: 1},
				},
			},
		}
		if err := store.IngestFile("p1", rec); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
	}
	caller := extract.FileRecord{
		Filename: "src/c.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "main", Line: 1},
			},
			Calls: []extract.Call{{Name: "helper", Parent: "main", Line: 2}},
		},
	}
	if err := store.IngestFile("p1", caller); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeTargets); n != 2 {
		t.Errorf("expected 2 TARGETS edges for ambiguous name, got %d", n)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeDependsOn); n != 2 {
		t.Errorf("expected 2 DEPENDS_ON_SYMBOL edges, got %d", n)
	}
}

func TestResolveStitchesEndpoints(t *testing.T) {
	store := newTestStore(t)

	if err := store.IngestFile("p1", backendRecord()); err != nil {
		t.Fatalf("ingest backend failed: %v", err)
	}
	if err := store.IngestFile("p1", frontendRecord()); err != nil {
		t.Fatalf("ingest frontend failed: %v", err)
	}
	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// The frontend "get" call matches the get_ prefix of backend get_user.
	if n := edgeCount(t, store.DB(), "p1", EdgeCallsEndpoint); n != 1 {
		t.Errorf("expected 1 CALLS_ENDPOINT edge, got %d", n)
	}

	// Derivation bridges the call: fetchUser depends on get_user.
	var n int
	err := store.DB().QueryRow(`
		SELECT count(*) FROM edges dep
		JOIN nodes src ON src.id = dep.source_id
		JOIN nodes dst ON dst.id = dep.target_id
		WHERE dep.project_id = 'p1' AND dep.type = ?
		  AND src.name = 'fetchUser' AND dst.name = 'get_user'
	`, EdgeDependsOn).Scan(&n)
	if err != nil {
		t.Fatalf("query dependency: %v", err)
	}
	if n != 1 {
		t.Errorf("expected fetchUser to depend on get_user, got %d edges", n)
	}
}

func TestResolveStitchesSubstring(t *testing.T) {
	store := newTestStore(t)

	backend := extract.FileRecord{
		Filename: "backend/routes.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "user_endpoint_v2", Line: 1},
			},
		},
	}
	frontend := extract.FileRecord{
		Filename: "frontend/api.ts",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "callApi", Line: 1},
			},
			Calls: []extract.Call{{Name: "fetch", Parent: "callApi", Line: 2}},
		},
	}
	for _, rec := range []extract.FileRecord{backend, frontend} {
		if err := store.IngestFile("p1", rec); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
	}

	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeCallsEndpoint); n != 1 {
		t.Errorf("expected endpoint substring match, got %d edges", n)
	}
}

func TestResolveIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.IngestFile("p1", backendRecord()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := store.IngestFile("p1", frontendRecord()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	_, edges1, err := store.Counts("p1")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}

	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	_, edges2, err := store.Counts("p1")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}

	if edges1 != edges2 {
		t.Errorf("re-resolve changed edge count: %d then %d", edges1, edges2)
	}
}

func TestResolveCustomStitchRule(t *testing.T) {
	store := newTestStore(t)
	store.stitch = StitchRule{
		CallNames:    []string{"invoke"},
		NamePrefixes: []string{"handle_"},
	}

	backend := extract.FileRecord{
		Filename: "svc/handlers.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "handle_order", Line: 1},
			},
		},
	}
	frontend := extract.FileRecord{
		Filename: "cli/run.py",
		Data: extract.Result{
			Definitions: []extract.Definition{
				{Kind: extract.DefFunction, Name: "run", Line: 1},
			},
			Calls: []extract.Call{{Name: "invoke", Parent: "run", Line: 2}},
		},
	}
	for _, rec := range []extract.FileRecord{backend, frontend} {
		if err := store.IngestFile("p1", rec); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
	}

	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeCallsEndpoint); n != 1 {
		t.Errorf("expected custom rule to stitch invoke -> handle_order, got %d edges", n)
	}
}

func TestResolveEmptyRuleSkipsStitching(t *testing.T) {
	store := newTestStore(t)
	store.stitch = StitchRule{}

	if err := store.IngestFile("p1", backendRecord()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := store.IngestFile("p1", frontendRecord()); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := store.Resolve("p1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if n := edgeCount(t, store.DB(), "p1", EdgeCallsEndpoint); n != 0 {
		t.Errorf("expected no stitching with empty rule, got %d edges", n)
	}
}
