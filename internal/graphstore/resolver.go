package graphstore

import (
	"database/sql"
	"fmt"
	"strings"
)

// StitchRule is the heuristic that bridges HTTP-style call sites to
// candidate handler functions across language boundaries. It is a naming
// convention match, not a route match, and over-approximates by design. The
// rule is a swappable value so a real route-matching resolver can replace it
// without touching the rest of the resolution pass.
type StitchRule struct {
	// CallNames are callee names treated as HTTP-client verbs.
	CallNames []string
	// NamePrefixes mark functions as endpoint candidates by prefix.
	NamePrefixes []string
	// NameSubstrings mark functions as endpoint candidates by substring.
	NameSubstrings []string
}

// DefaultStitchRule returns the built-in convention lists.
func DefaultStitchRule() StitchRule {
	return StitchRule{
		CallNames:      []string{"post", "get", "put", "delete", "fetch", "request"},
		NamePrefixes:   []string{"create_", "get_", "update_", "delete_", "api_"},
		NameSubstrings: []string{"endpoint"},
	}
}

func (r StitchRule) empty() bool {
	return len(r.CallNames) == 0 || (len(r.NamePrefixes) == 0 && len(r.NameSubstrings) == 0)
}

// Resolve runs the project-scoped batch resolution pass. It is idempotent
// and safe to re-run after further ingestions. Three ordered rules:
//
//  1. Name resolution: every call targets every same-named function in the
//     project. Deliberately not filename- or scope-aware; ambiguity
//     over-approximates instead of dropping.
//  2. Endpoint stitching per the configured StitchRule.
//  3. Transitive derivation: caller -CALLS_OUT-> call -TARGETS-> target
//     becomes caller -DEPENDS_ON_SYMBOL-> target.
func (s *Store) Resolve(projectID string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		if err := resolveByName(tx, projectID); err != nil {
			return fmt.Errorf("name resolution: %w", err)
		}
		if err := stitchEndpoints(tx, projectID, s.stitch); err != nil {
			return fmt.Errorf("endpoint stitching: %w", err)
		}
		if err := deriveDependencies(tx, projectID); err != nil {
			return fmt.Errorf("dependency derivation: %w", err)
		}
		return nil
	})
}

func resolveByName(tx *sql.Tx, projectID string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO edges (project_id, source_id, target_id, type)
		SELECT c.project_id, c.id, f.id, ?
		FROM nodes c
		JOIN nodes f ON f.project_id = c.project_id
		            AND f.label = 'function'
		            AND f.name = c.name
		WHERE c.project_id = ? AND c.label = 'call'
	`, EdgeTargets, projectID)
	return err
}

// stitchEndpoints links HTTP-verb calls to convention-matched functions via
// CALLS_ENDPOINT, and also via TARGETS so the derivation rule picks them up.
func stitchEndpoints(tx *sql.Tx, projectID string, rule StitchRule) error {
	if rule.empty() {
		return nil
	}

	var (
		where strings.Builder
		args  []any
	)

	where.WriteString("c.project_id = ? AND c.label = 'call' AND c.name IN (")
	args = append(args, projectID)
	for i, name := range rule.CallNames {
		if i > 0 {
			where.WriteString(", ")
		}
		where.WriteString("?")
		args = append(args, name)
	}
	where.WriteString(") AND (")

	// substr comparison avoids LIKE-escaping the underscores in the
	// convention prefixes.
	first := true
	for _, prefix := range rule.NamePrefixes {
		if !first {
			where.WriteString(" OR ")
		}
		where.WriteString("substr(f.name, 1, ?) = ?")
		args = append(args, len(prefix), prefix)
		first = false
	}
	for _, sub := range rule.NameSubstrings {
		if !first {
			where.WriteString(" OR ")
		}
		where.WriteString("instr(f.name, ?) > 0")
		args = append(args, sub)
		first = false
	}
	where.WriteString(")")

	for _, edgeType := range []string{EdgeCallsEndpoint, EdgeTargets} {
		query := fmt.Sprintf(`
			INSERT OR IGNORE INTO edges (project_id, source_id, target_id, type)
			SELECT c.project_id, c.id, f.id, '%s'
			FROM nodes c
			JOIN nodes f ON f.project_id = c.project_id AND f.label = 'function'
			WHERE %s
		`, edgeType, where.String())
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

func deriveDependencies(tx *sql.Tx, projectID string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO edges (project_id, source_id, target_id, type)
		SELECT co.project_id, co.source_id, t.target_id, ?
		FROM edges co
		JOIN edges t ON t.project_id = co.project_id
		            AND t.source_id = co.target_id
		            AND t.type = ?
		WHERE co.project_id = ? AND co.type = ?
	`, EdgeDependsOn, EdgeTargets, projectID, EdgeCallsOut)
	return err
}
