package graphstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	riperr "ripple/internal/errors"
	"ripple/internal/extract"
	"ripple/internal/logging"
)

// Store provides tenant-scoped graph operations over a DB handle.
type Store struct {
	db     *DB
	logger *logging.Logger
	stitch StitchRule
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStitchRule replaces the default endpoint-stitching rule.
func WithStitchRule(rule StitchRule) StoreOption {
	return func(s *Store) {
		s.stitch = rule
	}
}

// New creates a Store over an open database.
func New(db *DB, logger *logging.Logger, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		logger: logger,
		stitch: DefaultStitchRule(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying handle for read-only collaborators.
func (s *Store) DB() *DB {
	return s.db
}

// merge keys are composite per label; the separator cannot appear in names
// or forward-slash-normalized paths.
const keySep = "\x1f"

func symbolKey(name, filename string) string {
	return name + keySep + filename
}

func callKey(name string, line int, filename string) string {
	return fmt.Sprintf("%s%s%d%s%s", name, keySep, line, keySep, filename)
}

// IngestFile merges one parsed file into the graph. The operation is
// idempotent: re-ingesting unchanged content converges to the same state.
// TARGETS and DEPENDS_ON_SYMBOL edges are left stale until Resolve runs.
func (s *Store) IngestFile(projectID string, rec extract.FileRecord) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		fileID, err := mergeNode(tx, projectID, LabelFile, rec.Filename, rec.Filename, nil, nil, nil)
		if err != nil {
			return fmt.Errorf("merge file node %s: %w", rec.Filename, err)
		}

		for _, def := range rec.Data.Definitions {
			label := LabelFunction
			if def.Kind == extract.DefClass {
				label = LabelClass
			}
			symID, err := mergeNode(tx, projectID, label,
				symbolKey(def.Name, rec.Filename), def.Name, rec.Filename, def.Line, nil)
			if err != nil {
				return fmt.Errorf("merge symbol %s: %w", def.Name, err)
			}
			if err := mergeEdge(tx, projectID, fileID, symID, EdgeContains); err != nil {
				return err
			}
		}

		for _, call := range rec.Data.Calls {
			var parent any
			if call.Parent != "" {
				parent = call.Parent
			}
			callID, err := mergeNode(tx, projectID, LabelCall,
				callKey(call.Name, call.Line, rec.Filename), call.Name, rec.Filename, call.Line, parent)
			if err != nil {
				return fmt.Errorf("merge call %s: %w", call.Name, err)
			}
			if err := mergeEdge(tx, projectID, fileID, callID, EdgePerformsCall); err != nil {
				return err
			}

			if call.Parent == "" {
				continue
			}
			// Attribute the call to its enclosing symbol. The match is
			// permissive (function or class) and skipped silently when the
			// symbol does not exist yet.
			var parentID int64
			err = tx.QueryRow(`
				SELECT id FROM nodes
				WHERE project_id = ? AND label IN ('function', 'class')
				  AND name = ? AND filename = ?
				LIMIT 1
			`, projectID, call.Parent, rec.Filename).Scan(&parentID)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("look up parent symbol %s: %w", call.Parent, err)
			}
			if err := mergeEdge(tx, projectID, parentID, callID, EdgeCallsOut); err != nil {
				return err
			}
		}

		// Imports are returned to the caller as records only; no graph
		// structure is created for them.
		return nil
	})
}

// mergeNode upserts a node by (project, label, merge key) and returns its id.
func mergeNode(tx *sql.Tx, projectID, label, key, name string, filename, line, parent any) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO nodes (project_id, label, merge_key, name, filename, line, parent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, label, merge_key) DO UPDATE SET
			line = excluded.line,
			parent = excluded.parent
	`, projectID, label, key, name, filename, line, parent)
	if err != nil {
		return 0, err
	}

	var id int64
	err = tx.QueryRow(`
		SELECT id FROM nodes WHERE project_id = ? AND label = ? AND merge_key = ?
	`, projectID, label, key).Scan(&id)
	return id, err
}

// mergeEdge creates an edge if absent.
func mergeEdge(tx *sql.Tx, projectID string, sourceID, targetID int64, edgeType string) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO edges (project_id, source_id, target_id, type)
		VALUES (?, ?, ?, ?)
	`, projectID, sourceID, targetID, edgeType)
	if err != nil {
		return fmt.Errorf("merge %s edge: %w", edgeType, err)
	}
	return nil
}

// ClearProject removes every node and edge belonging to a tenant.
func (s *Store) ClearProject(projectID string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM edges WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM nodes WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("clear nodes: %w", err)
		}
		s.logger.Info("cleared project graph", map[string]any{"project": projectID})
		return nil
	})
}

// LinkRepos declares a dependency between two ingested repositories by
// merging one CROSS_REPO_DEPENDS_ON edge between the first file of each
// repository prefix.
func (s *Store) LinkRepos(projectID, sourcePrefix, targetPrefix, label string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		sourceID, err := firstFileWithPrefix(tx, projectID, sourcePrefix)
		if err != nil {
			return err
		}
		targetID, err := firstFileWithPrefix(tx, projectID, targetPrefix)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO edges (project_id, source_id, target_id, type, label)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(project_id, source_id, target_id, type) DO UPDATE SET
				label = excluded.label
		`, projectID, sourceID, targetID, EdgeCrossRepo, label)
		if err != nil {
			return fmt.Errorf("merge cross-repo edge: %w", err)
		}
		return nil
	})
}

func firstFileWithPrefix(tx *sql.Tx, projectID, prefix string) (int64, error) {
	var id int64
	err := tx.QueryRow(`
		SELECT id FROM nodes
		WHERE project_id = ? AND label = 'file' AND substr(name, 1, ?) = ?
		ORDER BY name LIMIT 1
	`, projectID, len(prefix), prefix).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, riperr.New(riperr.RepoNotFound,
			fmt.Sprintf("no ingested file matches repository prefix %q", prefix), nil)
	}
	return id, err
}

// DeleteRepo removes all nodes belonging to a repository prefix along with
// every edge touching them. Edges are deleted explicitly rather than left to
// the foreign-key cascade, so cleanup does not depend on connection state.
func (s *Store) DeleteRepo(projectID, prefix string) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			DELETE FROM edges
			WHERE project_id = ?
			  AND (source_id IN (SELECT id FROM nodes
			                     WHERE project_id = ?
			                       AND (substr(name, 1, ?) = ? AND label = 'file'
			                            OR substr(coalesce(filename, ''), 1, ?) = ?))
			       OR target_id IN (SELECT id FROM nodes
			                        WHERE project_id = ?
			                          AND (substr(name, 1, ?) = ? AND label = 'file'
			                               OR substr(coalesce(filename, ''), 1, ?) = ?)))
		`, projectID,
			projectID, len(prefix), prefix, len(prefix), prefix,
			projectID, len(prefix), prefix, len(prefix), prefix)
		if err != nil {
			return fmt.Errorf("delete repo edges: %w", err)
		}

		res, err := tx.Exec(`
			DELETE FROM nodes
			WHERE project_id = ?
			  AND (substr(name, 1, ?) = ? AND label = 'file'
			       OR substr(coalesce(filename, ''), 1, ?) = ?)
		`, projectID, len(prefix), prefix, len(prefix), prefix)
		if err != nil {
			return fmt.Errorf("delete repo nodes: %w", err)
		}
		deleted, _ := res.RowsAffected()
		s.logger.Info("deleted repository nodes", map[string]any{
			"project": projectID, "prefix": prefix, "nodes": deleted,
		})
		return nil
	})
}

// Snapshot is a full tenant-scoped dump for visualization.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

// SnapshotNode describes one graph node.
type SnapshotNode struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Name  string `json:"name"`
}

// SnapshotEdge describes one typed relationship.
type SnapshotEdge struct {
	From  int64  `json:"from"`
	To    int64  `json:"to"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// Snapshot returns every node and edge of a tenant.
func (s *Store) Snapshot(projectID string) (*Snapshot, error) {
	snap := &Snapshot{}

	rows, err := s.db.Query(`
		SELECT id, label, name FROM nodes WHERE project_id = ? ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("snapshot nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n SnapshotNode
		if err := rows.Scan(&n.ID, &n.Label, &n.Name); err != nil {
			return nil, err
		}
		n.Label = displayLabel(n.Label)
		snap.Nodes = append(snap.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edgeRows, err := s.db.Query(`
		SELECT source_id, target_id, type, coalesce(label, '')
		FROM edges WHERE project_id = ?
		ORDER BY source_id, target_id, type
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("snapshot edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e SnapshotEdge
		if err := edgeRows.Scan(&e.From, &e.To, &e.Type, &e.Label); err != nil {
			return nil, err
		}
		snap.Edges = append(snap.Edges, e)
	}
	return snap, edgeRows.Err()
}

// Counts returns the node and edge counts for a tenant.
func (s *Store) Counts(projectID string) (nodes, edges int, err error) {
	if err = s.db.QueryRow("SELECT count(*) FROM nodes WHERE project_id = ?", projectID).Scan(&nodes); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRow("SELECT count(*) FROM edges WHERE project_id = ?", projectID).Scan(&edges); err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

func displayLabel(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
