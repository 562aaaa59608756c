package graphstore

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// Node labels. The label participates in the merge key, so a function and a
// class sharing a name in one file remain distinct nodes.
const (
	LabelFile     = "file"
	LabelFunction = "function"
	LabelClass    = "class"
	LabelCall     = "call"
)

// Edge types.
const (
	EdgeContains      = "CONTAINS"
	EdgePerformsCall  = "PERFORMS_CALL"
	EdgeCallsOut      = "CALLS_OUT"
	EdgeTargets       = "TARGETS"
	EdgeCallsEndpoint = "CALLS_ENDPOINT"
	EdgeDependsOn     = "DEPENDS_ON_SYMBOL"
	EdgeCrossRepo     = "CROSS_REPO_DEPENDS_ON"
)

// initializeSchema creates all tables; every statement is IF NOT EXISTS so
// reopening an existing database is a no-op.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER NOT NULL
			)
		`); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}

		if _, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS nodes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id TEXT NOT NULL,
				label TEXT NOT NULL CHECK(label IN ('file', 'function', 'class', 'call')),
				merge_key TEXT NOT NULL,
				name TEXT NOT NULL,
				filename TEXT,
				line INTEGER,
				parent TEXT,

				UNIQUE(project_id, label, merge_key)
			)
		`); err != nil {
			return fmt.Errorf("failed to create nodes table: %w", err)
		}

		if _, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS edges (
				project_id TEXT NOT NULL,
				source_id INTEGER NOT NULL,
				target_id INTEGER NOT NULL,
				type TEXT NOT NULL,
				label TEXT,

				PRIMARY KEY (project_id, source_id, target_id, type),
				FOREIGN KEY (source_id) REFERENCES nodes(id) ON DELETE CASCADE,
				FOREIGN KEY (target_id) REFERENCES nodes(id) ON DELETE CASCADE
			)
		`); err != nil {
			return fmt.Errorf("failed to create edges table: %w", err)
		}

		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_nodes_project_label_name ON nodes(project_id, label, name)",
			"CREATE INDEX IF NOT EXISTS idx_nodes_project_filename ON nodes(project_id, filename)",
			"CREATE INDEX IF NOT EXISTS idx_edges_project_type_target ON edges(project_id, type, target_id)",
			"CREATE INDEX IF NOT EXISTS idx_edges_project_type_source ON edges(project_id, type, source_id)",
		}
		for _, indexSQL := range indexes {
			if _, err := tx.Exec(indexSQL); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		version, err := schemaVersion(tx)
		if err != nil {
			return err
		}
		if version == 0 {
			if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
				return err
			}
			db.logger.Info("graph schema initialized", map[string]any{
				"version": currentSchemaVersion,
			})
		}

		return nil
	})
}

// schemaVersion returns the stored schema version, 0 for a new database.
func schemaVersion(tx *sql.Tx) (int, error) {
	var version int
	err := tx.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
