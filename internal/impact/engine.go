// Package impact computes blast-radius queries: given a changed file, which
// symbols transitively depend on the symbols it defines.
package impact

import (
	"fmt"
	"strings"

	riperr "ripple/internal/errors"
	"ripple/internal/graphstore"
	"ripple/internal/logging"
)

// MaxRecords bounds one query's result set.
const MaxRecords = 100

// Record describes one dependent of a changed file's symbol.
type Record struct {
	File          string `json:"file"`
	Symbol        string `json:"symbol"`
	SymbolKind    string `json:"symbolKind"`
	LineNumber    int    `json:"lineNumber"`
	DependsOn     string `json:"dependsOn"`
	DependsOnKind string `json:"dependsOnKind"`
	DependsOnLine int    `json:"dependsOnLine"`
}

// Engine answers impact queries over the resolved graph. All reads are
// tenant-scoped and side-effect free.
type Engine struct {
	db     *graphstore.DB
	logger *logging.Logger
}

// NewEngine creates an Engine over an open graph database.
func NewEngine(db *graphstore.DB, logger *logging.Logger) *Engine {
	return &Engine{db: db, logger: logger}
}

// FindAffected returns the dependents of every symbol defined in filename.
// Symbols are matched by their filename property rather than current
// CONTAINS structure, so renamed or removed symbols stay visible as long as
// their stale records persist. An unknown file yields an empty list, not an
// error; use HasSymbols to tell the two apart.
func (e *Engine) FindAffected(projectID, filename string) ([]Record, error) {
	rows, err := e.db.Query(`
		SELECT DISTINCT
			f.name,
			caller.name, caller.label, coalesce(caller.line, 0),
			target.name, target.label, coalesce(target.line, 0)
		FROM nodes target
		JOIN edges dep ON dep.project_id = target.project_id
		              AND dep.target_id = target.id
		              AND dep.type = ?
		JOIN nodes caller ON caller.id = dep.source_id
		JOIN edges cont ON cont.project_id = caller.project_id
		               AND cont.target_id = caller.id
		               AND cont.type = ?
		JOIN nodes f ON f.id = cont.source_id AND f.label = 'file'
		WHERE target.project_id = ?
		  AND target.filename = ?
		  AND target.label IN ('function', 'class')
		LIMIT ?
	`, graphstore.EdgeDependsOn, graphstore.EdgeContains, projectID, filename, MaxRecords)
	if err != nil {
		return nil, riperr.New(riperr.QueryFailed, fmt.Sprintf("impact query for %s", filename), err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.File,
			&r.Symbol, &r.SymbolKind, &r.LineNumber,
			&r.DependsOn, &r.DependsOnKind, &r.DependsOnLine,
		); err != nil {
			return nil, riperr.New(riperr.QueryFailed, fmt.Sprintf("impact query for %s", filename), err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, riperr.New(riperr.QueryFailed, fmt.Sprintf("impact query for %s", filename), err)
	}

	e.logger.Debug("impact query completed", map[string]any{
		"project": projectID, "file": filename, "records": len(records),
	})
	return records, nil
}

// HasSymbols reports whether any symbol is tagged with the given filename.
// Callers use it to distinguish "isolated change" from "unknown file" when
// FindAffected returns nothing.
func (e *Engine) HasSymbols(projectID, filename string) (bool, error) {
	var exists bool
	err := e.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM nodes
			WHERE project_id = ? AND filename = ? AND label IN ('function', 'class')
		)
	`, projectID, filename).Scan(&exists)
	if err != nil {
		return false, riperr.New(riperr.QueryFailed, fmt.Sprintf("symbol lookup for %s", filename), err)
	}
	return exists, nil
}

// Report renders a plain-text impact report.
func Report(filename string, records []Record) string {
	if len(records) == 0 {
		return fmt.Sprintf("No downstream symbol-level impact detected for changes in %s.", filename)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detailed Symbol-Level Impact Report for %s:\n", filename)
	b.WriteString("========================================================\n")
	for _, r := range records {
		fmt.Fprintf(&b, "- [File: %s] -> [Symbol: %s] depends on '%s'\n", r.File, r.Symbol, r.DependsOn)
	}
	b.WriteString("\nRecommendation: Check the logic in these specific functions for regressions.")
	return b.String()
}
