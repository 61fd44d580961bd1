package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// The node tree. The integer id is the legacy process-local identifier;
	// unique_id is the external handle and the key every side table uses.
	`CREATE TABLE IF NOT EXISTS nodes (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		unique_id     TEXT NOT NULL UNIQUE,
		parent_id     TEXT REFERENCES nodes(unique_id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		node_type     TEXT NOT NULL
		              CHECK(node_type IN ('FOLDER','CONFIGURATION','SNAPSHOT','COMPOSITE_SNAPSHOT')),
		user_name     TEXT NOT NULL DEFAULT '',
		created       TEXT NOT NULL,
		last_modified TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)`,

	// Tag membership is a set keyed by (node, name).
	`CREATE TABLE IF NOT EXISTS node_tags (
		node_id    TEXT NOT NULL REFERENCES nodes(unique_id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		comment    TEXT NOT NULL DEFAULT '',
		user_name  TEXT NOT NULL DEFAULT '',
		created    TEXT NOT NULL,
		PRIMARY KEY (node_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS node_properties (
		node_id TEXT NOT NULL REFERENCES nodes(unique_id) ON DELETE CASCADE,
		key     TEXT NOT NULL,
		value   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (node_id, key)
	)`,

	// PV items owned by SNAPSHOT nodes; position preserves save order.
	`CREATE TABLE IF NOT EXISTS snapshot_items (
		node_id          TEXT NOT NULL REFERENCES nodes(unique_id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		pv_name          TEXT NOT NULL,
		value            TEXT NOT NULL DEFAULT '',
		readback_pv_name TEXT NOT NULL DEFAULT '',
		readback_value   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (node_id, position)
	)`,

	// Ordered reference list owned by COMPOSITE_SNAPSHOT nodes. The
	// referenced_id constraint has no cascade: the database refuses to
	// delete a node that a composite still references.
	`CREATE TABLE IF NOT EXISTS composite_refs (
		node_id       TEXT NOT NULL REFERENCES nodes(unique_id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		referenced_id TEXT NOT NULL REFERENCES nodes(unique_id),
		PRIMARY KEY (node_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_composite_refs_referenced ON composite_refs(referenced_id)`,

	// Seed the reserved root folder.
	`INSERT OR IGNORE INTO nodes (id, unique_id, parent_id, name, node_type, user_name, created, last_modified)
		VALUES (0, '44bef5de-e8e6-4014-af37-b8f6c8a939a2', NULL, 'Root folder', 'FOLDER', 'system',
			strftime('%Y-%m-%dT%H:%M:%SZ','now'), strftime('%Y-%m-%dT%H:%M:%SZ','now'))`,
}
