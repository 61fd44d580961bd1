package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time — should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	// Third time for good measure.
	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"nodes", "node_tags", "node_properties", "snapshot_items", "composite_refs"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_SeedsRootFolder(t *testing.T) {
	db := openTestDB(t)

	var id int
	var name, nodeType string
	var parent sql.NullString
	err := db.QueryRow(
		`SELECT id, name, node_type, parent_id FROM nodes WHERE unique_id = ?`,
		"44bef5de-e8e6-4014-af37-b8f6c8a939a2",
	).Scan(&id, &name, &nodeType, &parent)
	require.NoError(t, err)

	assert.Equal(t, 0, id)
	assert.Equal(t, "FOLDER", nodeType)
	assert.False(t, parent.Valid, "root has no parent")

	// re-running migrations must not duplicate the root
	require.NoError(t, Migrate(db))
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_RejectsUnknownNodeType(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO nodes (unique_id, parent_id, name, node_type, created, last_modified)
		VALUES ('x', '44bef5de-e8e6-4014-af37-b8f6c8a939a2', 'bad', 'DASHBOARD', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.Error(t, err)
}
