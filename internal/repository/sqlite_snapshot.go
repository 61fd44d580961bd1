package repository

import (
	"context"
	"fmt"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(dbtx db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: dbtx}
}

// SaveItems replaces the PV item list owned by a snapshot node. Positions
// record the save order, duplicates included.
func (r *SQLiteSnapshotRepo) SaveItems(ctx context.Context, nodeID string, items []domain.SnapshotItem) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshot_items WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("clearing snapshot items: %w", err)
	}
	for i, item := range items {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO snapshot_items (node_id, position, pv_name, value, readback_pv_name, readback_value)
				VALUES (?, ?, ?, ?, ?, ?)`,
			nodeID, i, item.PVName, item.Value, item.ReadbackPVName, item.ReadbackValue)
		if err != nil {
			return fmt.Errorf("inserting snapshot item %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteSnapshotRepo) GetItems(ctx context.Context, nodeID string) ([]domain.SnapshotItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pv_name, value, readback_pv_name, readback_value
			FROM snapshot_items WHERE node_id = ? ORDER BY position`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot items: %w", err)
	}
	defer rows.Close()

	var items []domain.SnapshotItem
	for rows.Next() {
		var item domain.SnapshotItem
		if err := rows.Scan(&item.PVName, &item.Value, &item.ReadbackPVName, &item.ReadbackValue); err != nil {
			return nil, fmt.Errorf("scanning snapshot item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot items: %w", err)
	}
	return items, nil
}

// SaveReferences replaces the ordered reference list owned by a composite
// snapshot node.
func (r *SQLiteSnapshotRepo) SaveReferences(ctx context.Context, nodeID string, referencedIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM composite_refs WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("clearing composite references: %w", err)
	}
	for i, ref := range referencedIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO composite_refs (node_id, position, referenced_id) VALUES (?, ?, ?)`,
			nodeID, i, ref)
		if err != nil {
			return fmt.Errorf("inserting composite reference %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteSnapshotRepo) GetReferences(ctx context.Context, nodeID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT referenced_id FROM composite_refs WHERE node_id = ? ORDER BY position`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("listing composite references: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scanning composite reference: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating composite references: %w", err)
	}
	return refs, nil
}

func (r *SQLiteSnapshotRepo) ListReferencing(ctx context.Context, referencedID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT node_id FROM composite_refs WHERE referenced_id = ? ORDER BY node_id`, referencedID)
	if err != nil {
		return nil, fmt.Errorf("listing referencing composites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning referencing composite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating referencing composites: %w", err)
	}
	return ids, nil
}
