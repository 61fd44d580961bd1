package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
)

// nodeColumns is the canonical SELECT column list for nodes.
const nodeColumns = `id, unique_id, name, node_type, user_name, created, last_modified`

// SQLiteNodeRepo implements NodeRepo using a SQLite database.
type SQLiteNodeRepo struct {
	db db.DBTX
}

// NewSQLiteNodeRepo creates a new SQLiteNodeRepo. Pass a *sql.DB for
// standalone use or a transaction's DBTX for transactional composition.
func NewSQLiteNodeRepo(dbtx db.DBTX) *SQLiteNodeRepo {
	return &SQLiteNodeRepo{db: dbtx}
}

func (r *SQLiteNodeRepo) Insert(ctx context.Context, n *domain.Node, parentID string) error {
	query := `INSERT INTO nodes (unique_id, parent_id, name, node_type, user_name, created, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		n.UniqueID,
		nullableString(parentID),
		n.Name,
		string(n.NodeType),
		n.UserName,
		formatTime(n.Created),
		formatTime(n.LastModified),
	)
	if err != nil {
		return fmt.Errorf("inserting node: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading node id: %w", err)
	}
	n.ID = int(id)

	if err := r.writeTags(ctx, n); err != nil {
		return err
	}
	return r.writeProperties(ctx, n)
}

func (r *SQLiteNodeRepo) GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE unique_id = ?`
	row := r.db.QueryRowContext(ctx, query, uniqueID)
	n, err := r.scanNode(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadSideTables(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *SQLiteNodeRepo) GetParentID(ctx context.Context, uniqueID string) (string, error) {
	var parent sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT parent_id FROM nodes WHERE unique_id = ?`, uniqueID).Scan(&parent)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("node %s: %w", uniqueID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading parent id: %w", err)
	}
	return parent.String, nil
}

func (r *SQLiteNodeRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE parent_id = ?`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing children: %w", err)
	}
	defer rows.Close()
	return r.scanNodes(ctx, rows)
}

func (r *SQLiteNodeRepo) ListByType(ctx context.Context, nodeType domain.NodeType) ([]*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE node_type = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, string(nodeType))
	if err != nil {
		return nil, fmt.Errorf("listing nodes by type: %w", err)
	}
	defer rows.Close()
	return r.scanNodes(ctx, rows)
}

func (r *SQLiteNodeRepo) HasSibling(ctx context.Context, parentID, name string, nodeType domain.NodeType, excludeID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM nodes
		WHERE parent_id = ? AND name = ? AND node_type = ? AND unique_id != ?`
	err := r.db.QueryRowContext(ctx, query, parentID, name, string(nodeType), excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking sibling names: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteNodeRepo) Update(ctx context.Context, n *domain.Node) error {
	query := `UPDATE nodes SET name = ?, user_name = ?, last_modified = ? WHERE unique_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		n.Name,
		n.UserName,
		formatTime(n.LastModified),
		n.UniqueID,
	)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", n.UniqueID, domain.ErrNotFound)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM node_tags WHERE node_id = ?`, n.UniqueID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM node_properties WHERE node_id = ?`, n.UniqueID); err != nil {
		return fmt.Errorf("clearing properties: %w", err)
	}
	if err := r.writeTags(ctx, n); err != nil {
		return err
	}
	return r.writeProperties(ctx, n)
}

func (r *SQLiteNodeRepo) SetParent(ctx context.Context, uniqueID, newParentID string, lastModified time.Time) error {
	query := `UPDATE nodes SET parent_id = ?, last_modified = ? WHERE unique_id = ?`
	res, err := r.db.ExecContext(ctx, query, newParentID, formatTime(lastModified), uniqueID)
	if err != nil {
		return fmt.Errorf("re-parenting node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("re-parenting node: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", uniqueID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteNodeRepo) ListSubtreeIDs(ctx context.Context, uniqueID string) ([]string, error) {
	query := `WITH RECURSIVE subtree(uid) AS (
			SELECT unique_id FROM nodes WHERE unique_id = ?
			UNION ALL
			SELECT n.unique_id FROM nodes n JOIN subtree s ON n.parent_id = s.uid
		)
		SELECT uid FROM subtree`
	rows, err := r.db.QueryContext(ctx, query, uniqueID)
	if err != nil {
		return nil, fmt.Errorf("walking subtree: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning subtree id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subtree: %w", err)
	}
	return ids, nil
}

func (r *SQLiteNodeRepo) Delete(ctx context.Context, uniqueID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE unique_id = ?`, uniqueID)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", uniqueID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteNodeRepo) writeTags(ctx context.Context, n *domain.Node) error {
	for _, tag := range n.Tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO node_tags (node_id, name, comment, user_name, created) VALUES (?, ?, ?, ?, ?)`,
			n.UniqueID, tag.Name, tag.Comment, tag.UserName, formatTime(tag.Created))
		if err != nil {
			return fmt.Errorf("inserting tag %q: %w", tag.Name, err)
		}
	}
	return nil
}

func (r *SQLiteNodeRepo) writeProperties(ctx context.Context, n *domain.Node) error {
	for key, value := range n.Properties {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO node_properties (node_id, key, value) VALUES (?, ?, ?)`,
			n.UniqueID, key, value)
		if err != nil {
			return fmt.Errorf("inserting property %q: %w", key, err)
		}
	}
	return nil
}

func (r *SQLiteNodeRepo) loadSideTables(ctx context.Context, n *domain.Node) error {
	tagRows, err := r.db.QueryContext(ctx,
		`SELECT name, comment, user_name, created FROM node_tags WHERE node_id = ? ORDER BY name`, n.UniqueID)
	if err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag domain.Tag
		var createdStr string
		if err := tagRows.Scan(&tag.Name, &tag.Comment, &tag.UserName, &createdStr); err != nil {
			return fmt.Errorf("scanning tag: %w", err)
		}
		if tag.Created, err = parseTime(createdStr); err != nil {
			return err
		}
		n.Tags = append(n.Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("iterating tags: %w", err)
	}

	propRows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM node_properties WHERE node_id = ?`, n.UniqueID)
	if err != nil {
		return fmt.Errorf("loading properties: %w", err)
	}
	defer propRows.Close()
	for propRows.Next() {
		var key, value string
		if err := propRows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning property: %w", err)
		}
		n.PutProperty(key, value)
	}
	if err := propRows.Err(); err != nil {
		return fmt.Errorf("iterating properties: %w", err)
	}
	return nil
}

// scanNode scans a single node from a *sql.Row.
func (r *SQLiteNodeRepo) scanNode(row *sql.Row) (*domain.Node, error) {
	var n domain.Node
	var nodeTypeStr, createdStr, lastModifiedStr string

	err := row.Scan(&n.ID, &n.UniqueID, &n.Name, &nodeTypeStr, &n.UserName, &createdStr, &lastModifiedStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("node: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning node: %w", err)
	}
	return r.populateNode(&n, nodeTypeStr, createdStr, lastModifiedStr)
}

// scanNodes scans multiple nodes from *sql.Rows and loads their side tables.
func (r *SQLiteNodeRepo) scanNodes(ctx context.Context, rows *sql.Rows) ([]*domain.Node, error) {
	var nodes []*domain.Node
	for rows.Next() {
		var n domain.Node
		var nodeTypeStr, createdStr, lastModifiedStr string
		if err := rows.Scan(&n.ID, &n.UniqueID, &n.Name, &nodeTypeStr, &n.UserName, &createdStr, &lastModifiedStr); err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		node, err := r.populateNode(&n, nodeTypeStr, createdStr, lastModifiedStr)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	for _, n := range nodes {
		if err := r.loadSideTables(ctx, n); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// populateNode fills in parsed fields after scanning raw strings.
func (r *SQLiteNodeRepo) populateNode(n *domain.Node, nodeTypeStr, createdStr, lastModifiedStr string) (*domain.Node, error) {
	n.NodeType = domain.NodeType(nodeTypeStr)

	var err error
	if n.Created, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if n.LastModified, err = parseTime(lastModifiedStr); err != nil {
		return nil, err
	}
	return n, nil
}
