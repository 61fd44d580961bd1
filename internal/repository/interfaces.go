package repository

import (
	"context"
	"time"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// NodeRepo persists the node graph: the node rows plus their tag and
// property side tables. Parent links live on the row, not on domain.Node;
// operations that need them take or return parent ids explicitly.
type NodeRepo interface {
	// Insert stores a new node under the given parent and fills in the
	// legacy numeric id assigned by the database.
	Insert(ctx context.Context, n *domain.Node, parentID string) error
	GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Node, error)
	// GetParentID returns the parent's unique id, or "" for the root.
	GetParentID(ctx context.Context, uniqueID string) (string, error)
	// ListChildren returns direct children in undefined order; display
	// ordering is applied by the service.
	ListChildren(ctx context.Context, parentID string) ([]*domain.Node, error)
	ListByType(ctx context.Context, nodeType domain.NodeType) ([]*domain.Node, error)
	// HasSibling reports whether parentID already holds a child with the
	// given name and type, excluding the node identified by excludeID.
	HasSibling(ctx context.Context, parentID, name string, nodeType domain.NodeType, excludeID string) (bool, error)
	// Update rewrites the mutable columns (name, user name, last modified)
	// and replaces the tag and property side tables from the node value.
	Update(ctx context.Context, n *domain.Node) error
	// SetParent re-links a node under a new parent and bumps last_modified.
	SetParent(ctx context.Context, uniqueID, newParentID string, lastModified time.Time) error
	// ListSubtreeIDs returns the unique ids of the node and every
	// descendant, parents before children.
	ListSubtreeIDs(ctx context.Context, uniqueID string) ([]string, error)
	// Delete removes the node row; side tables and descendants cascade.
	Delete(ctx context.Context, uniqueID string) error
}

// SnapshotRepo persists the payload side tables: PV items owned by SNAPSHOT
// nodes and the ordered reference lists owned by COMPOSITE_SNAPSHOT nodes.
type SnapshotRepo interface {
	SaveItems(ctx context.Context, nodeID string, items []domain.SnapshotItem) error
	GetItems(ctx context.Context, nodeID string) ([]domain.SnapshotItem, error)
	SaveReferences(ctx context.Context, nodeID string, referencedIDs []string) error
	GetReferences(ctx context.Context, nodeID string) ([]string, error)
	// ListReferencing returns the unique ids of composite snapshots that
	// reference the given node directly.
	ListReferencing(ctx context.Context, referencedID string) ([]string, error)
}
