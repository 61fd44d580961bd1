package service

import (
	"context"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// TreeService owns the canonical node graph and enforces its structural
// invariants. All mutations are atomic: a failed multi-step operation leaves
// the tree untouched.
type TreeService interface {
	// CreateNode stores a new node under the given parent, assigning a
	// fresh unique id and timestamps. Fails with domain.ErrNotFound if the
	// parent is absent, domain.ErrInvalidStructure if the parent's type
	// cannot contain the child's, and domain.ErrNameInUse on a sibling
	// name/type collision.
	CreateNode(ctx context.Context, parentUniqueID string, n *domain.Node) (*domain.Node, error)
	GetNode(ctx context.Context, uniqueID string) (*domain.Node, error)
	GetRootNode(ctx context.Context) (*domain.Node, error)
	GetParent(ctx context.Context, uniqueID string) (*domain.Node, error)
	// GetChildren returns direct children in display order: folders before
	// configurations, then lexically by name. Leaf nodes yield an empty
	// list.
	GetChildren(ctx context.Context, uniqueID string) ([]*domain.Node, error)
	// UpdateNode renames a node and/or replaces its user name, tags and
	// properties. Unique id and node type are immutable.
	UpdateNode(ctx context.Context, n *domain.Node) (*domain.Node, error)
	// DeleteNode removes the node and its whole subtree. Fails with
	// domain.ErrReferenced if any node in the subtree is referenced by a
	// composite snapshot outside it.
	DeleteNode(ctx context.Context, uniqueID string) error
	// Move re-parents a node, re-validating containment. Fails with
	// domain.ErrCycle when the target is the node itself or one of its
	// descendants. Moving to the current parent is a no-op that still
	// bumps LastModified.
	Move(ctx context.Context, uniqueID, newParentUniqueID string) (*domain.Node, error)

	AddTag(ctx context.Context, uniqueID string, tag domain.Tag) (*domain.Node, error)
	RemoveTag(ctx context.Context, uniqueID, tagName string) (*domain.Node, error)
	PutProperty(ctx context.Context, uniqueID, key, value string) (*domain.Node, error)
	RemoveProperty(ctx context.Context, uniqueID, key string) (*domain.Node, error)
}

// SnapshotService stores and reads the PV item payload of snapshot nodes.
type SnapshotService interface {
	// SaveSnapshot creates a SNAPSHOT node under a configuration and stores
	// its items in save order, duplicates preserved.
	SaveSnapshot(ctx context.Context, parentUniqueID string, n *domain.Node, items []domain.SnapshotItem) (*domain.Node, error)
	GetSnapshotData(ctx context.Context, uniqueID string) (*domain.SnapshotData, error)
	ListAllSnapshots(ctx context.Context) ([]*domain.Node, error)
}

// CompositeService manages composite snapshot nodes and their ordered
// reference lists.
type CompositeService interface {
	CreateComposite(ctx context.Context, parentUniqueID string, n *domain.Node, referencedIDs []string) (*domain.Node, error)
	// UpdateReferences replaces the reference list, re-validating types,
	// acyclicity and PV-name uniqueness.
	UpdateReferences(ctx context.Context, uniqueID string, referencedIDs []string) (*domain.CompositeSnapshotData, error)
	GetCompositeData(ctx context.Context, uniqueID string) (*domain.CompositeSnapshotData, error)
	ListReferencedNodes(ctx context.Context, uniqueID string) ([]*domain.Node, error)
}

// ResolverService expands snapshot and composite-snapshot nodes into flat PV
// item lists.
type ResolverService interface {
	// Resolve returns the restorable item list: the raw expansion with
	// duplicate PV names removed, first occurrence winning.
	Resolve(ctx context.Context, uniqueID string) ([]domain.SnapshotItem, error)
	// Expand returns the raw concatenated item list without deduplication,
	// in reference order then item order.
	Expand(ctx context.Context, uniqueID string) ([]domain.SnapshotItem, error)
}

// ConsistencyReport is the outcome of a consistency check.
type ConsistencyReport struct {
	// Duplicates lists PV names occurring more than once across the union
	// of the checked nodes, each name once, sorted.
	Duplicates []string `json:"duplicates"`
	// Failed maps input ids whose resolution failed to the failure message.
	// Only populated when the checker is configured to collect partial
	// results instead of failing fast.
	Failed map[string]string `json:"failed,omitempty"`
}

// ConsistencyService detects PV names contributed by more than one of a set
// of snapshot or composite-snapshot nodes.
type ConsistencyService interface {
	// CheckForDuplicates returns the offending PV names, empty if none.
	CheckForDuplicates(ctx context.Context, uniqueIDs []string) ([]string, error)
	// Check returns the full report, including per-id failures when the
	// service is configured to tolerate them.
	Check(ctx context.Context, uniqueIDs []string) (*ConsistencyReport, error)
}
