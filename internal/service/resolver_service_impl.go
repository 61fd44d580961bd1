package service

import (
	"context"
	"fmt"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
)

// DefaultMaxResolveDepth bounds composite-snapshot nesting during
// resolution. Deeper graphs fail with domain.ErrDepthExceeded instead of
// recursing without limit.
const DefaultMaxResolveDepth = 50

type resolverService struct {
	nodes     repository.NodeRepo
	snapshots repository.SnapshotRepo
	maxDepth  int
}

// NewResolverService creates a resolver reading through the given
// repositories. maxDepth <= 0 selects DefaultMaxResolveDepth.
func NewResolverService(nodes repository.NodeRepo, snapshots repository.SnapshotRepo, maxDepth int) ResolverService {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxResolveDepth
	}
	return &resolverService{nodes: nodes, snapshots: snapshots, maxDepth: maxDepth}
}

func (s *resolverService) Resolve(ctx context.Context, uniqueID string) ([]domain.SnapshotItem, error) {
	node, err := s.nodes.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	// A plain snapshot is the source of truth: its saved list comes back
	// verbatim, duplicates included. Deduplication only applies when
	// combining references.
	if node.NodeType == domain.NodeTypeSnapshot {
		return s.snapshots.GetItems(ctx, uniqueID)
	}

	items, err := s.Expand(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	return dedupeByPVName(items), nil
}

func (s *resolverService) Expand(ctx context.Context, uniqueID string) ([]domain.SnapshotItem, error) {
	return s.expand(ctx, uniqueID, make(map[string]bool), 1)
}

// expand walks the reference graph depth-first. onPath holds the composite
// ids on the current recursion path; revisiting one means the graph is not a
// DAG. Plain snapshots never enter the path, so diamond-shaped references
// through shared snapshots stay legal.
func (s *resolverService) expand(ctx context.Context, uniqueID string, onPath map[string]bool, depth int) ([]domain.SnapshotItem, error) {
	if depth > s.maxDepth {
		return nil, fmt.Errorf("resolving %s at depth %d: %w", uniqueID, depth, domain.ErrDepthExceeded)
	}
	if onPath[uniqueID] {
		return nil, fmt.Errorf("composite snapshot %s references itself: %w", uniqueID, domain.ErrCycle)
	}

	node, err := s.nodes.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	switch node.NodeType {
	case domain.NodeTypeSnapshot:
		// Leaf: the saved list verbatim, duplicates preserved.
		return s.snapshots.GetItems(ctx, uniqueID)

	case domain.NodeTypeCompositeSnapshot:
		refs, err := s.snapshots.GetReferences(ctx, uniqueID)
		if err != nil {
			return nil, err
		}

		onPath[uniqueID] = true
		defer delete(onPath, uniqueID)

		var items []domain.SnapshotItem
		for _, ref := range refs {
			resolved, err := s.expand(ctx, ref, onPath, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, resolved...)
		}
		return items, nil

	default:
		return nil, fmt.Errorf("cannot resolve %s node %s: %w",
			node.NodeType, uniqueID, domain.ErrInvalidStructure)
	}
}

// dedupeByPVName drops later occurrences of a PV name, keeping the first in
// concatenation order.
func dedupeByPVName(items []domain.SnapshotItem) []domain.SnapshotItem {
	seen := make(map[string]bool, len(items))
	deduped := make([]domain.SnapshotItem, 0, len(items))
	for _, item := range items {
		if seen[item.PVName] {
			continue
		}
		seen[item.PVName] = true
		deduped = append(deduped, item)
	}
	return deduped
}
