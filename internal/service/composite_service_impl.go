package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
)

type compositeService struct {
	nodes     repository.NodeRepo
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	ids       domain.IDGenerator
	maxDepth  int
	strict    bool
}

// NewCompositeService creates the composite-snapshot lifecycle service.
// maxDepth bounds reference validation walks the same way it bounds
// resolution; <= 0 selects DefaultMaxResolveDepth. With strict true, saving
// a reference list whose combined expansion contains duplicate PV names is
// rejected outright; with strict false duplicates are legal and surface
// through the consistency checker and resolution-time deduplication.
func NewCompositeService(nodes repository.NodeRepo, snapshots repository.SnapshotRepo, uow db.UnitOfWork, ids domain.IDGenerator, maxDepth int, strict bool) CompositeService {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxResolveDepth
	}
	return &compositeService{nodes: nodes, snapshots: snapshots, uow: uow, ids: ids, maxDepth: maxDepth, strict: strict}
}

func (s *compositeService) CreateComposite(ctx context.Context, parentUniqueID string, n *domain.Node, referencedIDs []string) (*domain.Node, error) {
	if n.NodeType == "" {
		n.NodeType = domain.NodeTypeCompositeSnapshot
	}
	if n.NodeType != domain.NodeTypeCompositeSnapshot {
		return nil, fmt.Errorf("composite snapshot node has type %s: %w", n.NodeType, domain.ErrInvalidStructure)
	}
	if err := validateNewNode(n); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txSnapshots := repository.NewSQLiteSnapshotRepo(tx)

		// The new node does not exist yet, so references cannot reach it;
		// only type and duplicate validation apply here.
		if err := validateReferences(ctx, txNodes, txSnapshots, "", referencedIDs, s.maxDepth, s.strict); err != nil {
			return err
		}
		if err := createNodeInTx(ctx, txNodes, parentUniqueID, n, s.ids); err != nil {
			return err
		}
		return txSnapshots.SaveReferences(ctx, n.UniqueID, referencedIDs)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *compositeService) UpdateReferences(ctx context.Context, uniqueID string, referencedIDs []string) (*domain.CompositeSnapshotData, error) {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txSnapshots := repository.NewSQLiteSnapshotRepo(tx)

		node, err := txNodes.GetByUniqueID(ctx, uniqueID)
		if err != nil {
			return err
		}
		if node.NodeType != domain.NodeTypeCompositeSnapshot {
			return fmt.Errorf("node %s is a %s, not a composite snapshot: %w",
				uniqueID, node.NodeType, domain.ErrInvalidStructure)
		}

		if err := validateReferences(ctx, txNodes, txSnapshots, uniqueID, referencedIDs, s.maxDepth, s.strict); err != nil {
			return err
		}

		if err := txSnapshots.SaveReferences(ctx, uniqueID, referencedIDs); err != nil {
			return err
		}
		node.LastModified = time.Now().UTC()
		return txNodes.Update(ctx, node)
	})
	if err != nil {
		return nil, err
	}
	return &domain.CompositeSnapshotData{UniqueID: uniqueID, ReferencedNodes: referencedIDs}, nil
}

func (s *compositeService) GetCompositeData(ctx context.Context, uniqueID string) (*domain.CompositeSnapshotData, error) {
	node, err := s.nodes.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if node.NodeType != domain.NodeTypeCompositeSnapshot {
		return nil, fmt.Errorf("node %s is a %s, not a composite snapshot: %w",
			uniqueID, node.NodeType, domain.ErrInvalidStructure)
	}
	refs, err := s.snapshots.GetReferences(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	return &domain.CompositeSnapshotData{UniqueID: uniqueID, ReferencedNodes: refs}, nil
}

func (s *compositeService) ListReferencedNodes(ctx context.Context, uniqueID string) ([]*domain.Node, error) {
	data, err := s.GetCompositeData(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	nodes := make([]*domain.Node, 0, len(data.ReferencedNodes))
	for _, ref := range data.ReferencedNodes {
		node, err := s.nodes.GetByUniqueID(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("referenced node %s: %w", ref, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// validateReferences enforces the composite invariants before a reference
// list is saved: every reference resolves to a snapshot or composite
// snapshot, and no reference can reach selfID (the composite being edited).
// With strict set, the combined expansion must also be free of duplicate PV
// names.
func validateReferences(ctx context.Context, txNodes repository.NodeRepo, txSnapshots repository.SnapshotRepo, selfID string, referencedIDs []string, maxDepth int, strict bool) error {
	for _, ref := range referencedIDs {
		refNode, err := txNodes.GetByUniqueID(ctx, ref)
		if err != nil {
			return fmt.Errorf("referenced node %s: %w", ref, err)
		}
		if !refNode.NodeType.Resolvable() {
			return fmt.Errorf("referenced node %s is a %s: %w",
				ref, refNode.NodeType, domain.ErrInvalidStructure)
		}
		if selfID != "" {
			if err := ensureUnreachable(ctx, txSnapshots, ref, selfID, 1, maxDepth); err != nil {
				return err
			}
		}
	}

	if strict {
		resolver := NewResolverService(txNodes, txSnapshots, maxDepth)
		checker := NewConsistencyService(resolver, true)
		duplicates, err := checker.CheckForDuplicates(ctx, referencedIDs)
		if err != nil {
			return err
		}
		if len(duplicates) > 0 {
			return fmt.Errorf("%v: %w", duplicates, domain.ErrDuplicatePVNames)
		}
	}
	return nil
}

// ensureUnreachable walks the committed reference graph from start and
// fails with domain.ErrCycle if target shows up: saving such a reference
// list would make the graph cyclic.
func ensureUnreachable(ctx context.Context, txSnapshots repository.SnapshotRepo, start, target string, depth, maxDepth int) error {
	if start == target {
		return fmt.Errorf("reference list would close a cycle through %s: %w", target, domain.ErrCycle)
	}
	if depth > maxDepth {
		return fmt.Errorf("reference validation at depth %d: %w", depth, domain.ErrDepthExceeded)
	}
	refs, err := txSnapshots.GetReferences(ctx, start)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := ensureUnreachable(ctx, txSnapshots, ref, target, depth+1, maxDepth); err != nil {
			return err
		}
	}
	return nil
}
