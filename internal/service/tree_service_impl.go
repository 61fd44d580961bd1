package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
)

type treeService struct {
	nodes     repository.NodeRepo
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	ids       domain.IDGenerator
}

func NewTreeService(nodes repository.NodeRepo, snapshots repository.SnapshotRepo, uow db.UnitOfWork, ids domain.IDGenerator) TreeService {
	return &treeService{nodes: nodes, snapshots: snapshots, uow: uow, ids: ids}
}

func (s *treeService) CreateNode(ctx context.Context, parentUniqueID string, n *domain.Node) (*domain.Node, error) {
	if err := validateNewNode(n); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		return createNodeInTx(ctx, txNodes, parentUniqueID, n, s.ids)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// createNodeInTx runs the containment and sibling checks and inserts the
// node. Shared with snapshot and composite creation, which add their payload
// writes in the same transaction.
func createNodeInTx(ctx context.Context, txNodes repository.NodeRepo, parentUniqueID string, n *domain.Node, ids domain.IDGenerator) error {
	parent, err := txNodes.GetByUniqueID(ctx, parentUniqueID)
	if err != nil {
		return fmt.Errorf("parent %s: %w", parentUniqueID, err)
	}
	if !parent.NodeType.CanContain(n.NodeType) {
		return fmt.Errorf("%s cannot contain %s: %w", parent.NodeType, n.NodeType, domain.ErrInvalidStructure)
	}

	taken, err := txNodes.HasSibling(ctx, parentUniqueID, n.Name, n.NodeType, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%s %q under %s: %w", n.NodeType, n.Name, parentUniqueID, domain.ErrNameInUse)
	}

	n.UniqueID = ids.NewID()
	now := time.Now().UTC()
	n.Created = now
	n.LastModified = now

	if err := txNodes.Insert(ctx, n, parentUniqueID); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("unique id %s already taken: %w", n.UniqueID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func validateNewNode(n *domain.Node) error {
	if n.Name == "" {
		return fmt.Errorf("node name is required: %w", domain.ErrInvalidStructure)
	}
	if !domain.ValidNodeTypes[string(n.NodeType)] {
		return fmt.Errorf("unknown node type %q: %w", n.NodeType, domain.ErrInvalidStructure)
	}
	return nil
}

func (s *treeService) GetNode(ctx context.Context, uniqueID string) (*domain.Node, error) {
	return s.nodes.GetByUniqueID(ctx, uniqueID)
}

func (s *treeService) GetRootNode(ctx context.Context) (*domain.Node, error) {
	return s.nodes.GetByUniqueID(ctx, domain.RootFolderUniqueID)
}

func (s *treeService) GetParent(ctx context.Context, uniqueID string) (*domain.Node, error) {
	parentID, err := s.nodes.GetParentID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, fmt.Errorf("node %s has no parent: %w", uniqueID, domain.ErrNotFound)
	}
	return s.nodes.GetByUniqueID(ctx, parentID)
}

func (s *treeService) GetChildren(ctx context.Context, uniqueID string) ([]*domain.Node, error) {
	if _, err := s.nodes.GetByUniqueID(ctx, uniqueID); err != nil {
		return nil, err
	}
	children, err := s.nodes.ListChildren(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(children, func(i, j int) bool {
		return domain.Compare(children[i], children[j]) < 0
	})
	return children, nil
}

func (s *treeService) UpdateNode(ctx context.Context, n *domain.Node) (*domain.Node, error) {
	var updated *domain.Node
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)

		stored, err := txNodes.GetByUniqueID(ctx, n.UniqueID)
		if err != nil {
			return err
		}
		if stored.IsRoot() {
			return fmt.Errorf("updating root: %w", domain.ErrRootImmutable)
		}
		if n.NodeType != "" && n.NodeType != stored.NodeType {
			return fmt.Errorf("node type cannot change from %s to %s: %w",
				stored.NodeType, n.NodeType, domain.ErrInvalidStructure)
		}
		if n.Name == "" {
			return fmt.Errorf("node name is required: %w", domain.ErrInvalidStructure)
		}

		if n.Name != stored.Name {
			parentID, err := txNodes.GetParentID(ctx, n.UniqueID)
			if err != nil {
				return err
			}
			taken, err := txNodes.HasSibling(ctx, parentID, n.Name, stored.NodeType, n.UniqueID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%s %q: %w", stored.NodeType, n.Name, domain.ErrNameInUse)
			}
		}

		stored.Name = n.Name
		if n.UserName != "" {
			stored.UserName = n.UserName
		}
		stored.Properties = n.Properties
		stored.Tags = n.Tags
		stored.LastModified = time.Now().UTC()

		if err := txNodes.Update(ctx, stored); err != nil {
			return err
		}
		updated = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *treeService) DeleteNode(ctx context.Context, uniqueID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txSnapshots := repository.NewSQLiteSnapshotRepo(tx)

		node, err := txNodes.GetByUniqueID(ctx, uniqueID)
		if err != nil {
			return err
		}
		if node.IsRoot() {
			return fmt.Errorf("deleting root: %w", domain.ErrRootImmutable)
		}

		subtree, err := txNodes.ListSubtreeIDs(ctx, uniqueID)
		if err != nil {
			return err
		}
		inSubtree := make(map[string]bool, len(subtree))
		for _, id := range subtree {
			inSubtree[id] = true
		}

		// A subtree may only go away if nothing outside it still points in.
		for _, id := range subtree {
			referencing, err := txSnapshots.ListReferencing(ctx, id)
			if err != nil {
				return err
			}
			for _, ref := range referencing {
				if !inSubtree[ref] {
					return fmt.Errorf("node %s is referenced by composite snapshot %s: %w",
						id, ref, domain.ErrReferenced)
				}
			}
		}

		// Clear reference lists owned inside the subtree so the cascade
		// delete cannot trip the referenced_id constraint.
		for _, id := range subtree {
			if err := txSnapshots.SaveReferences(ctx, id, nil); err != nil {
				return err
			}
		}

		return txNodes.Delete(ctx, uniqueID)
	})
}

func (s *treeService) Move(ctx context.Context, uniqueID, newParentUniqueID string) (*domain.Node, error) {
	var moved *domain.Node
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)

		node, err := txNodes.GetByUniqueID(ctx, uniqueID)
		if err != nil {
			return err
		}
		if node.IsRoot() {
			return fmt.Errorf("moving root: %w", domain.ErrRootImmutable)
		}

		newParent, err := txNodes.GetByUniqueID(ctx, newParentUniqueID)
		if err != nil {
			return fmt.Errorf("target parent %s: %w", newParentUniqueID, err)
		}
		if !newParent.NodeType.CanContain(node.NodeType) {
			return fmt.Errorf("%s cannot contain %s: %w",
				newParent.NodeType, node.NodeType, domain.ErrInvalidStructure)
		}

		subtree, err := txNodes.ListSubtreeIDs(ctx, uniqueID)
		if err != nil {
			return err
		}
		for _, id := range subtree {
			if id == newParentUniqueID {
				return fmt.Errorf("moving %s under its own descendant %s: %w",
					uniqueID, newParentUniqueID, domain.ErrCycle)
			}
		}

		taken, err := txNodes.HasSibling(ctx, newParentUniqueID, node.Name, node.NodeType, uniqueID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%s %q under %s: %w",
				node.NodeType, node.Name, newParentUniqueID, domain.ErrNameInUse)
		}

		now := time.Now().UTC()
		if err := txNodes.SetParent(ctx, uniqueID, newParentUniqueID, now); err != nil {
			return err
		}
		node.LastModified = now
		moved = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *treeService) AddTag(ctx context.Context, uniqueID string, tag domain.Tag) (*domain.Node, error) {
	if tag.Name == "" {
		return nil, fmt.Errorf("tag name is required: %w", domain.ErrInvalidStructure)
	}
	if tag.Created.IsZero() {
		tag.Created = time.Now().UTC()
	}
	return s.mutateNode(ctx, uniqueID, func(n *domain.Node) {
		n.AddTag(tag)
	})
}

func (s *treeService) RemoveTag(ctx context.Context, uniqueID, tagName string) (*domain.Node, error) {
	return s.mutateNode(ctx, uniqueID, func(n *domain.Node) {
		n.RemoveTag(tagName)
	})
}

func (s *treeService) PutProperty(ctx context.Context, uniqueID, key, value string) (*domain.Node, error) {
	if key == "" {
		return nil, fmt.Errorf("property key is required: %w", domain.ErrInvalidStructure)
	}
	return s.mutateNode(ctx, uniqueID, func(n *domain.Node) {
		n.PutProperty(key, value)
	})
}

func (s *treeService) RemoveProperty(ctx context.Context, uniqueID, key string) (*domain.Node, error) {
	return s.mutateNode(ctx, uniqueID, func(n *domain.Node) {
		n.RemoveProperty(key)
	})
}

// mutateNode loads a node, applies fn, bumps LastModified and persists, all
// in one transaction. Tag and property mutations funnel through here so the
// idempotent no-op cases still refresh the timestamp consistently.
func (s *treeService) mutateNode(ctx context.Context, uniqueID string, fn func(*domain.Node)) (*domain.Node, error) {
	var mutated *domain.Node
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)

		node, err := txNodes.GetByUniqueID(ctx, uniqueID)
		if err != nil {
			return err
		}
		fn(node)
		node.LastModified = time.Now().UTC()
		if err := txNodes.Update(ctx, node); err != nil {
			return err
		}
		mutated = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mutated, nil
}
