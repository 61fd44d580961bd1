package service

import (
	"context"
	"fmt"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
)

type snapshotService struct {
	nodes     repository.NodeRepo
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	ids       domain.IDGenerator
}

func NewSnapshotService(nodes repository.NodeRepo, snapshots repository.SnapshotRepo, uow db.UnitOfWork, ids domain.IDGenerator) SnapshotService {
	return &snapshotService{nodes: nodes, snapshots: snapshots, uow: uow, ids: ids}
}

func (s *snapshotService) SaveSnapshot(ctx context.Context, parentUniqueID string, n *domain.Node, items []domain.SnapshotItem) (*domain.Node, error) {
	if n.NodeType == "" {
		n.NodeType = domain.NodeTypeSnapshot
	}
	if n.NodeType != domain.NodeTypeSnapshot {
		return nil, fmt.Errorf("snapshot node has type %s: %w", n.NodeType, domain.ErrInvalidStructure)
	}
	if err := validateNewNode(n); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txSnapshots := repository.NewSQLiteSnapshotRepo(tx)

		if err := createNodeInTx(ctx, txNodes, parentUniqueID, n, s.ids); err != nil {
			return err
		}
		// Items persist in save order, duplicates preserved: the snapshot
		// is the source of truth for what was captured.
		return txSnapshots.SaveItems(ctx, n.UniqueID, items)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *snapshotService) GetSnapshotData(ctx context.Context, uniqueID string) (*domain.SnapshotData, error) {
	node, err := s.nodes.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if node.NodeType != domain.NodeTypeSnapshot {
		return nil, fmt.Errorf("node %s is a %s, not a snapshot: %w",
			uniqueID, node.NodeType, domain.ErrInvalidStructure)
	}
	items, err := s.snapshots.GetItems(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	return &domain.SnapshotData{UniqueID: uniqueID, Items: items}, nil
}

func (s *snapshotService) ListAllSnapshots(ctx context.Context) ([]*domain.Node, error) {
	return s.nodes.ListByType(ctx, domain.NodeTypeSnapshot)
}
