package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mlindqvist/snaptree/internal/db"
	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/repository"
	"github.com/mlindqvist/snaptree/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires the full service stack over an in-memory database.
type testEnv struct {
	db        *sql.DB
	nodeRepo  *repository.SQLiteNodeRepo
	snapRepo  *repository.SQLiteSnapshotRepo
	uow       db.UnitOfWork
	ids       *testutil.SeqIDGenerator
	tree      TreeService
	snapshots SnapshotService
	composite CompositeService
	resolver  ResolverService
	checker   ConsistencyService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	nodeRepo := repository.NewSQLiteNodeRepo(database)
	snapRepo := repository.NewSQLiteSnapshotRepo(database)
	uow := testutil.NewTestUoW(database)
	ids := &testutil.SeqIDGenerator{}

	resolver := NewResolverService(nodeRepo, snapRepo, 0)
	return &testEnv{
		db:        database,
		nodeRepo:  nodeRepo,
		snapRepo:  snapRepo,
		uow:       uow,
		ids:       ids,
		tree:      NewTreeService(nodeRepo, snapRepo, uow, ids),
		snapshots: NewSnapshotService(nodeRepo, snapRepo, uow, ids),
		composite: NewCompositeService(nodeRepo, snapRepo, uow, ids, 0, false),
		resolver:  resolver,
		checker:   NewConsistencyService(resolver, true),
	}
}

// mustCreateFolder creates a folder under the given parent.
func (e *testEnv) mustCreateFolder(t *testing.T, parentID, name string) *domain.Node {
	t.Helper()
	n, err := e.tree.CreateNode(context.Background(), parentID, testutil.NewTestNode(name))
	require.NoError(t, err)
	return n
}

// mustCreateConfig creates a configuration under the given parent.
func (e *testEnv) mustCreateConfig(t *testing.T, parentID, name string) *domain.Node {
	t.Helper()
	n, err := e.tree.CreateNode(context.Background(), parentID,
		testutil.NewTestNode(name, testutil.WithNodeType(domain.NodeTypeConfiguration)))
	require.NoError(t, err)
	return n
}

// mustSaveSnapshot creates a snapshot with items given as pvName/value pairs.
func (e *testEnv) mustSaveSnapshot(t *testing.T, configID, name string, pairs ...string) *domain.Node {
	t.Helper()
	n, err := e.snapshots.SaveSnapshot(context.Background(), configID,
		testutil.NewTestNode(name, testutil.WithNodeType(domain.NodeTypeSnapshot)),
		testutil.Items(pairs...))
	require.NoError(t, err)
	return n
}

// mustCreateComposite creates a composite snapshot under the given folder.
func (e *testEnv) mustCreateComposite(t *testing.T, folderID, name string, refs ...string) *domain.Node {
	t.Helper()
	n, err := e.composite.CreateComposite(context.Background(), folderID,
		testutil.NewTestNode(name, testutil.WithNodeType(domain.NodeTypeCompositeSnapshot)), refs)
	require.NoError(t, err)
	return n
}

const rootID = domain.RootFolderUniqueID
