package service

import (
	"context"
	"testing"
	"time"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComposite_StoresReferenceOrder(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	config := e.mustCreateConfig(t, rootID, "cfg")
	s1 := e.mustSaveSnapshot(t, config.UniqueID, "s1", "pvA", "1")
	s2 := e.mustSaveSnapshot(t, config.UniqueID, "s2", "pvB", "2")

	comp := e.mustCreateComposite(t, rootID, "combined", s2.UniqueID, s1.UniqueID)

	data, err := e.composite.GetCompositeData(ctx, comp.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, []string{s2.UniqueID, s1.UniqueID}, data.ReferencedNodes)
}

func TestCreateComposite_RejectsNonResolvableReference(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	folder := e.mustCreateFolder(t, rootID, "not a snapshot")

	_, err := e.composite.CreateComposite(ctx, rootID,
		testutil.NewTestNode("bad", testutil.WithNodeType(domain.NodeTypeCompositeSnapshot)),
		[]string{folder.UniqueID})
	assert.ErrorIs(t, err, domain.ErrInvalidStructure)

	_, err = e.composite.CreateComposite(ctx, rootID,
		testutil.NewTestNode("bad", testutil.WithNodeType(domain.NodeTypeCompositeSnapshot)),
		[]string{"no-such-node"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// failed creates leave nothing behind
	children, err := e.tree.GetChildren(ctx, rootID)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestCreateComposite_ReferencingCompositeAllowed(t *testing.T) {
	e := setupServices(t)

	config := e.mustCreateConfig(t, rootID, "cfg")
	snap := e.mustSaveSnapshot(t, config.UniqueID, "snap", "pvA", "1")
	inner := e.mustCreateComposite(t, rootID, "inner", snap.UniqueID)
	outer := e.mustCreateComposite(t, rootID, "outer", inner.UniqueID)

	refs, err := e.composite.ListReferencedNodes(context.Background(), outer.UniqueID)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.NodeTypeCompositeSnapshot, refs[0].NodeType)
}

func TestUpdateReferences_ReplacesList(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	config := e.mustCreateConfig(t, rootID, "cfg")
	s1 := e.mustSaveSnapshot(t, config.UniqueID, "s1", "pvA", "1")
	s2 := e.mustSaveSnapshot(t, config.UniqueID, "s2", "pvB", "2")
	comp := e.mustCreateComposite(t, rootID, "combined", s1.UniqueID)

	data, err := e.composite.UpdateReferences(ctx, comp.UniqueID, []string{s2.UniqueID})
	require.NoError(t, err)
	assert.Equal(t, []string{s2.UniqueID}, data.ReferencedNodes)

	stored, err := e.composite.GetCompositeData(ctx, comp.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, []string{s2.UniqueID}, stored.ReferencedNodes)
}

func TestUpdateReferences_BumpsLastModified(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	config := e.mustCreateConfig(t, rootID, "cfg")
	snap := e.mustSaveSnapshot(t, config.UniqueID, "snap", "pvA", "1")
	comp := e.mustCreateComposite(t, rootID, "combined")
	before := comp.LastModified

	time.Sleep(1100 * time.Millisecond) // RFC3339 storage has second precision

	_, err := e.composite.UpdateReferences(ctx, comp.UniqueID, []string{snap.UniqueID})
	require.NoError(t, err)

	got, err := e.tree.GetNode(ctx, comp.UniqueID)
	require.NoError(t, err)
	assert.True(t, got.LastModified.After(before))
}

func TestUpdateReferences_RejectsCycle(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	c1 := e.mustCreateComposite(t, rootID, "c1")
	c2 := e.mustCreateComposite(t, rootID, "c2", c1.UniqueID)

	// c1 -> c2 -> c1 would be cyclic
	_, err := e.composite.UpdateReferences(ctx, c1.UniqueID, []string{c2.UniqueID})
	assert.ErrorIs(t, err, domain.ErrCycle)

	// self-reference is the degenerate case
	_, err = e.composite.UpdateReferences(ctx, c1.UniqueID, []string{c1.UniqueID})
	assert.ErrorIs(t, err, domain.ErrCycle)

	// the stored list survived both rejected updates
	data, err := e.composite.GetCompositeData(ctx, c1.UniqueID)
	require.NoError(t, err)
	assert.Empty(t, data.ReferencedNodes)
}

func TestUpdateReferences_WrongNodeType(t *testing.T) {
	e := setupServices(t)

	folder := e.mustCreateFolder(t, rootID, "folder")
	_, err := e.composite.UpdateReferences(context.Background(), folder.UniqueID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStructure)
}

func TestCreateComposite_StrictRejectsDuplicatePVs(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	config := e.mustCreateConfig(t, rootID, "cfg")
	s1 := e.mustSaveSnapshot(t, config.UniqueID, "s1", "pvA", "1", "pvB", "2")
	s2 := e.mustSaveSnapshot(t, config.UniqueID, "s2", "pvB", "9")

	strict := NewCompositeService(e.nodeRepo, e.snapRepo, e.uow, e.ids, 0, true)

	_, err := strict.CreateComposite(ctx, rootID,
		testutil.NewTestNode("combined", testutil.WithNodeType(domain.NodeTypeCompositeSnapshot)),
		[]string{s1.UniqueID, s2.UniqueID})
	assert.ErrorIs(t, err, domain.ErrDuplicatePVNames)

	// disjoint PV sets pass
	_, err = strict.CreateComposite(ctx, rootID,
		testutil.NewTestNode("combined", testutil.WithNodeType(domain.NodeTypeCompositeSnapshot)),
		[]string{s1.UniqueID})
	assert.NoError(t, err)
}

func TestGetCompositeData_WrongNodeType(t *testing.T) {
	e := setupServices(t)

	config := e.mustCreateConfig(t, rootID, "cfg")
	snap := e.mustSaveSnapshot(t, config.UniqueID, "snap", "pvA", "1")

	_, err := e.composite.GetCompositeData(context.Background(), snap.UniqueID)
	assert.ErrorIs(t, err, domain.ErrInvalidStructure)
}
