package domain

import "errors"

var (
	// ErrNotFound marks a node, parent or referenced node that is absent.
	ErrNotFound = errors.New("node not found")

	// ErrInvalidStructure marks a containment rule violation, or a node of
	// the wrong type encountered during snapshot resolution.
	ErrInvalidStructure = errors.New("invalid tree structure")

	// ErrCycle marks a cyclic composite-snapshot reference graph, or a move
	// that would place a node inside its own subtree.
	ErrCycle = errors.New("cycle detected")

	// ErrReferenced marks a delete blocked by a live composite-snapshot
	// reference from outside the deleted subtree.
	ErrReferenced = errors.New("node referenced by composite snapshot")

	// ErrDepthExceeded marks a resolution that recursed past the configured
	// depth bound.
	ErrDepthExceeded = errors.New("resolution depth exceeded")

	// ErrConflict marks a structural mutation that found its target changed
	// by a concurrent writer.
	ErrConflict = errors.New("concurrent modification")

	// ErrNameInUse marks a create or move that would produce two siblings
	// with the same name and node type.
	ErrNameInUse = errors.New("sibling name already in use")

	// ErrDuplicatePVNames marks a composite snapshot save whose referenced
	// snapshots contribute the same PV name more than once.
	ErrDuplicatePVNames = errors.New("duplicate PV names across referenced snapshots")

	// ErrRootImmutable marks an attempt to rename, move or delete the root.
	ErrRootImmutable = errors.New("root node is immutable")
)
