package importer

import (
	"testing"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchema_Valid(t *testing.T) {
	schema := &ExportSchema{
		Version: SchemaVersion,
		Nodes: []NodeExport{
			{Ref: "f", Name: "folder", NodeType: domain.NodeTypeFolder},
			{Ref: "c", ParentRef: "f", Name: "cfg", NodeType: domain.NodeTypeConfiguration},
			{Ref: "s", ParentRef: "c", Name: "snap", NodeType: domain.NodeTypeSnapshot,
				SnapshotItems: []domain.SnapshotItem{{PVName: "pvA", Value: "1"}}},
			{Ref: "comp", ParentRef: "f", Name: "combined", NodeType: domain.NodeTypeCompositeSnapshot,
				ReferencedRefs: []string{"s"}},
		},
	}
	assert.Empty(t, ValidateSchema(schema))
}

func TestValidateSchema_CollectsAllErrors(t *testing.T) {
	schema := &ExportSchema{
		Version: 99,
		Nodes: []NodeExport{
			{Ref: "a", Name: "", NodeType: domain.NodeType("BOGUS")},
			{Ref: "a", Name: "dup ref", NodeType: domain.NodeTypeFolder},
			{Ref: "b", ParentRef: "missing", Name: "orphan", NodeType: domain.NodeTypeFolder},
		},
	}

	errs := ValidateSchema(schema)
	require.NotEmpty(t, errs)
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	assert.Contains(t, msgs, "unsupported schema version 99 (expected 1)")
	assert.Contains(t, msgs, `node "a": name is required`)
	assert.Contains(t, msgs, `nodes[1]: duplicate ref "a"`)
	assert.Contains(t, msgs, `node "b": parent ref "missing" not defined earlier in the file`)
}

func TestValidateSchema_ContainmentAndPayloadRules(t *testing.T) {
	schema := &ExportSchema{
		Version: SchemaVersion,
		Nodes: []NodeExport{
			{Ref: "f", Name: "folder", NodeType: domain.NodeTypeFolder},
			// snapshot directly under a folder
			{Ref: "s", ParentRef: "f", Name: "snap", NodeType: domain.NodeTypeSnapshot},
			// items on a folder
			{Ref: "f2", ParentRef: "f", Name: "folder 2", NodeType: domain.NodeTypeFolder,
				SnapshotItems: []domain.SnapshotItem{{PVName: "pvA"}}},
			// composite referencing a folder
			{Ref: "comp", ParentRef: "f", Name: "combined", NodeType: domain.NodeTypeCompositeSnapshot,
				ReferencedRefs: []string{"f2"}},
		},
	}

	errs := ValidateSchema(schema)
	require.Len(t, errs, 3)
}

func TestValidateSchema_Empty(t *testing.T) {
	errs := ValidateSchema(&ExportSchema{Version: SchemaVersion})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no nodes")
}
