// Package importer moves subtrees in and out of the store as JSON files.
package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// SchemaVersion is the interchange format version written by Export.
const SchemaVersion = 1

// ExportSchema is the top-level JSON structure for subtree export and import.
// Nodes appear in depth-first order, parents before children.
type ExportSchema struct {
	Version int          `json:"version"`
	Nodes   []NodeExport `json:"nodes"`
}

// NodeExport is one node in the interchange file. Refs are file-local
// handles; fresh unique ids are minted on import.
type NodeExport struct {
	Ref        string            `json:"ref"`
	ParentRef  string            `json:"parentRef,omitempty"` // empty = attach under the import target
	Name       string            `json:"name"`
	NodeType   domain.NodeType   `json:"nodeType"`
	UserName   string            `json:"userName,omitempty"`
	Tags       []domain.Tag      `json:"tags,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`

	// SnapshotItems is set for SNAPSHOT nodes only.
	SnapshotItems []domain.SnapshotItem `json:"snapshotItems,omitempty"`

	// ReferencedRefs is set for COMPOSITE_SNAPSHOT nodes only. Each entry
	// is either a ref from this file or the unique id of a node already in
	// the store.
	ReferencedRefs []string `json:"referencedRefs,omitempty"`
}

// LoadSchema reads and parses an interchange file.
func LoadSchema(path string) (*ExportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	var schema ExportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// SaveSchema writes an interchange file.
func SaveSchema(path string, schema *ExportSchema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
