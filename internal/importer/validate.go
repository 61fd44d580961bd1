package importer

import (
	"fmt"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// ValidateSchema checks an interchange file before conversion. Returns every
// validation error found, not just the first.
func ValidateSchema(schema *ExportSchema) []error {
	var errs []error

	if schema.Version != SchemaVersion {
		errs = append(errs, fmt.Errorf("unsupported schema version %d (expected %d)", schema.Version, SchemaVersion))
	}
	if len(schema.Nodes) == 0 {
		errs = append(errs, fmt.Errorf("no nodes to import"))
		return errs
	}

	byRef := make(map[string]*NodeExport, len(schema.Nodes))
	for i := range schema.Nodes {
		n := &schema.Nodes[i]

		if n.Ref == "" {
			errs = append(errs, fmt.Errorf("nodes[%d]: ref is required", i))
			continue
		}
		if _, dup := byRef[n.Ref]; dup {
			errs = append(errs, fmt.Errorf("nodes[%d]: duplicate ref %q", i, n.Ref))
			continue
		}

		if n.Name == "" {
			errs = append(errs, fmt.Errorf("node %q: name is required", n.Ref))
		}
		if !domain.ValidNodeTypes[string(n.NodeType)] {
			errs = append(errs, fmt.Errorf("node %q: unknown node type %q", n.Ref, n.NodeType))
		}

		// Parents must appear earlier in the file.
		if n.ParentRef != "" {
			parent, ok := byRef[n.ParentRef]
			if !ok {
				errs = append(errs, fmt.Errorf("node %q: parent ref %q not defined earlier in the file", n.Ref, n.ParentRef))
			} else if !parent.NodeType.CanContain(n.NodeType) {
				errs = append(errs, fmt.Errorf("node %q: %s cannot contain %s", n.Ref, parent.NodeType, n.NodeType))
			}
		}

		if len(n.SnapshotItems) > 0 && n.NodeType != domain.NodeTypeSnapshot {
			errs = append(errs, fmt.Errorf("node %q: snapshot items on a %s node", n.Ref, n.NodeType))
		}
		if len(n.ReferencedRefs) > 0 && n.NodeType != domain.NodeTypeCompositeSnapshot {
			errs = append(errs, fmt.Errorf("node %q: referenced refs on a %s node", n.Ref, n.NodeType))
		}

		byRef[n.Ref] = n
	}

	// Composite references pointing at file-local refs must target
	// resolvable node types. Refs not in the file are assumed to be unique
	// ids of existing nodes; the service validates them on save.
	for _, n := range schema.Nodes {
		if n.NodeType != domain.NodeTypeCompositeSnapshot {
			continue
		}
		for _, ref := range n.ReferencedRefs {
			if target, ok := byRef[ref]; ok && !target.NodeType.Resolvable() {
				errs = append(errs, fmt.Errorf("composite %q: reference %q is a %s", n.Ref, ref, target.NodeType))
			}
		}
	}

	return errs
}
