package importer

import (
	"context"
	"fmt"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/service"
)

// Export walks the subtree rooted at uniqueID and builds an interchange
// schema. Refs are the exported nodes' unique ids, so a round trip through a
// file keeps references between exported nodes intact.
func Export(ctx context.Context, tree service.TreeService, snapshots service.SnapshotService, composite service.CompositeService, uniqueID string) (*ExportSchema, error) {
	root, err := tree.GetNode(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	schema := &ExportSchema{Version: SchemaVersion}
	if err := exportNode(ctx, tree, snapshots, composite, root, "", schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func exportNode(ctx context.Context, tree service.TreeService, snapshots service.SnapshotService, composite service.CompositeService, n *domain.Node, parentRef string, schema *ExportSchema) error {
	exported := NodeExport{
		Ref:        n.UniqueID,
		ParentRef:  parentRef,
		Name:       n.Name,
		NodeType:   n.NodeType,
		UserName:   n.UserName,
		Tags:       n.Tags,
		Properties: n.Properties,
	}

	switch n.NodeType {
	case domain.NodeTypeSnapshot:
		data, err := snapshots.GetSnapshotData(ctx, n.UniqueID)
		if err != nil {
			return err
		}
		exported.SnapshotItems = data.Items
	case domain.NodeTypeCompositeSnapshot:
		data, err := composite.GetCompositeData(ctx, n.UniqueID)
		if err != nil {
			return err
		}
		exported.ReferencedRefs = data.ReferencedNodes
	}

	schema.Nodes = append(schema.Nodes, exported)

	children, err := tree.GetChildren(ctx, n.UniqueID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := exportNode(ctx, tree, snapshots, composite, child, n.UniqueID, schema); err != nil {
			return err
		}
	}
	return nil
}

// Import recreates a validated schema under the given parent, minting fresh
// unique ids. Composite reference lists are applied last so forward
// references between imported nodes work regardless of file order; refs not
// defined in the file pass through as unique ids of existing nodes.
func Import(ctx context.Context, tree service.TreeService, snapshots service.SnapshotService, composite service.CompositeService, parentUniqueID string, schema *ExportSchema) (int, error) {
	if errs := ValidateSchema(schema); len(errs) > 0 {
		return 0, fmt.Errorf("invalid import file: %v", errs[0])
	}

	refMap := make(map[string]string, len(schema.Nodes)) // file ref -> new unique id

	parentFor := func(ref string) string {
		if ref == "" {
			return parentUniqueID
		}
		return refMap[ref]
	}

	for _, n := range schema.Nodes {
		node := &domain.Node{
			Name:       n.Name,
			NodeType:   n.NodeType,
			UserName:   n.UserName,
			Tags:       n.Tags,
			Properties: n.Properties,
		}

		var created *domain.Node
		var err error
		switch n.NodeType {
		case domain.NodeTypeSnapshot:
			created, err = snapshots.SaveSnapshot(ctx, parentFor(n.ParentRef), node, n.SnapshotItems)
		case domain.NodeTypeCompositeSnapshot:
			// References are applied in the second pass.
			created, err = composite.CreateComposite(ctx, parentFor(n.ParentRef), node, nil)
		default:
			created, err = tree.CreateNode(ctx, parentFor(n.ParentRef), node)
		}
		if err != nil {
			return 0, fmt.Errorf("importing node %q: %w", n.Ref, err)
		}
		refMap[n.Ref] = created.UniqueID
	}

	for _, n := range schema.Nodes {
		if n.NodeType != domain.NodeTypeCompositeSnapshot || len(n.ReferencedRefs) == 0 {
			continue
		}
		refs := make([]string, len(n.ReferencedRefs))
		for i, ref := range n.ReferencedRefs {
			if mapped, ok := refMap[ref]; ok {
				refs[i] = mapped
			} else {
				refs[i] = ref
			}
		}
		if _, err := composite.UpdateReferences(ctx, refMap[n.Ref], refs); err != nil {
			return 0, fmt.Errorf("importing references of %q: %w", n.Ref, err)
		}
	}

	return len(schema.Nodes), nil
}
