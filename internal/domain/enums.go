package domain

type NodeType string

const (
	NodeTypeFolder            NodeType = "FOLDER"
	NodeTypeConfiguration     NodeType = "CONFIGURATION"
	NodeTypeSnapshot          NodeType = "SNAPSHOT"
	NodeTypeCompositeSnapshot NodeType = "COMPOSITE_SNAPSHOT"
)

// ValidNodeTypes is the canonical set of accepted node type strings.
var ValidNodeTypes = map[string]bool{
	string(NodeTypeFolder):            true,
	string(NodeTypeConfiguration):     true,
	string(NodeTypeSnapshot):          true,
	string(NodeTypeCompositeSnapshot): true,
}

// CanContain reports whether a node of type t may hold a direct child of
// type child. Folders hold folders, configurations and composite snapshots;
// configurations hold snapshots. Snapshots and composite snapshots are
// leaves.
func (t NodeType) CanContain(child NodeType) bool {
	switch t {
	case NodeTypeFolder:
		return child == NodeTypeFolder || child == NodeTypeConfiguration ||
			child == NodeTypeCompositeSnapshot
	case NodeTypeConfiguration:
		return child == NodeTypeSnapshot
	default:
		return false
	}
}

// Resolvable reports whether a node of type t may appear in a composite
// snapshot's reference list.
func (t NodeType) Resolvable() bool {
	return t == NodeTypeSnapshot || t == NodeTypeCompositeSnapshot
}
