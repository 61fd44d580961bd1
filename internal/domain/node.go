package domain

import (
	"strings"
	"time"
)

// Reserved identity of the tree root. The root is always a folder, has no
// parent, and its unique id never changes.
const (
	RootNodeID         = 0
	RootFolderUniqueID = "44bef5de-e8e6-4014-af37-b8f6c8a939a2"
)

// Node is a vertex in the save-and-restore hierarchy. The payload a node
// carries (snapshot items, composite references) lives in side tables keyed
// by UniqueID; the node itself only records identity, position metadata,
// tags and free-form properties.
type Node struct {
	// ID is the legacy process-local numeric identifier. It is not
	// guaranteed unique across stores; UniqueID is the external handle.
	ID           int               `json:"id"`
	UniqueID     string            `json:"uniqueId"`
	Name         string            `json:"name"`
	NodeType     NodeType          `json:"nodeType"`
	Created      time.Time         `json:"created"`
	LastModified time.Time         `json:"lastModified"`
	UserName     string            `json:"userName"`
	Properties   map[string]string `json:"properties,omitempty"`
	Tags         []Tag             `json:"tags,omitempty"`
}

// Equal reports node identity: two nodes are the same node iff both the
// unique id and the node type match.
func (n *Node) Equal(other *Node) bool {
	if other == nil {
		return false
	}
	return n.UniqueID == other.UniqueID && n.NodeType == other.NodeType
}

// Compare implements the display ordering: folders sort before
// configurations, and otherwise nodes sort lexically by name. Any other
// type pairing falls through to the name comparison.
func Compare(a, b *Node) int {
	if a.NodeType == NodeTypeFolder && b.NodeType == NodeTypeConfiguration {
		return -1
	}
	if a.NodeType == NodeTypeConfiguration && b.NodeType == NodeTypeFolder {
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

// Clone returns a copy with cleared identity: no ID, no UniqueID, and both
// timestamps set to now. Properties and tags are deep-copied so the clone
// and the original never share a backing collection.
func (n *Node) Clone(now time.Time) *Node {
	c := &Node{
		Name:         n.Name,
		NodeType:     n.NodeType,
		Created:      now,
		LastModified: now,
		UserName:     n.UserName,
	}
	if len(n.Properties) > 0 {
		c.Properties = make(map[string]string, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	if len(n.Tags) > 0 {
		c.Tags = make([]Tag, len(n.Tags))
		copy(c.Tags, n.Tags)
	}
	return c
}

// PutProperty sets a property, allocating the map on first write.
func (n *Node) PutProperty(key, value string) {
	if n.Properties == nil {
		n.Properties = make(map[string]string)
	}
	n.Properties[key] = value
}

// GetProperty returns the property value, or "" if absent.
func (n *Node) GetProperty(key string) string {
	return n.Properties[key]
}

// RemoveProperty deletes a property. Removing an absent key is a no-op.
func (n *Node) RemoveProperty(key string) {
	delete(n.Properties, key)
}

// AddTag adds a tag to the node's tag set. Tags are keyed by name: adding a
// tag whose name is already present is a no-op.
func (n *Node) AddTag(tag Tag) {
	for _, t := range n.Tags {
		if t.Name == tag.Name {
			return
		}
	}
	n.Tags = append(n.Tags, tag)
}

// HasTag reports whether a tag with the given name is present.
func (n *Node) HasTag(name string) bool {
	for _, t := range n.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// RemoveTag removes the tag with the given name. Matching is by name, not
// by value; removing an absent tag is a no-op.
func (n *Node) RemoveTag(name string) {
	for i, t := range n.Tags {
		if t.Name == name {
			n.Tags = append(n.Tags[:i], n.Tags[i+1:]...)
			return
		}
	}
}

// IsRoot reports whether the node is the reserved tree root.
func (n *Node) IsRoot() bool {
	return n.UniqueID == RootFolderUniqueID
}
