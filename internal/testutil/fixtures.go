package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// SeqIDGenerator mints deterministic sequential ids ("test-0001",
// "test-0002", ...) so tests can assert on exact unique ids.
type SeqIDGenerator struct {
	counter atomic.Int64
}

func (g *SeqIDGenerator) NewID() string {
	return fmt.Sprintf("test-%04d", g.counter.Add(1))
}

// NodeOption customizes a fixture node.
type NodeOption func(*domain.Node)

func WithNodeType(t domain.NodeType) NodeOption {
	return func(n *domain.Node) { n.NodeType = t }
}

func WithUserName(u string) NodeOption {
	return func(n *domain.Node) { n.UserName = u }
}

func WithTag(name string) NodeOption {
	return func(n *domain.Node) {
		n.AddTag(domain.Tag{Name: name, Created: time.Now().UTC()})
	}
}

func WithProperty(key, value string) NodeOption {
	return func(n *domain.Node) { n.PutProperty(key, value) }
}

// NewTestNode builds an unsaved folder node with the given name. The tree
// service assigns identity and timestamps on create.
func NewTestNode(name string, opts ...NodeOption) *domain.Node {
	n := &domain.Node{
		Name:     name,
		NodeType: domain.NodeTypeFolder,
		UserName: "tester",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Items builds a snapshot item list from (pvName, value) pairs.
func Items(pairs ...string) []domain.SnapshotItem {
	if len(pairs)%2 != 0 {
		panic("testutil.Items: pairs must be pvName, value, pvName, value, ...")
	}
	var items []domain.SnapshotItem
	for i := 0; i < len(pairs); i += 2 {
		items = append(items, domain.SnapshotItem{PVName: pairs[i], Value: pairs[i+1]})
	}
	return items
}
