package formatter

import (
	"strings"

	"github.com/mlindqvist/snaptree/internal/domain"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Name     string
	UniqueID string
	NodeType domain.NodeType
	Level    int
	IsLast   bool
	Detail   string // e.g. tag names
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Names are colored by node type; the short unique id and any
// detail badge follow dimmed.
func RenderTree(items []TreeItem) string {
	var b strings.Builder
	for _, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				prefix += treePipe
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		b.WriteString(prefix)
		b.WriteString(NodeTypeStyle(item.NodeType).Render(item.Name))
		b.WriteString("  ")
		b.WriteString(TruncID(item.UniqueID))
		if item.Detail != "" {
			b.WriteString("  ")
			b.WriteString(StyleBlue.Render("[ " + item.Detail + " ]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
