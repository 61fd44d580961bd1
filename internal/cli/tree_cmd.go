package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/cli/formatter"
	"github.com/mlindqvist/snaptree/internal/domain"
)

func newTreeCmd(app *App) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [ID]",
		Short: "Display the node tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootID := ""
			if len(args) == 1 {
				rootID = args[0]
			}
			return printTree(app, rootID, depth)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum depth to display (0 = unlimited)")

	return cmd
}

// printTree renders the subtree rooted at rootID (the root folder when
// empty) to stdout.
func printTree(app *App, rootID string, depth int) error {
	ctx := context.Background()

	if rootID == "" {
		rootID = domain.RootFolderUniqueID
	}
	root, err := app.Tree.GetNode(ctx, rootID)
	if err != nil {
		return err
	}

	var items []formatter.TreeItem
	items = append(items, treeItemFor(root, 0, false))
	if err := collectTree(ctx, app, root, 1, depth, &items); err != nil {
		return err
	}

	fmt.Print(formatter.RenderTree(items))
	return nil
}

func collectTree(ctx context.Context, app *App, parent *domain.Node, level, maxDepth int, items *[]formatter.TreeItem) error {
	if maxDepth > 0 && level > maxDepth {
		return nil
	}
	children, err := app.Tree.GetChildren(ctx, parent.UniqueID)
	if err != nil {
		return err
	}
	for i, child := range children {
		last := i == len(children)-1
		*items = append(*items, treeItemFor(child, level, last))
		if err := collectTree(ctx, app, child, level+1, maxDepth, items); err != nil {
			return err
		}
	}
	return nil
}

func treeItemFor(n *domain.Node, level int, last bool) formatter.TreeItem {
	var detail string
	if len(n.Tags) > 0 {
		names := make([]string, len(n.Tags))
		for i, tag := range n.Tags {
			names[i] = tag.Name
		}
		detail = strings.Join(names, ", ")
	}
	return formatter.TreeItem{
		Name:     n.Name,
		UniqueID: n.UniqueID,
		NodeType: n.NodeType,
		Level:    level,
		IsLast:   last,
		Detail:   detail,
	}
}
