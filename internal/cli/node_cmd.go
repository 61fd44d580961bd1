package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/cli/formatter"
	"github.com/mlindqvist/snaptree/internal/domain"
)

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage tree nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeInspectCmd(app),
		newNodeRenameCmd(app),
		newNodeRemoveCmd(app),
		newNodeMoveCmd(app),
		newNodeTagCmd(app),
		newNodePropCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var parentID, name, nodeType, userName string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new folder or configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if parentID == "" {
				parentID = domain.RootFolderUniqueID
			}
			n := &domain.Node{
				Name:     name,
				NodeType: domain.NodeType(strings.ToUpper(nodeType)),
				UserName: userName,
			}
			created, err := app.Tree.CreateNode(context.Background(), parentID, n)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s %s (%s)\n", created.NodeType, created.Name, created.UniqueID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent unique id (defaults to the root folder)")
	cmd.Flags().StringVar(&name, "name", "", "Node name")
	cmd.Flags().StringVar(&nodeType, "type", "FOLDER", "Node type (FOLDER|CONFIGURATION)")
	cmd.Flags().StringVar(&userName, "user", "", "User name recorded on the node")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newNodeInspectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect ID",
		Short: "Show node details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			n, err := app.Tree.GetNode(ctx, args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(fmt.Sprintf("%s  %s\n\n", formatter.Bold(n.Name), formatter.NodeTypeBadge(n.NodeType)))
			b.WriteString(fmt.Sprintf("Unique ID:     %s\n", n.UniqueID))
			b.WriteString(fmt.Sprintf("Created:       %s\n", n.Created.Format("2006-01-02 15:04:05")))
			b.WriteString(fmt.Sprintf("Last modified: %s\n", n.LastModified.Format("2006-01-02 15:04:05")))
			if n.UserName != "" {
				b.WriteString(fmt.Sprintf("User:          %s\n", n.UserName))
			}
			if len(n.Tags) > 0 {
				names := make([]string, len(n.Tags))
				for i, tag := range n.Tags {
					names[i] = tag.Name
				}
				b.WriteString(fmt.Sprintf("Tags:          %s\n", strings.Join(names, ", ")))
			}
			for key, value := range n.Properties {
				b.WriteString(fmt.Sprintf("Property:      %s = %s\n", key, value))
			}

			if parent, err := app.Tree.GetParent(ctx, n.UniqueID); err == nil {
				b.WriteString(fmt.Sprintf("Parent:        %s %s\n", parent.Name, formatter.Dim(parent.UniqueID)))
			}

			fmt.Print(b.String())
			return nil
		},
	}
	return cmd
}

func newNodeRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			n, err := app.Tree.GetNode(ctx, args[0])
			if err != nil {
				return err
			}
			n.Name = args[1]
			updated, err := app.Tree.UpdateNode(ctx, n)
			if err != nil {
				return err
			}
			fmt.Printf("Renamed to %s\n", updated.Name)
			return nil
		},
	}
	return cmd
}

func newNodeRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a node and its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tree.DeleteNode(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newNodeMoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move ID PARENT_ID",
		Short: "Move a node under a new parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			moved, err := app.Tree.Move(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("Moved %s under %s\n", moved.Name, args[1])
			return nil
		},
	}
	return cmd
}

func newNodeTagCmd(app *App) *cobra.Command {
	var comment, userName string

	cmd := &cobra.Command{
		Use:   "tag ID NAME",
		Short: "Add a tag to a node (prefix NAME with - to remove)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			name := args[1]
			if strings.HasPrefix(name, "-") {
				if _, err := app.Tree.RemoveTag(ctx, args[0], strings.TrimPrefix(name, "-")); err != nil {
					return err
				}
				fmt.Printf("Removed tag %s\n", strings.TrimPrefix(name, "-"))
				return nil
			}
			if _, err := app.Tree.AddTag(ctx, args[0], domain.Tag{Name: name, Comment: comment, UserName: userName}); err != nil {
				return err
			}
			fmt.Printf("Tagged with %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Tag comment")
	cmd.Flags().StringVar(&userName, "user", "", "User name recorded on the tag")

	return cmd
}

func newNodePropCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prop ID KEY [VALUE]",
		Short: "Set a property on a node, or remove it when VALUE is omitted",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if len(args) == 2 {
				if _, err := app.Tree.RemoveProperty(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Removed property %s\n", args[1])
				return nil
			}
			if _, err := app.Tree.PutProperty(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[1], args[2])
			return nil
		},
	}
	return cmd
}
