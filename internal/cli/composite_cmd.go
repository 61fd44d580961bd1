package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/cli/formatter"
	"github.com/mlindqvist/snaptree/internal/domain"
)

func newCompositeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "composite",
		Short: "Manage composite snapshots",
	}

	cmd.AddCommand(
		newCompositeCreateCmd(app),
		newCompositeShowCmd(app),
		newCompositeRefsCmd(app),
	)

	return cmd
}

func newCompositeCreateCmd(app *App) *cobra.Command {
	var parentID, name, userName string
	var refs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a composite snapshot from referenced nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if parentID == "" {
				parentID = domain.RootFolderUniqueID
			}
			n := &domain.Node{Name: name, NodeType: domain.NodeTypeCompositeSnapshot, UserName: userName}
			created, err := app.Composite.CreateComposite(context.Background(), parentID, n, refs)
			if err != nil {
				return err
			}
			fmt.Printf("Created composite snapshot %s (%s) with %d references\n",
				created.Name, created.UniqueID, len(refs))
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent folder unique id (defaults to the root folder)")
	cmd.Flags().StringVar(&name, "name", "", "Composite snapshot name")
	cmd.Flags().StringVar(&userName, "user", "", "User name recorded on the node")
	cmd.Flags().StringArrayVar(&refs, "ref", nil, "Referenced snapshot or composite unique id (repeatable, ordered)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCompositeShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a composite snapshot's referenced nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := app.Composite.ListReferencedNodes(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(formatter.Header("referenced nodes"))
			for i, n := range nodes {
				fmt.Printf("%2d. %s  %s  %s\n", i+1, formatter.Bold(n.Name),
					formatter.NodeTypeBadge(n.NodeType), formatter.TruncID(n.UniqueID))
			}
			return nil
		},
	}
	return cmd
}

func newCompositeRefsCmd(app *App) *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "refs ID",
		Short: "Replace a composite snapshot's reference list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.Composite.UpdateReferences(context.Background(), args[0], refs)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s: %d references\n", data.UniqueID, len(data.ReferencedNodes))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&refs, "ref", nil, "Referenced unique id (repeatable, ordered; none clears the list)")

	return cmd
}
