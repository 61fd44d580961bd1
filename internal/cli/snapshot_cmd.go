package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/cli/formatter"
	"github.com/mlindqvist/snaptree/internal/domain"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage PV snapshots",
	}

	cmd.AddCommand(
		newSnapshotSaveCmd(app),
		newSnapshotShowCmd(app),
		newSnapshotListCmd(app),
		newSnapshotResolveCmd(app),
	)

	return cmd
}

func newSnapshotSaveCmd(app *App) *cobra.Command {
	var configID, name, userName string
	var items []string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a snapshot under a configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]domain.SnapshotItem, 0, len(items))
			for _, item := range items {
				pv, value, ok := strings.Cut(item, "=")
				if !ok {
					return fmt.Errorf("item %q: expected PV=VALUE", item)
				}
				parsed = append(parsed, domain.SnapshotItem{PVName: pv, Value: value})
			}

			n := &domain.Node{Name: name, NodeType: domain.NodeTypeSnapshot, UserName: userName}
			created, err := app.Snapshots.SaveSnapshot(context.Background(), configID, n, parsed)
			if err != nil {
				return err
			}
			fmt.Printf("Saved snapshot %s (%s) with %d items\n", created.Name, created.UniqueID, len(parsed))
			return nil
		},
	}

	cmd.Flags().StringVar(&configID, "config", "", "Configuration unique id")
	cmd.Flags().StringVar(&name, "name", "", "Snapshot name")
	cmd.Flags().StringVar(&userName, "user", "", "User name recorded on the snapshot")
	cmd.Flags().StringArrayVar(&items, "item", nil, "PV item as PV=VALUE (repeatable)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newSnapshotShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show the stored items of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.Snapshots.GetSnapshotData(context.Background(), args[0])
			if err != nil {
				return err
			}
			printItems(data.Items)
			return nil
		},
	}
	return cmd
}

func newSnapshotListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every snapshot in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := app.Snapshots.ListAllSnapshots(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(formatter.Header("snapshots"))
			for _, s := range snaps {
				fmt.Printf("%s  %s  %s\n", formatter.Bold(s.Name), formatter.TruncID(s.UniqueID),
					formatter.Dim(s.Created.Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	return cmd
}

func newSnapshotResolveCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "Resolve a snapshot or composite snapshot into its restorable item list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var items []domain.SnapshotItem
			var err error
			if raw {
				items, err = app.Resolver.Expand(ctx, args[0])
			} else {
				items, err = app.Resolver.Resolve(ctx, args[0])
			}
			if err != nil {
				return err
			}
			printItems(items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Skip PV-name deduplication")

	return cmd
}

func printItems(items []domain.SnapshotItem) {
	for _, item := range items {
		line := fmt.Sprintf("%s = %s", formatter.Bold(item.PVName), item.Value)
		if item.ReadbackPVName != "" {
			line += formatter.Dim(fmt.Sprintf("  (readback %s = %s)", item.ReadbackPVName, item.ReadbackValue))
		}
		fmt.Println(line)
	}
	fmt.Println(formatter.Dim(fmt.Sprintf("%d items", len(items))))
}
