package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/domain"
	"github.com/mlindqvist/snaptree/internal/importer"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a subtree to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.Export(context.Background(), app.Tree, app.Snapshots, app.Composite, args[0])
			if err != nil {
				return err
			}
			if err := importer.SaveSchema(out, schema); err != nil {
				return err
			}
			fmt.Printf("Exported %d nodes to %s\n", len(schema.Nodes), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "snaptree-export.json", "Output file")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a subtree from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadSchema(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidateSchema(schema); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(cmd.ErrOrStderr(), " -", e)
				}
				return fmt.Errorf("%d validation errors", len(errs))
			}
			if parentID == "" {
				parentID = domain.RootFolderUniqueID
			}
			count, err := importer.Import(context.Background(), app.Tree, app.Snapshots, app.Composite, parentID, schema)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d nodes under %s\n", count, parentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent unique id (defaults to the root folder)")

	return cmd
}
