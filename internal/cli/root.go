package cli

import (
	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/config"
	"github.com/mlindqvist/snaptree/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Tree      service.TreeService
	Snapshots service.SnapshotService
	Composite service.CompositeService
	Resolver  service.ResolverService
	Checker   service.ConsistencyService
	Config    config.Config

	// IsInteractive reports whether stdin is an interactive terminal.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "snaptree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "snaptree",
		Short: "Hierarchical save-and-restore store for control system PVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation on a terminal shows the tree.
			if app.IsInteractive != nil && app.IsInteractive() {
				return printTree(app, "", 0)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newNodeCmd(app),
		newTreeCmd(app),
		newSnapshotCmd(app),
		newCompositeCmd(app),
		newCheckCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newServeCmd(app),
	)

	return root
}
