package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlindqvist/snaptree/internal/cli/formatter"
)

func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check ID...",
		Short: "Check snapshots and composites for duplicate PV names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.Checker.Check(context.Background(), args)
			if err != nil {
				return err
			}

			if len(report.Duplicates) == 0 && len(report.Failed) == 0 {
				fmt.Println(formatter.StyleGreen.Render("✔ no duplicate PV names"))
				return nil
			}

			if len(report.Duplicates) > 0 {
				fmt.Println(formatter.Header("duplicate pv names"))
				for _, name := range report.Duplicates {
					fmt.Println(formatter.StyleRed.Render("✘ ") + name)
				}
			}
			for id, msg := range report.Failed {
				fmt.Printf("%s %s: %s\n", formatter.StyleYellow.Render("⚠"), formatter.TruncID(id), msg)
			}
			return nil
		},
	}
	return cmd
}
