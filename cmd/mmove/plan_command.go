package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mmove/internal/config"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/organizer"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <collection-root>",
		Short: "Show what the next move pass would relocate",
		Long:  "List movable items in move order with their destination folders. Nothing is changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				org := organizer.New(store, afero.NewReadOnlyFs(afero.NewOsFs()), cfg.Mover, logging.NewNop())
				plan, err := org.Plan(cmd.Context(), root)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, plan)
				}
				out := cmd.OutOrStdout()
				if len(plan) == 0 {
					fmt.Fprintln(out, "Nothing to move")
					return nil
				}
				rows := make([][]string, 0, len(plan))
				for _, move := range plan {
					dest := displayPath(root, move.DestinationDir)
					if !move.DestinationExists {
						dest += " (new)"
					}
					rows = append(rows, []string{
						move.Item.Kind(),
						move.Item.Year.String(),
						displayPath(root, move.Item.Path),
						dest,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Kind", "Year", "Item", "Destination"}, rows, nil))
				fmt.Fprintf(out, "%d item(s) would move\n", len(plan))
				return nil
			})
		},
	}
}
