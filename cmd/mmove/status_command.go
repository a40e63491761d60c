package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mmove/internal/config"
	"mmove/internal/ledger"
	"mmove/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status [collection-root]",
		Short: "Show readiness checks and ledger counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				root := ""
				if len(args) == 1 {
					expanded, err := collectionArg(args[0])
					if err != nil {
						return err
					}
					root = expanded
				}
				results := preflight.RunAll(cmd.Context(), cfg, root, store)
				stats, err := store.Stats(cmd.Context(), root)
				if err != nil {
					return err
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, struct {
						Config string             `json:"config"`
						Checks []preflight.Result `json:"checks"`
						Stats  ledger.Stats       `json:"stats"`
					}{ctx.configPath, results, stats})
				}

				out := cmd.OutOrStdout()
				colorize := isTerminal(out)
				renderHeading(out, "Readiness", colorize)
				for _, result := range results {
					state := checkPassed
					if !result.Passed {
						state = checkFailed
					}
					fmt.Fprintln(out, renderCheckLine(result.Name, state, result.Detail, colorize))
				}
				fmt.Fprintln(out)

				title := "Ledger (all collections)"
				if root != "" {
					title = "Ledger"
				}
				renderHeading(out, title, colorize)
				rows := [][]string{
					{"Total", strconv.Itoa(stats.Total)},
					{"Pending", strconv.Itoa(stats.Pending)},
					{"Resolved", strconv.Itoa(stats.Resolved)},
					{"Unknown", strconv.Itoa(stats.Unknown)},
					{"Error", strconv.Itoa(stats.Errored)},
					{"Moved", strconv.Itoa(stats.Moved)},
					{"Awaiting move", strconv.Itoa(stats.Misfiled)},
				}
				fmt.Fprintln(out, renderTable([]string{"State", "Items"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}
