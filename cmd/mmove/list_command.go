package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mmove/internal/config"
	"mmove/internal/ledger"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var stateFlag string
	var pendingMoves bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list <collection-root>",
		Short: "List ledger items for a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ledger.ListFilter{PendingMoves: pendingMoves, Limit: limit}
			if state := strings.ToLower(strings.TrimSpace(stateFlag)); state != "" {
				filter.State = ledger.YearState(state)
				if !filter.State.Valid() {
					return fmt.Errorf("unknown state %q (expected pending, resolved, unknown, or error)", stateFlag)
				}
			}
			root, err := collectionArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *ledger.Store) error {
				items, err := store.List(cmd.Context(), root, filter)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No items")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Kind(),
						strconv.Itoa(item.Depth),
						fmt.Sprintf("%s-%d", item.Genre, item.SourceYear),
						item.Year.String(),
						yesNo(item.Moved),
						displayPath(root, item.Path),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Kind", "Depth", "Folder", "Year", "Moved", "Path"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stateFlag, "state", "", "Only items in this year state (pending, resolved, unknown, error)")
	cmd.Flags().BoolVar(&pendingMoves, "pending-moves", false, "Only resolved items still waiting to move")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items (0 for all)")
	return cmd
}

// displayPath shortens path relative to root when it lives under it.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
