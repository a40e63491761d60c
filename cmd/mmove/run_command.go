package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mmove/internal/config"
	"mmove/internal/ledger"
	"mmove/internal/organizer"
	"mmove/internal/pipeline"
	"mmove/internal/preflight"
	"mmove/internal/stage"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var loadFolders bool

	cmd := &cobra.Command{
		Use:   "run <collection-root>",
		Short: "Resolve years and move items into genre-year folders",
		Long: "Resolve the year of every pending item under the collection root and move\n" +
			"resolved items into <genre>-<year> folders. With --load-folders the tree is\n" +
			"walked first: junk files and empty folders are removed and new items recorded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// A bad root exits 2 even when the ledger is unreachable.
			if _, err := preflight.CheckCollectionRoot(args[0], cfg.Collection.RequireMusicInPath); err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *ledger.Store) error {
				logger, err := ctx.newLogger(cfg, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				var opts []pipeline.Option
				if !ctx.JSONMode() && isTerminal(cmd.ErrOrStderr()) {
					opts = append(opts, pipeline.WithOrganizerOptions(organizer.WithProgress(newMoveProgress(cmd.ErrOrStderr()))))
				}
				runner := pipeline.New(cfg, store, logger, opts...)
				report, runErr := runner.Run(cmd.Context(), args[0], pipeline.Options{LoadFolders: loadFolders})
				if report.RunID != "" {
					if ctx.JSONMode() {
						if err := writeJSON(cmd, reportView(report)); err != nil {
							return err
						}
					} else {
						printReport(cmd.OutOrStdout(), report)
					}
				}
				return runErr
			})
		},
	}

	cmd.Flags().BoolVar(&loadFolders, "load-folders", false, "Walk the collection and record new items before resolving")
	return cmd
}

type phaseView struct {
	Name     string         `json:"name"`
	Duration string         `json:"duration"`
	Counts   map[string]any `json:"counts"`
}

type runView struct {
	RunID    string      `json:"run_id"`
	Root     string      `json:"root"`
	Duration string      `json:"duration"`
	Phases   []phaseView `json:"phases"`
	Blocked  []string    `json:"blocked,omitempty"`
}

func reportView(report pipeline.Report) runView {
	view := runView{
		RunID:    report.RunID,
		Root:     report.Root,
		Duration: report.Duration.Round(time.Millisecond).String(),
	}
	for _, phase := range report.Phases {
		pv := phaseView{Name: phase.Name, Duration: phase.Duration.Round(time.Millisecond).String(), Counts: map[string]any{}}
		if phase.Summary != nil {
			for _, attr := range phase.Summary.LogAttrs() {
				pv.Counts[attr.Key] = attr.Value.Any()
			}
		}
		view.Phases = append(view.Phases, pv)
	}
	view.Blocked = blockedLines(report)
	return view
}

func blockedLines(report pipeline.Report) []string {
	summary, ok := report.Phase(pipeline.PhaseMove)
	if !ok {
		return nil
	}
	moves, ok := summary.(organizer.MoveSummary)
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(moves.BlockedDirs))
	for _, blocked := range moves.BlockedDirs {
		lines = append(lines, fmt.Sprintf("%s (contains %s)", blocked.Path, blocked.Child))
	}
	return lines
}

func printReport(out io.Writer, report pipeline.Report) {
	fmt.Fprintf(out, "Run %s on %s\n", report.RunID, report.Root)
	rows := make([][]string, 0, len(report.Phases))
	for _, phase := range report.Phases {
		rows = append(rows, []string{phase.Name, summaryText(phase.Summary), phase.Duration.Round(time.Millisecond).String()})
	}
	fmt.Fprintln(out, renderTable([]string{"Phase", "Result", "Duration"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	if blocked := blockedLines(report); len(blocked) > 0 {
		fmt.Fprintln(out, "Blocked directories (kept for a later run):")
		for _, line := range blocked {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
}

func summaryText(summary stage.Summary) string {
	if summary == nil {
		return ""
	}
	attrs := summary.LogAttrs()
	parts := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value.String()))
	}
	return strings.Join(parts, " ")
}
