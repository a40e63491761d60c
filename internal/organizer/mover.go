package organizer

import (
	"context"
	"errors"
	"fmt"

	"mmove/internal/fileutil"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/services"
)

// BlockedDir is a directory that could not move because it still contains a
// subdirectory.
type BlockedDir struct {
	Path  string
	Child string
}

// MoveSummary counts the outcomes of one move pass.
type MoveSummary struct {
	Candidates  int
	Moved       int
	Missing     int
	Blocked     int
	Failed      int
	Unplaced    int
	Pruned      int
	BlockedDirs []BlockedDir
}

// LogAttrs renders the summary as structured log fields.
func (s MoveSummary) LogAttrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("candidates", s.Candidates),
		logging.Int("moved", s.Moved),
		logging.Int("missing", s.Missing),
		logging.Int("blocked", s.Blocked),
		logging.Int("failed", s.Failed),
		logging.Int("unplaced", s.Unplaced),
		logging.Int("pruned", s.Pruned),
	}
}

// Move relocates every movable item under root, deepest first. Per-item
// failures are logged and counted. A missing destination folder stops the pass
// only when materialize should have created it; a ledger write failure always
// does.
func (o *Organizer) Move(ctx context.Context, root string) (MoveSummary, error) {
	logger := logging.WithContext(ctx, o.logger)
	var summary MoveSummary

	items, err := o.store.Movable(ctx, root, o.moveWindow)
	if err != nil {
		return summary, services.Wrap(services.ErrStore, "move", "load movable", root, err)
	}
	summary.Candidates = len(items)
	o.progress.Start(len(items))
	defer o.progress.Finish()
	sampler := logging.NewProgressSampler(10)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		itemCtx := services.WithItemID(ctx, item.ID)
		outcome, err := o.moveItem(itemCtx, root, item, &summary)
		if err != nil {
			return summary, err
		}
		o.progress.Step(item, outcome)
		if sampler.ShouldLog(i+1, len(items)) {
			logger.Info("move progress",
				logging.Int("done", i+1),
				logging.Int("total", len(items)),
				logging.Int("moved", summary.Moved),
			)
		}
	}
	return summary, nil
}

func (o *Organizer) moveItem(ctx context.Context, root string, item *ledger.Item, summary *MoveSummary) (Outcome, error) {
	logger := logging.WithContext(ctx, o.logger)

	exists, err := fileutil.Exists(o.fs, item.Path)
	if err != nil || !exists {
		summary.Missing++
		attrs := []logging.Attr{logging.String(logging.FieldPath, item.Path)}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		logging.WarnWithContext(logger, "item path unavailable; not moved", "move_item_missing", attrs...)
		return OutcomeMissing, nil
	}

	if item.IsDir {
		removed, err := fileutil.PruneEmptyChildren(o.fs, item.Path)
		summary.Pruned += len(removed)
		if err != nil {
			logging.WarnWithContext(logger, "empty subdirectories not pruned", "prune_failed",
				logging.String(logging.FieldPath, item.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "directory may stay blocked"),
			)
		}
		child, err := fileutil.FirstChildDir(o.fs, item.Path)
		if err != nil {
			summary.Failed++
			logging.ErrorWithContext(logger, "directory unreadable", "move_failed",
				logging.String(logging.FieldPath, item.Path),
				logging.Error(err),
			)
			return OutcomeFailed, nil
		}
		if child != "" {
			summary.Blocked++
			summary.BlockedDirs = append(summary.BlockedDirs, BlockedDir{Path: item.Path, Child: child})
			logging.WarnWithContext(logger, "directory still has subdirectories; kept in place", "move_blocked",
				logging.String(logging.FieldPath, item.Path),
				logging.String("blocking_child", child),
				logging.String(logging.FieldImpact, "directory retried on the next run"),
				logging.String(logging.FieldErrorHint, "move or tag the blocking subdirectory"),
			)
			return OutcomeBlocked, nil
		}
	}

	destDir := DestinationRoot(root, item.Genre, item.Year.Value)
	final, err := o.SafeMove(item.Path, destDir)
	if err != nil {
		if errors.Is(err, ErrDestinationMissing) && !o.materializeWindow.Contains(item.Year.Value) {
			summary.Unplaced++
			logging.WarnWithContext(logger, "no folder for year outside the materialize window; not moved", "move_unplaced",
				logging.String(logging.FieldPath, item.Path),
				logging.Int("year", item.Year.Value),
				logging.String("destination", destDir),
				logging.String(logging.FieldImpact, "item stays unmoved until the folder exists"),
				logging.String(logging.FieldErrorHint, "create the folder by hand or widen mover.materialize_min_year/max_year"),
			)
			return OutcomeUnplaced, nil
		}
		if errors.Is(err, ErrDestinationMissing) {
			return OutcomeFailed, services.Wrap(ErrDestinationMissing, "move", "locate destination",
				fmt.Sprintf("%s has no materialized folder", item.Path), err)
		}
		summary.Failed++
		logging.ErrorWithContext(logger, "item not moved", "move_failed",
			logging.String(logging.FieldPath, item.Path),
			logging.String("destination", destDir),
			logging.Error(err),
		)
		return OutcomeFailed, nil
	}

	if err := o.store.MarkMoved(ctx, item.ID, final); err != nil {
		return OutcomeFailed, services.Wrap(services.ErrStore, "move", "mark moved",
			fmt.Sprintf("%s was moved to %s but the ledger was not updated", item.Path, final), err)
	}
	summary.Moved++
	logger.Info("item moved",
		logging.String(logging.FieldPath, item.Path),
		logging.String("destination", final),
		logging.String("kind", item.Kind()),
	)
	return OutcomeMoved, nil
}
