package organizer

import (
	"context"

	"mmove/internal/fileutil"
	"mmove/internal/ledger"
	"mmove/internal/services"
)

// PlannedMove is one item the next move pass would relocate.
type PlannedMove struct {
	Item              *ledger.Item
	DestinationDir    string
	DestinationExists bool
}

// Plan lists the movable items under root in move order together with their
// destination folders. It reads the ledger and stats paths but changes nothing.
func (o *Organizer) Plan(ctx context.Context, root string) ([]PlannedMove, error) {
	items, err := o.store.Movable(ctx, root, o.moveWindow)
	if err != nil {
		return nil, services.Wrap(services.ErrStore, "plan", "load movable", root, err)
	}
	plan := make([]PlannedMove, 0, len(items))
	for _, item := range items {
		dest := DestinationRoot(root, item.Genre, item.Year.Value)
		exists, err := fileutil.Exists(o.fs, dest)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "plan", "stat destination", dest, err)
		}
		plan = append(plan, PlannedMove{Item: item, DestinationDir: dest, DestinationExists: exists})
	}
	return plan, nil
}
