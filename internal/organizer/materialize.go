package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mmove/internal/logging"
	"mmove/internal/services"
)

// MaterializeSummary counts destination folders seen by one pass.
type MaterializeSummary struct {
	Groups   int
	Created  int
	Existing int
}

// LogAttrs renders the summary as structured log fields.
func (s MaterializeSummary) LogAttrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("groups", s.Groups),
		logging.Int("created", s.Created),
		logging.Int("existing", s.Existing),
	}
}

// FolderName is the "<genre>-<year>" directory name for a group.
func FolderName(genre string, year int) string {
	return fmt.Sprintf("%s-%d", genre, year)
}

// DestinationRoot is the folder under root that receives items of genre and year.
func DestinationRoot(root, genre string, year int) string {
	return filepath.Join(root, FolderName(genre, year))
}

// Materialize makes sure a destination folder exists for every (year, genre)
// group of unmoved resolved items inside the materialize window.
func (o *Organizer) Materialize(ctx context.Context, root string) (MaterializeSummary, error) {
	logger := logging.WithContext(ctx, o.logger)
	var summary MaterializeSummary

	groups, err := o.store.DestinationGroups(ctx, root, o.materializeWindow)
	if err != nil {
		return summary, services.Wrap(services.ErrStore, "materialize", "load groups", root, err)
	}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Groups++
		dest := DestinationRoot(root, group.Genre, group.Year)
		info, err := o.fs.Stat(dest)
		switch {
		case err == nil && info.IsDir():
			summary.Existing++
			continue
		case err == nil:
			return summary, services.Wrap(services.ErrValidation, "materialize", "ensure folder",
				fmt.Sprintf("%s exists and is not a directory", dest), nil)
		case !errors.Is(err, os.ErrNotExist):
			return summary, services.Wrap(services.ErrTransient, "materialize", "stat folder", dest, err)
		}
		if err := o.fs.Mkdir(dest, 0o755); err != nil {
			return summary, services.Wrap(services.ErrTransient, "materialize", "create folder", dest, err)
		}
		summary.Created++
		logger.Info("destination folder created",
			logging.String(logging.FieldPath, dest),
			logging.String("genre", group.Genre),
			logging.Int("year", group.Year),
		)
	}
	return summary, nil
}
