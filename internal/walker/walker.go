package walker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mmove/internal/classify"
	"mmove/internal/fileutil"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/services"
)

// Recorder receives discovered items. ledger.Store satisfies it.
type Recorder interface {
	Insert(ctx context.Context, item *ledger.Item) (bool, error)
}

// Summary counts what one walk did.
type Summary struct {
	TopFolders   int
	Inserted     int
	Known        int
	JunkDeleted  int
	EmptyRemoved int
	// Warnings counts best-effort deletions that failed.
	Warnings int
}

// LogAttrs renders the summary as structured log fields.
func (s Summary) LogAttrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("top_folders", s.TopFolders),
		logging.Int("inserted", s.Inserted),
		logging.Int("known", s.Known),
		logging.Int("junk_deleted", s.JunkDeleted),
		logging.Int("empty_removed", s.EmptyRemoved),
		logging.Int("warnings", s.Warnings),
	}
}

func (s *Summary) add(r visitResult) {
	s.Inserted += r.inserted
	s.Known += r.known
	s.JunkDeleted += r.junkDeleted
	s.EmptyRemoved += r.emptyRemoved
	s.Warnings += r.warnings
}

// visitResult is what a subtree contributed.
type visitResult struct {
	inserted     int
	known        int
	junkDeleted  int
	emptyRemoved int
	warnings     int
}

func (r *visitResult) merge(other visitResult) {
	r.inserted += other.inserted
	r.known += other.known
	r.junkDeleted += other.junkDeleted
	r.emptyRemoved += other.emptyRemoved
	r.warnings += other.warnings
}

// Walker populates the ledger from a collection tree.
type Walker struct {
	recorder   Recorder
	fs         afero.Fs
	classifier *classify.Classifier
	logger     *slog.Logger
}

// New constructs a walker. A nil fs means the OS filesystem.
func New(recorder Recorder, fs afero.Fs, classifier *classify.Classifier, logger *slog.Logger) *Walker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Walker{
		recorder:   recorder,
		fs:         fs,
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "walker"),
	}
}

// TopFolders lists and parses the top folders under root. Hidden directories,
// plain files, and dashless directories are skipped. Any malformed
// "<genre>-<year>" name fails the whole listing before anything is touched.
func (w *Walker) TopFolders(root string) ([]TopFolder, error) {
	entries, err := fileutil.ReadDirSorted(w.fs, root)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "walk", "read root", root, err)
	}
	var folders []TopFolder
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			w.logger.Debug("root entry skipped", logging.String(logging.FieldPath, filepath.Join(root, name)))
			continue
		}
		genre, year, ok, err := ParseTopFolder(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			w.logger.Debug("directory without genre-year name skipped", logging.String(logging.FieldPath, filepath.Join(root, name)))
			continue
		}
		folders = append(folders, TopFolder{Name: name, Path: filepath.Join(root, name), Genre: genre, Year: year})
	}
	return folders, nil
}

// Walk visits every top folder under root and records what it finds.
func (w *Walker) Walk(ctx context.Context, root string) (Summary, error) {
	root = filepath.Clean(root)
	logger := logging.WithContext(ctx, w.logger)
	var summary Summary

	folders, err := w.TopFolders(root)
	if err != nil {
		return summary, err
	}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.TopFolders++
		result, err := w.visit(ctx, root, folder, folder.Path, 0)
		summary.add(result)
		if err != nil {
			return summary, err
		}
		logger.Debug("top folder walked",
			logging.String(logging.FieldPath, folder.Path),
			logging.String("genre", folder.Genre),
			logging.Int("source_year", folder.Year),
			logging.Int("inserted", result.inserted),
		)
	}
	return summary, nil
}

func (w *Walker) visit(ctx context.Context, root string, top TopFolder, dir string, depth int) (visitResult, error) {
	var result visitResult
	if err := ctx.Err(); err != nil {
		return result, err
	}

	entries, err := fileutil.ReadDirSorted(w.fs, dir)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "walk", "read directory", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			child, err := w.visit(ctx, root, top, path, depth+1)
			result.merge(child)
			if err != nil {
				return result, err
			}
		case depth == 0 && w.classifier.IsSong(path):
			if err := w.record(ctx, root, top, path, depth, false, &result); err != nil {
				return result, err
			}
		case w.classifier.IsDeletable(path):
			if err := w.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				result.warnings++
				logging.WarnWithContext(w.logger, "junk file not deleted", "junk_delete_failed",
					logging.String(logging.FieldPath, path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file left in place"),
				)
				continue
			}
			result.junkDeleted++
		}
	}

	empty, err := fileutil.IsEmptyDir(w.fs, dir)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "walk", "check empty", dir, err)
	}
	if empty {
		if err := w.fs.Remove(dir); err != nil {
			result.warnings++
			logging.WarnWithContext(w.logger, "empty directory not removed", "empty_dir_remove_failed",
				logging.String(logging.FieldPath, dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "directory left in place and not recorded"),
			)
			return result, nil
		}
		result.emptyRemoved++
		return result, nil
	}
	return result, w.record(ctx, root, top, dir, depth, true, &result)
}

func (w *Walker) record(ctx context.Context, root string, top TopFolder, path string, depth int, isDir bool, result *visitResult) error {
	item := &ledger.Item{
		CollectionRoot: root,
		Path:           path,
		Depth:          depth,
		IsDir:          isDir,
		Genre:          top.Genre,
		SourceYear:     top.Year,
	}
	inserted, err := w.recorder.Insert(ctx, item)
	if err != nil {
		return services.Wrap(services.ErrStore, "walk", "record item", path, err)
	}
	if inserted {
		result.inserted++
	} else {
		result.known++
	}
	return nil
}
