package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"mmove/internal/classify"
	"mmove/internal/fileutil"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/services"
	"mmove/internal/tags"
)

// Store is the slice of the ledger the resolver needs.
type Store interface {
	Pending(ctx context.Context, root string) ([]*ledger.Item, error)
	SetYear(ctx context.Context, id int64, year ledger.Year) error
}

// Summary counts the outcomes of one resolve pass.
type Summary struct {
	Processed int
	Resolved  int
	Unknown   int
	Errored   int
	// Skipped items stay pending because their path could not be inspected.
	Skipped int
}

// LogAttrs renders the summary as structured log fields.
func (s Summary) LogAttrs() []logging.Attr {
	return []logging.Attr{
		logging.Int("processed", s.Processed),
		logging.Int("resolved", s.Resolved),
		logging.Int("unknown", s.Unknown),
		logging.Int("errored", s.Errored),
		logging.Int("skipped", s.Skipped),
	}
}

// Resolver resolves pending ledger items.
type Resolver struct {
	store      Store
	fs         afero.Fs
	tags       tags.Reader
	classifier *classify.Classifier
	strict     bool
	logger     *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithStrictYearParse makes malformed tag years abort the run.
func WithStrictYearParse(strict bool) Option {
	return func(r *Resolver) { r.strict = strict }
}

// WithTagReader replaces the dhowden/tag backed reader.
func WithTagReader(reader tags.Reader) Option {
	return func(r *Resolver) { r.tags = reader }
}

// New constructs a resolver over fs.
func New(store Store, fs afero.Fs, classifier *classify.Classifier, logger *slog.Logger, opts ...Option) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if classifier == nil {
		classifier = classify.Default()
	}
	r := &Resolver{
		store:      store,
		fs:         fs,
		tags:       tags.NewFileReader(fs),
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves every pending item under root in ledger order.
func (r *Resolver) Run(ctx context.Context, root string) (Summary, error) {
	logger := logging.WithContext(ctx, r.logger)
	var summary Summary

	items, err := r.store.Pending(ctx, root)
	if err != nil {
		return summary, services.Wrap(services.ErrStore, "resolve", "load pending", root, err)
	}
	logger.Debug("pending items loaded", logging.Int("count", len(items)))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		year, err := r.ResolvePath(item.Path)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				return summary, err
			}
			summary.Skipped++
			logging.WarnWithContext(logger, "cannot inspect item; left pending", "resolve_item_skipped",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String(logging.FieldPath, item.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the path"),
			)
			continue
		}
		if err := r.store.SetYear(ctx, item.ID, year); err != nil {
			return summary, services.Wrap(services.ErrStore, "resolve", "set year", item.Path, err)
		}
		summary.Processed++
		switch year.State {
		case ledger.YearResolved:
			summary.Resolved++
		case ledger.YearErrored:
			summary.Errored++
		default:
			summary.Unknown++
		}
		logger.Debug("item resolved",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldPath, item.Path),
			logging.String("year", year.String()),
		)
	}
	return summary, nil
}

// ResolvePath resolves the year for one path: errored when missing, the folder
// aggregate for directories, and the tag year for files.
func (r *Resolver) ResolvePath(path string) (ledger.Year, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ledger.Errored(), nil
		}
		return ledger.Year{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return r.ResolveFolderYear(path)
	}
	return r.ResolveSongYear(path)
}

// ResolveFolderYear returns the latest year among the immediate child files of
// dir. Subdirectories contribute nothing.
func (r *Resolver) ResolveFolderYear(dir string) (ledger.Year, error) {
	entries, err := fileutil.ReadDirSorted(r.fs, dir)
	if err != nil {
		return ledger.Year{}, fmt.Errorf("read dir %s: %w", dir, err)
	}
	year := ledger.Unknown()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		child, err := r.ResolveSongYear(filepath.Join(dir, entry.Name()))
		if err != nil {
			return ledger.Year{}, err
		}
		year = ledger.MaxYear(year, child)
	}
	return year, nil
}

// ResolveSongYear returns the tag year of a song file. Non-songs, untagged
// files, and files without a usable year are Unknown. A malformed timestamp
// is Unknown unless strict parsing is enabled.
func (r *Resolver) ResolveSongYear(path string) (ledger.Year, error) {
	if !r.classifier.IsSong(path) {
		return ledger.Unknown(), nil
	}
	set, err := r.tags.Read(path)
	if err != nil {
		r.logger.Debug("tags unreadable", logging.String(logging.FieldPath, path), logging.Error(err))
		return ledger.Unknown(), nil
	}
	if set.Year > 0 {
		return ledger.Resolved(set.Year), nil
	}
	field, text, ok := set.Timestamp()
	if !ok {
		return ledger.Unknown(), nil
	}
	year, err := ParseTimestampYear(text)
	if err != nil {
		if r.strict {
			return ledger.Year{}, services.Wrap(services.ErrValidation, "resolve", "parse tag year", path+" "+field, err)
		}
		logging.WarnWithContext(r.logger, "malformed tag year; treating as unknown", "tag_year_malformed",
			logging.String(logging.FieldPath, path),
			logging.String("field", field),
			logging.String("raw", text),
			logging.String(logging.FieldErrorHint, "fix the tag or set resolver.strict_year_parse to stop on it"),
		)
		return ledger.Unknown(), nil
	}
	return year, nil
}
