package organizer

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/spf13/afero"

	"mmove/internal/config"
	"mmove/internal/ledger"
	"mmove/internal/logging"
)

// Store is the slice of the ledger the organizer needs.
type Store interface {
	DestinationGroups(ctx context.Context, root string, window ledger.YearWindow) ([]ledger.DestinationGroup, error)
	Movable(ctx context.Context, root string, window ledger.YearWindow) ([]*ledger.Item, error)
	MarkMoved(ctx context.Context, id int64, destination string) error
}

// Outcome describes what happened to one movable item.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeMissing  Outcome = "missing"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeFailed   Outcome = "failed"
	OutcomeUnplaced Outcome = "unplaced"
)

// Progress observes the move phase. Implementations must tolerate a zero
// total.
type Progress interface {
	Start(total int)
	Step(item *ledger.Item, outcome Outcome)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)                  {}
func (nopProgress) Step(*ledger.Item, Outcome) {}
func (nopProgress) Finish()                    {}

// Organizer materializes destination folders and moves items into them.
type Organizer struct {
	store             Store
	fs                afero.Fs
	materializeWindow ledger.YearWindow
	moveWindow        ledger.YearWindow
	attempts          int
	rand              func() uint32
	progress          Progress
	logger            *slog.Logger
}

// Option customizes an Organizer.
type Option func(*Organizer)

// WithRand replaces the collision suffix source.
func WithRand(fn func() uint32) Option {
	return func(o *Organizer) {
		if fn != nil {
			o.rand = fn
		}
	}
}

// WithProgress attaches a move progress observer.
func WithProgress(progress Progress) Option {
	return func(o *Organizer) {
		if progress != nil {
			o.progress = progress
		}
	}
}

// New constructs an organizer using the year windows from settings.
func New(store Store, fs afero.Fs, settings config.Mover, logger *slog.Logger, opts ...Option) *Organizer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	attempts := settings.CollisionAttempts
	if attempts <= 0 {
		attempts = 16
	}
	o := &Organizer{
		store:             store,
		fs:                fs,
		materializeWindow: ledger.YearWindow{Min: settings.MaterializeMinYear, Max: settings.MaterializeMaxYear},
		moveWindow:        ledger.YearWindow{Min: settings.MoveMinYear, Max: settings.MoveMaxYear},
		attempts:          attempts,
		rand:              rand.Uint32,
		progress:          nopProgress{},
		logger:            logging.NewComponentLogger(logger, "organizer"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
