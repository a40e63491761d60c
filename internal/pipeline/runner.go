package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"mmove/internal/classify"
	"mmove/internal/config"
	"mmove/internal/ledger"
	"mmove/internal/logging"
	"mmove/internal/organizer"
	"mmove/internal/preflight"
	"mmove/internal/resolver"
	"mmove/internal/services"
	"mmove/internal/stage"
	"mmove/internal/walker"
)

// Phase names, in execution order.
const (
	PhaseWalk        = "walk"
	PhaseResolve     = "resolve"
	PhaseMaterialize = "materialize"
	PhaseMove        = "move"
)

// Options selects what a run does.
type Options struct {
	// LoadFolders walks the tree and records new items before resolving.
	LoadFolders bool
}

// PhaseReport is the outcome of one executed phase.
type PhaseReport struct {
	Name     string
	Summary  stage.Summary
	Duration time.Duration
}

// Report describes a finished or aborted run.
type Report struct {
	RunID    string
	Root     string
	Phases   []PhaseReport
	Duration time.Duration
}

// Phase returns the summary of the named phase when it ran.
func (r Report) Phase(name string) (stage.Summary, bool) {
	for _, phase := range r.Phases {
		if phase.Name == name {
			return phase.Summary, true
		}
	}
	return nil, false
}

// Runner executes mmove runs.
type Runner struct {
	cfg      *config.Config
	store    *ledger.Store
	fs       afero.Fs
	logger   *slog.Logger
	orgOpts  []organizer.Option
	newRunID func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithFs replaces the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithOrganizerOptions forwards options to the organizer used by the
// materialize and move phases.
func WithOrganizerOptions(opts ...organizer.Option) Option {
	return func(r *Runner) { r.orgOpts = append(r.orgOpts, opts...) }
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// New constructs a runner. The store stays owned by the caller.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		store:    store,
		fs:       afero.NewOsFs(),
		logger:   logger,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Phases returns the handlers a run with opts executes, in order.
func (r *Runner) Phases(opts Options) []stage.Handler {
	classifier := classify.FromConfig(r.cfg)
	res := resolver.New(r.store, r.fs, classifier, r.logger, resolver.WithStrictYearParse(r.cfg.Resolver.StrictYearParse))
	org := organizer.New(r.store, r.fs, r.cfg.Mover, r.logger, r.orgOpts...)
	ping := r.store.Ping

	var handlers []stage.Handler
	if opts.LoadFolders {
		w := walker.New(r.store, r.fs, classifier, r.logger)
		handlers = append(handlers, stage.Func{
			Phase: PhaseWalk,
			Run: func(ctx context.Context, root string) (stage.Summary, error) {
				return w.Walk(ctx, root)
			},
			Check: ping,
		})
	}
	handlers = append(handlers,
		stage.Func{
			Phase: PhaseResolve,
			Run: func(ctx context.Context, root string) (stage.Summary, error) {
				return res.Run(ctx, root)
			},
			Check: ping,
		},
		stage.Func{
			Phase: PhaseMaterialize,
			Run: func(ctx context.Context, root string) (stage.Summary, error) {
				return org.Materialize(ctx, root)
			},
			Check: ping,
		},
		stage.Func{
			Phase: PhaseMove,
			Run: func(ctx context.Context, root string) (stage.Summary, error) {
				return org.Move(ctx, root)
			},
			Check: ping,
		},
	)
	return handlers
}

// Run validates root, takes the per-root lock, and executes every phase.
func (r *Runner) Run(ctx context.Context, root string, opts Options) (Report, error) {
	var report Report
	if r.cfg == nil || r.store == nil {
		return report, services.Wrap(services.ErrConfiguration, "run", "initialize", "runner requires config and ledger", nil)
	}

	root, err := preflight.CheckCollectionRoot(root, r.cfg.Collection.RequireMusicInPath)
	if err != nil {
		return report, err
	}
	report.Root = root

	release, err := r.acquireLock(root)
	if err != nil {
		return report, err
	}
	defer release()

	report.RunID = r.newRunID()
	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithCollection(ctx, root)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Bool("load_folders", opts.LoadFolders),
		logging.String("ledger", r.store.Location()),
	)

	for _, handler := range r.Phases(opts) {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(started)
			logger.Warn("run interrupted before phase",
				logging.String(logging.FieldEventType, "run_interrupted"),
				logging.String(logging.FieldPhase, handler.Name()))
			return report, err
		}
		phaseCtx := services.WithPhase(ctx, handler.Name())
		phaseLogger := logging.WithContext(phaseCtx, r.logger)

		if err := handler.HealthCheck(phaseCtx).Err(); err != nil {
			report.Duration = time.Since(started)
			return report, services.Wrap(services.ErrStore, handler.Name(), "health check", "ledger unreachable", err)
		}

		phaseStart := time.Now()
		summary, err := handler.Execute(phaseCtx, root)
		phase := PhaseReport{Name: handler.Name(), Summary: summary, Duration: time.Since(phaseStart)}
		report.Phases = append(report.Phases, phase)
		if err != nil {
			report.Duration = time.Since(started)
			if errors.Is(err, context.Canceled) {
				phaseLogger.Warn("run interrupted; ledger is consistent and the next run resumes",
					logging.String(logging.FieldEventType, "run_interrupted"))
				return report, err
			}
			logging.ErrorWithContext(phaseLogger, "phase failed", "phase_failed",
				logging.Error(err),
				logging.Duration("duration", phase.Duration),
			)
			return report, err
		}
		attrs := append(summary.LogAttrs(),
			logging.String(logging.FieldEventType, "phase_complete"),
			logging.Duration("duration", phase.Duration),
		)
		phaseLogger.Info("phase finished", logging.Args(attrs...)...)
	}

	report.Duration = time.Since(started)
	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

func (r *Runner) acquireLock(root string) (func(), error) {
	if err := os.MkdirAll(r.cfg.LockDir(), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "run", "create lock dir", r.cfg.LockDir(), err)
	}
	lockPath := r.cfg.LockPath(root)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "run", "acquire lock", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "run", "acquire lock",
			fmt.Sprintf("another mmove run is already processing %s", root), nil)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}, nil
}
