package stage

import (
	"context"
	"errors"

	"mmove/internal/services"
)

var errNoImplementation = errors.New("phase has no implementation")

// Func adapts a phase function into a Handler. Check may be nil, in which
// case the phase always reports healthy.
type Func struct {
	Phase string
	Run   func(ctx context.Context, root string) (Summary, error)
	Check func(ctx context.Context) error
}

// Name returns the phase name.
func (f Func) Name() string { return f.Phase }

// Execute runs the phase.
func (f Func) Execute(ctx context.Context, root string) (Summary, error) {
	if f.Run == nil {
		return nil, services.Wrap(services.ErrConfiguration, f.Phase, "execute", "no run function", errNoImplementation)
	}
	return f.Run(ctx, root)
}

// HealthCheck reports whether the phase's dependencies are reachable.
func (f Func) HealthCheck(ctx context.Context) Health {
	if f.Run == nil {
		return Unhealthy(f.Phase, errNoImplementation)
	}
	if f.Check == nil {
		return Healthy(f.Phase)
	}
	if err := f.Check(ctx); err != nil {
		return Unhealthy(f.Phase, err)
	}
	return Healthy(f.Phase)
}
