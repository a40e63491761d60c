package stage

import (
	"context"

	"mmove/internal/logging"
)

// Summary is the per-phase result reported by a handler.
type Summary interface {
	LogAttrs() []logging.Attr
}

// Handler describes the contract the pipeline needs from each phase.
type Handler interface {
	Name() string
	Execute(ctx context.Context, root string) (Summary, error)
	HealthCheck(ctx context.Context) Health
}
