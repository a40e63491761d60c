package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Health is the result of probing a phase's dependencies (today only the
// ledger) just before the phase runs.
type Health struct {
	Phase  string
	Ready  bool
	Detail string
}

func Healthy(phase string) Health {
	return Health{Phase: phase, Ready: true}
}

// Unhealthy records why phase cannot run. The cause text is kept as the detail.
func Unhealthy(phase string, cause error) Health {
	detail := "unavailable"
	if cause != nil {
		if text := strings.TrimSpace(cause.Error()); text != "" {
			detail = text
		}
	}
	return Health{Phase: phase, Detail: detail}
}

// Err converts an unready result into an error naming the phase.
func (h Health) Err() error {
	if h.Ready {
		return nil
	}
	return fmt.Errorf("%s phase not ready: %w", h.Phase, errors.New(h.Detail))
}
