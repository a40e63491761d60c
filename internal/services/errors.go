package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
	ErrStore         = errors.New("store error")
)

// Process exit statuses reported by the mmove command.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalidRoot = 2
)

// Wrap builds an error message that includes phase context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RootError marks a failure to accept the collection root itself. It maps to
// ExitInvalidRoot regardless of the wrapped marker.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("collection root %s: %v", e.Root, e.Err)
}

func (e *RootError) Unwrap() error { return e.Err }

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var rootErr *RootError
	if errors.As(err, &rootErr) {
		return ExitInvalidRoot
	}
	return ExitFailure
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "mmove failure"
	}
	return strings.Join(parts, ": ")
}
