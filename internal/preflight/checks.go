package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"mmove/internal/config"
	"mmove/internal/services"
)

// Pinger is satisfied by the ledger store.
type Pinger interface {
	Ping(ctx context.Context) error
	Location() string
}

// CheckCollectionRoot expands and validates a collection root. It must exist,
// be a directory, and, when requireMusic is set, contain "music" somewhere in
// its path (case-insensitive). Failures are *services.RootError values.
func CheckCollectionRoot(root string, requireMusic bool) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", &services.RootError{Root: root, Err: services.Wrap(services.ErrValidation, "preflight", "check root", "collection root is required", nil)}
	}
	expanded, err := config.ExpandPath(root)
	if err != nil {
		return "", &services.RootError{Root: root, Err: services.Wrap(services.ErrValidation, "preflight", "expand root", root, err)}
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &services.RootError{Root: expanded, Err: services.Wrap(services.ErrNotFound, "preflight", "check root", "directory does not exist", nil)}
		}
		return "", &services.RootError{Root: expanded, Err: services.Wrap(services.ErrValidation, "preflight", "stat root", "", err)}
	}
	if !info.IsDir() {
		return "", &services.RootError{Root: expanded, Err: services.Wrap(services.ErrValidation, "preflight", "check root", "not a directory", nil)}
	}
	if requireMusic && !strings.Contains(strings.ToLower(expanded), "music") {
		return "", &services.RootError{Root: expanded, Err: services.Wrap(services.ErrValidation, "preflight", "check root",
			"path does not look like a music collection (set collection.require_music_in_path = false to allow it)", nil)}
	}
	return expanded, nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore pings the ledger with a 5-second timeout.
func CheckStore(ctx context.Context, store Pinger) Result {
	const name = "Ledger"
	if store == nil {
		return Result{Name: name, Detail: "not opened"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(checkCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: ping timed out)", store.Location())}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", store.Location(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", store.Location())}
}
