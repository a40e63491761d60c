package preflight

import (
	"context"

	"mmove/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every readiness check for root. An empty root skips the
// collection checks.
func RunAll(ctx context.Context, cfg *config.Config, root string, store Pinger) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if root != "" {
		expanded, err := CheckCollectionRoot(root, cfg.Collection.RequireMusicInPath)
		if err != nil {
			results = append(results, Result{Name: "Collection root", Detail: err.Error()})
		} else {
			results = append(results, CheckDirectoryAccess("Collection root", expanded))
		}
	}

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckStore(ctx, store))

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
