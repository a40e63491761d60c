package services_test

import (
	"context"
	"testing"

	"mmove/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPhase(ctx, "resolve")
	ctx = services.WithCollection(ctx, "/srv/music")
	ctx = services.WithItemID(ctx, 42)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "resolve" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if root, ok := services.CollectionFromContext(ctx); !ok || root != "/srv/music" {
		t.Fatalf("unexpected collection: %v %v", root, ok)
	}
	if id, ok := services.ItemIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPhase(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
