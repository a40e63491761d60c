package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mmove/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "walk", "read dir", "Rock-1990", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"walk", "read dir", "Rock-1990"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "mmove failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	if code := services.ExitCode(nil); code != services.ExitOK {
		t.Fatalf("expected 0 for nil error, got %d", code)
	}
	rootErr := &services.RootError{Root: "/tmp/x", Err: services.Wrap(services.ErrNotFound, "preflight", "stat", "missing", nil)}
	if code := services.ExitCode(fmt.Errorf("run: %w", rootErr)); code != services.ExitInvalidRoot {
		t.Fatalf("expected invalid root status, got %d", code)
	}
	if !errors.Is(rootErr, services.ErrNotFound) {
		t.Fatal("expected root error to unwrap to marker")
	}
	storeErr := services.Wrap(services.ErrStore, "ledger", "open", "", errors.New("dial"))
	if code := services.ExitCode(storeErr); code != services.ExitFailure {
		t.Fatalf("expected failure status for store error, got %d", code)
	}
}
