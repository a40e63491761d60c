package testsupport

import (
	"context"
	"testing"

	"mmove/internal/config"
	"mmove/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustInsert records item and fails the test if it was not newly inserted.
func MustInsert(t testing.TB, store *ledger.Store, item *ledger.Item) *ledger.Item {
	t.Helper()

	inserted, err := store.Insert(context.Background(), item)
	if err != nil {
		t.Fatalf("store.Insert(%s): %v", item.Path, err)
	}
	if !inserted {
		t.Fatalf("store.Insert(%s): already recorded", item.Path)
	}
	return item
}

// MustFind fetches the item recorded for path under root.
func MustFind(t testing.TB, store *ledger.Store, root, path string) *ledger.Item {
	t.Helper()

	item, err := store.FindByPath(context.Background(), root, path)
	if err != nil {
		t.Fatalf("store.FindByPath(%s): %v", path, err)
	}
	if item == nil {
		t.Fatalf("no ledger item for %s", path)
	}
	return item
}
