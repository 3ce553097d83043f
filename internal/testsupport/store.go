package testsupport

import (
	"context"
	"testing"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem records a pending conversion for tests using the provided store.
func NewItem(t testing.TB, store *queue.Store, sheetPath string) *queue.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), sheetPath, "test-session")
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
