// Package testutil holds helpers shared by package tests: SQLite stores, a
// manual clock and deterministic id generators.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore opens an in-memory store with every migration applied. It is
// closed when the test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return open(t, ":memory:")
}

// BoardPath returns a database path inside the test's temp dir, for tests
// that close and reopen the same board.
func BoardPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "taskboard.db")
}

// OpenStore opens the file-backed store at path. It is closed when the test
// ends; closing it earlier is allowed.
func OpenStore(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()
	return open(t, path)
}

func open(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("opening store %s: %v", path, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
