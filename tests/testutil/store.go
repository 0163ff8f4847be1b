// Package testutil holds shared helpers for tests that need a ticket
// database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nhle/ticketwatch/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return open(t, ":memory:")
}

// NewFileStore creates a SQLiteStore backed by a file in a temporary
// directory, for tests that need more than one pooled connection.
func NewFileStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "desk.db"))
}

// NewSeededStore returns an in-memory store loaded with the sample
// tickets, employees and categories.
func NewSeededStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s := NewTestStore(t)
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("seeding test store: %v", err)
	}
	return s
}

func open(t *testing.T, path string) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
