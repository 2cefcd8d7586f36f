package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/genxdata/internal/dataset"
)

// createTestStore opens a fresh database file for one test.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestFrame builds a small mixed-kind frame.
func createTestFrame(t *testing.T, start int64) *dataset.Frame {
	t.Helper()
	f, err := dataset.FromColumns(
		[]string{"id", "score", "active", "name", "note"},
		[][]any{
			{start, start + 1},
			{1.5, 2.25},
			{true, false},
			{"ann", "bob"},
			{nil, "x"},
		})
	if err != nil {
		t.Fatalf("FromColumns() failed: %v", err)
	}
	return f
}
