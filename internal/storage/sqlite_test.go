package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenSQLite(t *testing.T) {
	s, path := openTestSQLite(t)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", path)
	}

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	version, err := GetUserVersion(s.db)
	if err != nil {
		t.Fatal(err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestSQLiteStore_EmptyRead(t *testing.T) {
	s, _ := openTestSQLite(t)

	lines, err := s.ReadLines(context.Background())
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("ReadLines() = %v, want empty", lines)
	}
}

func TestSQLiteStore_WriteReplacesAndKeepsOrder(t *testing.T) {
	s, _ := openTestSQLite(t)
	ctx := context.Background()

	if err := s.WriteLines(ctx, []string{"[T][ ] a", "[T][ ] b", "[T][ ] c"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"[T][ ] c", "[T][X] a"}
	if err := s.WriteLines(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadLines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("ReadLines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteLines(ctx, []string{"[T][ ] persisted"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	lines, err := s.ReadLines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "[T][ ] persisted" {
		t.Errorf("ReadLines() after reopen = %v", lines)
	}
}
