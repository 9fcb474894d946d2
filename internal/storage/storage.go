// Package storage persists the task list as encoded lines.
//
// A LineStore only moves lines; Repository couples it with the codec.
// Every save rewrites the whole list so the store always mirrors memory.
package storage

import (
	"context"
	"fmt"
)

// Backend names a LineStore implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// LineStore reads and writes the persisted form, one encoded task per line.
type LineStore interface {
	// ReadLines returns the stored lines in order. A store that has never
	// been written returns no lines and no error.
	ReadLines(ctx context.Context) ([]string, error)

	// WriteLines replaces the stored content with lines.
	WriteLines(ctx context.Context, lines []string) error

	Close() error
}

// Open opens the LineStore for backend at path.
func Open(backend Backend, path string) (LineStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use %q or %q)", backend, BackendFile, BackendSQLite)
	}
}
