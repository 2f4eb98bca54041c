// Package storage defines the persistence contract for the tracker grid and
// the registry through which the concrete backends are selected.
//
// # Overview
//
// The tracker treats its state as one document (see internal/grid). A Store
// persists that document as a whole: Load returns the full grid, Save replaces
// it. Three backends implement the contract:
//
//   - file   - a single JSON document, compatible with the legacy data files
//   - sqlite - a document-store collection (habit records + settings singleton)
//   - memory - process-local, for tests and throwaway runs
//
// Backends register a constructor in init() and are selected by type:
//
//	import (
//	    "github.com/nishantagraw/daily-routine-tracker/internal/storage"
//	    _ "github.com/nishantagraw/daily-routine-tracker/internal/storage/file"
//	)
//
//	store, err := storage.Open(storage.TypeFile, storage.Options{Path: "data/tracker_data.json"})
//
// # Contract
//
//   - Load on an empty backend synthesizes the default grid, persists it, and
//     returns it. A second Load returns the same document.
//   - Save is an atomic full overwrite. There are no partial updates.
//   - A backend that cannot be reached or parsed reports an error wrapping
//     ErrUnavailable.
package storage

import (
	"context"
	"errors"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

// Type identifies a storage backend implementation.
type Type string

const (
	// TypeFile stores the grid as a single JSON document file.
	TypeFile Type = "file"

	// TypeSQLite stores habits as records in an embedded SQLite database
	// with the date window in a singleton settings row.
	TypeSQLite Type = "sqlite"

	// TypeMemory keeps the grid in process memory only.
	TypeMemory Type = "memory"

	// DefaultType is used when no backend is configured.
	DefaultType = TypeFile
)

// Store is the persistence contract shared by all backends.
type Store interface {
	// Load returns the full grid document. On an empty backend it creates,
	// persists, and returns the default grid.
	Load(ctx context.Context) (*grid.Grid, error)

	// Save atomically replaces the stored document with g.
	Save(ctx context.Context, g *grid.Grid) error

	// Type identifies the backend implementation.
	Type() Type

	// Location is the backend's data path (file or database path). Backends
	// without one return "".
	Location() string

	// Close releases backend resources. The store must not be used afterwards.
	Close() error
}

// Common errors returned by storage backends.
//
// Check them with errors.Is():
//
//	if errors.Is(err, storage.ErrUnavailable) {
//	    // backend unreachable or corrupt; serve a 503
//	}
var (
	// ErrUnavailable is returned (wrapped) when the backend cannot be read
	// or written: unreachable database, unreadable or corrupt data file.
	ErrUnavailable = errors.New("storage backend unavailable")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("storage backend is closed")
)

// IsUnavailable reports whether err indicates an unreachable or corrupt
// backend.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
