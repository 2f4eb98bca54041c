// Package memory implements the in-memory storage backend, used by tests and
// throwaway runs where nothing should touch disk.
package memory

import (
	"context"
	"sync"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
)

func init() {
	storage.Register(storage.TypeMemory, New)
}

// Store keeps the grid in process memory. Load and Save exchange deep copies
// so callers can never alias the stored document.
type Store struct {
	mu     sync.Mutex
	grid   *grid.Grid
	closed bool
}

// New creates an empty memory store. Options are ignored.
func New(storage.Options) (storage.Store, error) {
	return &Store{}, nil
}

// Load returns a copy of the stored grid, synthesizing the default grid on
// first use.
func (s *Store) Load(ctx context.Context) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	if s.grid == nil {
		s.grid = grid.NewDefaultGrid()
	}
	return s.grid.Clone(), nil
}

// Save replaces the stored grid with a copy of g.
func (s *Store) Save(ctx context.Context, g *grid.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.grid = g.Clone()
	return nil
}

// Type identifies the backend.
func (s *Store) Type() storage.Type { return storage.TypeMemory }

// Location returns "": there is no data path.
func (s *Store) Location() string { return "" }

// Close drops the stored grid.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = nil
	s.closed = true
	return nil
}
