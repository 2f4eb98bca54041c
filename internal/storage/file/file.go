// Package file implements the JSON document file storage backend.
//
// The grid is persisted as a single pretty-printed JSON document, the same
// layout as the legacy tracker_data.json files, so existing data loads
// unchanged. Writes are atomic (temp file + rename) and every operation holds
// an advisory flock on a sidecar lock file so that a CLI invocation and a
// running server never interleave a read with a half-finished write.
package file

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
)

func init() {
	storage.Register(storage.TypeFile, New)
}

// Store is the JSON file backend.
type Store struct {
	path   string
	logger *log.Logger
	closed bool
}

// New creates a file store writing to opts.Path. The file is not touched until
// the first Load or Save.
func New(opts storage.Options) (storage.Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("file store path cannot be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	return &Store{path: opts.Path, logger: logger}, nil
}

// Load reads the data file. A missing file is not an error: the default grid
// is created, persisted, and returned.
func (s *Store) Load(ctx context.Context) (*grid.Grid, error) {
	if s.closed {
		return nil, storage.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var g *grid.Grid
	err := s.withLock(func() error {
		data, err := os.ReadFile(s.path)
		if os.IsNotExist(err) {
			g = grid.NewDefaultGrid()
			s.logger.Printf("no data file at %s, creating default grid (%d habits)", s.path, len(g.Habits))
			return s.write(g)
		}
		if err != nil {
			return fmt.Errorf("%w: failed to read data file %s: %v", storage.ErrUnavailable, s.path, err)
		}

		g, err = grid.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("%w: data file %s: %v", storage.ErrUnavailable, s.path, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Save atomically replaces the data file with g.
func (s *Store) Save(ctx context.Context, g *grid.Grid) error {
	if s.closed {
		return storage.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid grid: %w", err)
	}

	return s.withLock(func() error {
		return s.write(g)
	})
}

// write marshals and atomically replaces the data file. Callers must hold the
// lock.
func (s *Store) write(g *grid.Grid) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create data directory: %v", storage.ErrUnavailable, err)
		}
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", storage.ErrUnavailable, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace data file: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// withLock runs fn while holding an exclusive advisory lock on the sidecar
// lock file. The lock is advisory: it coordinates tracker processes, not
// arbitrary editors.
func (s *Store) withLock(fn func() error) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: failed to create data directory: %v", storage.ErrUnavailable, err)
		}
	}

	lock, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to open lock file: %v", storage.ErrUnavailable, err)
	}
	defer lock.Close()

	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("%w: failed to lock data file: %v", storage.ErrUnavailable, err)
	}
	defer func() {
		_ = unix.Flock(int(lock.Fd()), unix.LOCK_UN)
	}()

	return fn()
}

// Type identifies the backend.
func (s *Store) Type() storage.Type { return storage.TypeFile }

// Location returns the data file path.
func (s *Store) Location() string { return s.path }

// Close marks the store closed. The data file needs no teardown.
func (s *Store) Close() error {
	s.closed = true
	return nil
}
