// Package sqlite implements the document-store storage backend on embedded
// SQLite (ncruces/go-sqlite3, wasm build, no cgo).
//
// The grid maps onto two tables: a habits collection with one record per
// habit (statuses as a JSON object, ordered by position) and a singleton
// settings row holding the ordered date labels. Save rewrites the collection
// in one transaction so the document semantics match the other backends:
// full overwrite, no partial updates.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
)

func init() {
	// Cap the embedded wasm runtime before any connection opens. The whole
	// database is a few kilobytes of habit records; the default 4GiB ceiling
	// is pointless address space.
	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithMemoryLimitPages(1024) // 64 MiB

	storage.Register(storage.TypeSQLite, New)
}

// Store is the embedded SQLite backend.
type Store struct {
	conn   *sql.DB
	path   string
	logger *log.Logger
}

// New opens (and if needed creates) the database at opts.Path and ensures the
// schema exists.
func New(opts storage.Options) (storage.Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite store path cannot be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", opts.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", storage.ErrUnavailable, err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", storage.ErrUnavailable, err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: opts.Path, logger: logger}

	// WAL for concurrent readers during writes
	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %v", storage.ErrUnavailable, err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: failed to set busy timeout: %v", storage.ErrUnavailable, err)
	}
	if _, err := s.conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: failed to enable foreign keys: %v", storage.ErrUnavailable, err)
	}

	if err := s.initSchema(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the tables if they don't exist. Idempotent.
func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		dates TEXT NOT NULL  -- JSON array of date labels in grid order
	);

	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		emoji TEXT,
		category TEXT,
		statuses TEXT NOT NULL  -- JSON object: date label -> mark
	);

	CREATE INDEX IF NOT EXISTS idx_habits_name ON habits(name);
	CREATE INDEX IF NOT EXISTS idx_habits_position ON habits(position);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to initialize schema: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Load assembles the grid from the settings singleton and the habits
// collection. An empty database seeds and persists the default grid.
func (s *Store) Load(ctx context.Context) (*grid.Grid, error) {
	if s.conn == nil {
		return nil, storage.ErrClosed
	}

	var datesJSON string
	err := s.conn.QueryRowContext(ctx, `SELECT dates FROM settings WHERE id = 1`).Scan(&datesJSON)
	if err == sql.ErrNoRows {
		g := grid.NewDefaultGrid()
		s.logger.Printf("empty database at %s, seeding default grid (%d habits)", s.path, len(g.Habits))
		if err := s.Save(ctx, g); err != nil {
			return nil, err
		}
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read settings: %v", storage.ErrUnavailable, err)
	}

	g := &grid.Grid{}
	if err := json.Unmarshal([]byte(datesJSON), &g.Dates); err != nil {
		return nil, fmt.Errorf("%w: corrupt settings record: %v", storage.ErrUnavailable, err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, emoji, category, statuses FROM habits ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query habits: %v", storage.ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		g.Habits = append(g.Habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate habits: %v", storage.ErrUnavailable, err)
	}

	g.SetDefaults()
	return g, nil
}

// scanHabit reads one habit record.
func scanHabit(rows *sql.Rows) (*grid.Habit, error) {
	var h grid.Habit
	var emoji, category sql.NullString
	var statusesJSON string

	if err := rows.Scan(&h.ID, &h.Name, &emoji, &category, &statusesJSON); err != nil {
		return nil, fmt.Errorf("%w: failed to scan habit: %v", storage.ErrUnavailable, err)
	}
	h.Emoji = emoji.String
	h.Category = category.String

	if err := json.Unmarshal([]byte(statusesJSON), &h.DailyStatus); err != nil {
		return nil, fmt.Errorf("%w: corrupt statuses for habit %s: %v", storage.ErrUnavailable, h.Name, err)
	}
	return &h, nil
}

// Save replaces the stored document in one transaction: the settings singleton
// is upserted and the habits collection rewritten in grid order.
func (s *Store) Save(ctx context.Context, g *grid.Grid) error {
	if s.conn == nil {
		return storage.ErrClosed
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid grid: %w", err)
	}

	datesJSON, err := json.Marshal(g.Dates)
	if err != nil {
		return fmt.Errorf("failed to marshal dates: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", storage.ErrUnavailable, err)
	}
	defer tx.Rollback()

	upsert := `
	INSERT INTO settings (id, dates) VALUES (1, ?)
	ON CONFLICT(id) DO UPDATE SET
		dates = excluded.dates
	`
	if _, err := tx.ExecContext(ctx, upsert, string(datesJSON)); err != nil {
		return fmt.Errorf("%w: failed to upsert settings: %v", storage.ErrUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM habits`); err != nil {
		return fmt.Errorf("%w: failed to clear habits: %v", storage.ErrUnavailable, err)
	}

	insert := `
	INSERT INTO habits (id, position, name, emoji, category, statuses)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	for i, h := range g.Habits {
		statusesJSON, err := json.Marshal(h.DailyStatus)
		if err != nil {
			return fmt.Errorf("failed to marshal statuses for %s: %w", h.Name, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			h.ID, i, h.Name, h.Emoji, h.Category, string(statusesJSON)); err != nil {
			return fmt.Errorf("%w: failed to insert habit %s: %v", storage.ErrUnavailable, h.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// Type identifies the backend.
func (s *Store) Type() storage.Type { return storage.TypeSQLite }

// Location returns the database file path.
func (s *Store) Location() string { return s.path }

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Printf("WARNING: failed to checkpoint WAL: %v", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}
