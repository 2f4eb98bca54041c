// Package tracker implements the habit tracking service.
//
// Every grid read, mutation, stats query, and spreadsheet sync funnels
// through one Tracker, which serializes the load→mutate→save cycle behind a
// mutex. HTTP handlers, the CLI, and the background daemon are all thin
// callers; none of them touch a storage backend or the spreadsheet directly.
package tracker

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
)

// Sync directions accepted by Sync. An empty direction means DirectionBoth.
const (
	DirectionFromSheets = "from_sheets"
	DirectionToSheets   = "to_sheets"
	DirectionBoth       = "both"
)

// Events observes tracker activity. The websocket hub implements this to fan
// updates out to connected browsers. Implementations must not block.
type Events interface {
	// GridChanged fires after a grid mutation is saved. The grid is a
	// private copy; the receiver may keep it.
	GridChanged(g *grid.Grid, reason string)

	// SyncCompleted fires after an explicit or scheduled sync attempt.
	SyncCompleted(direction string, err error)
}

// Config holds construction parameters for a Tracker.
type Config struct {
	// Store persists the grid document. Required.
	Store storage.Store

	// Mirror is the connected spreadsheet, nil when none is configured or
	// the startup connect failed.
	Mirror sheets.Mirror

	// SpreadsheetID is the configured sheet ID, kept even when Mirror is
	// nil so health and URLs can report it.
	SpreadsheetID string

	// ConnectMirror builds a Mirror for a spreadsheet ID. Configure
	// refuses to run without it.
	ConnectMirror func(ctx context.Context, spreadsheetID string) (sheets.Mirror, error)

	// PersistSheetID records a newly configured spreadsheet ID in the
	// settings file. Optional.
	PersistSheetID func(spreadsheetID string) error

	// Events receives change notifications. Optional.
	Events Events

	Logger *log.Logger
}

// Tracker is the single-writer habit service.
type Tracker struct {
	store   storage.Store
	connect func(ctx context.Context, spreadsheetID string) (sheets.Mirror, error)
	persist func(spreadsheetID string) error
	events  Events
	logger  *log.Logger

	mu      sync.Mutex
	mirror  sheets.Mirror
	sheetID string
}

// New creates a Tracker.
func New(cfg Config) (*Tracker, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[tracker] ", log.LstdFlags)
	}

	sheetID := cfg.SpreadsheetID
	if sheetID == "" && cfg.Mirror != nil {
		sheetID = cfg.Mirror.SpreadsheetID()
	}

	return &Tracker{
		store:   cfg.Store,
		connect: cfg.ConnectMirror,
		persist: cfg.PersistSheetID,
		events:  cfg.Events,
		logger:  cfg.Logger,
		mirror:  cfg.Mirror,
		sheetID: sheetID,
	}, nil
}

// Connected reports whether a spreadsheet mirror is live.
func (t *Tracker) Connected() bool { return t.currentMirror() != nil }

// SpreadsheetID returns the configured sheet ID, or "" when none is set. The
// ID is reported even when the mirror connection failed, matching what the
// settings file says.
func (t *Tracker) SpreadsheetID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sheetID
}

// Snapshot returns the current grid for display, refreshing from the
// spreadsheet first when one is connected. A failed refresh downgrades to a
// local read so the UI keeps working while the sheet is unreachable.
func (t *Tracker) Snapshot(ctx context.Context) (*grid.Grid, error) {
	if t.Connected() {
		if _, err := t.ImportRemote(ctx); err != nil {
			t.logger.Printf("Warning: refresh from spreadsheet failed: %v", err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Load(ctx)
}

// InitData readies the grid for a fresh client: when a sheet is connected
// the latest remote state is pulled first. The returned flag reports whether
// remote data was actually loaded; an empty sheet falls back to local data.
func (t *Tracker) InitData(ctx context.Context) (bool, error) {
	if t.Connected() {
		merged, err := t.ImportRemote(ctx)
		if err != nil {
			return false, err
		}
		if merged {
			return true, nil
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.store.Load(ctx); err != nil {
		return false, err
	}
	return false, nil
}

// UpdateStatus records a habit's mark for one date. An empty status clears
// the mark. The returned flag reports whether the change also reached the
// spreadsheet.
func (t *Tracker) UpdateStatus(ctx context.Context, name, date string, status grid.Status) (bool, error) {
	if name == "" || date == "" {
		return false, &ValidationError{Field: "habit_name", Reason: "habit name and date are required"}
	}

	g, err := t.mutate(ctx, "update", func(g *grid.Grid) error {
		if !g.SetStatus(name, date, status) {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, name)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return t.pushBestEffort(ctx, g), nil
}

// AddHabit creates a habit named "<emoji> <name>". An empty emoji falls back
// to the default pin.
func (t *Tracker) AddHabit(ctx context.Context, name, emoji string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, &ValidationError{Field: "name", Reason: "habit name is required"}
	}

	g, err := t.mutate(ctx, "add", func(g *grid.Grid) error {
		g.Add(name, emoji)
		return nil
	})
	if err != nil {
		return false, err
	}
	return t.pushBestEffort(ctx, g), nil
}

// DeleteHabit removes a habit by display name.
func (t *Tracker) DeleteHabit(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, &ValidationError{Field: "habit_name", Reason: "habit name is required"}
	}

	g, err := t.mutate(ctx, "delete", func(g *grid.Grid) error {
		if !g.Remove(name) {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, name)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return t.pushBestEffort(ctx, g), nil
}

// EditHabit renames a habit. The display name becomes "<emoji> <newName>";
// the habit keeps its ID and accumulated statuses.
func (t *Tracker) EditHabit(ctx context.Context, oldName, newName, emoji string) (bool, error) {
	if oldName == "" || strings.TrimSpace(newName) == "" {
		return false, &ValidationError{Field: "new_name", Reason: "old and new habit names are required"}
	}

	g, err := t.mutate(ctx, "edit", func(g *grid.Grid) error {
		h := g.Find(oldName)
		if h == nil {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, oldName)
		}
		g.Rename(h, newName, emoji)
		return nil
	})
	if err != nil {
		return false, err
	}
	return t.pushBestEffort(ctx, g), nil
}

// Stats summarizes the whole grid.
func (t *Tracker) Stats(ctx context.Context) (grid.Summary, error) {
	t.mu.Lock()
	g, err := t.store.Load(ctx)
	t.mu.Unlock()
	if err != nil {
		return grid.Summary{}, err
	}
	return grid.Summarize(g), nil
}

// WeekHabit is one habit's slice of a weekly report. DailyStatus carries an
// entry for every date in the week, unset included, so clients can render
// the full row. Stats are computed over the week's dates only.
type WeekHabit struct {
	Name        string                 `json:"name"`
	DailyStatus map[string]grid.Status `json:"daily_status"`
	grid.HabitStats
}

// WeekReport is the per-week view of the grid. Weeks are 1-indexed, seven
// dates per week; a week past the end of the grid is empty, not an error.
type WeekReport struct {
	Week   int         `json:"week"`
	Dates  []string    `json:"dates"`
	Habits []WeekHabit `json:"habits"`
}

// Week builds the report for one week.
func (t *Tracker) Week(ctx context.Context, week int) (*WeekReport, error) {
	if week < 1 {
		return nil, &ValidationError{Field: "week", Reason: "week must be 1 or higher"}
	}

	t.mu.Lock()
	g, err := t.store.Load(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	dates := g.WeekDates(week)
	report := &WeekReport{
		Week:   week,
		Dates:  dates,
		Habits: make([]WeekHabit, 0, len(g.Habits)),
	}
	for _, h := range g.Habits {
		statuses := make(map[string]grid.Status, len(dates))
		for _, d := range dates {
			statuses[d] = h.Status(d)
		}
		report.Habits = append(report.Habits, WeekHabit{
			Name:        h.Name,
			DailyStatus: statuses,
			HabitStats:  grid.Compute(h, dates),
		})
	}
	return report, nil
}

// Sync runs an explicit sync in the given direction. Unlike the best-effort
// pushes after mutations, failures here are returned to the caller.
func (t *Tracker) Sync(ctx context.Context, direction string) error {
	switch direction {
	case "":
		direction = DirectionBoth
	case DirectionFromSheets, DirectionToSheets, DirectionBoth:
	default:
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("invalid sync direction %q", direction)}
	}
	if !t.Connected() {
		return ErrNotConnected
	}

	err := t.syncDirection(ctx, direction)
	t.notifySync(direction, err)
	return err
}

func (t *Tracker) syncDirection(ctx context.Context, direction string) error {
	if direction == DirectionFromSheets || direction == DirectionBoth {
		if _, err := t.ImportRemote(ctx); err != nil {
			return err
		}
	}
	if direction == DirectionToSheets || direction == DirectionBoth {
		if err := t.ExportLocal(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ImportRemote pulls the spreadsheet and merges it over the local grid. The
// network fetch happens outside the lock; only merge and save hold it. The
// returned flag reports whether the sheet carried data to merge.
func (t *Tracker) ImportRemote(ctx context.Context) (bool, error) {
	m := t.currentMirror()
	if m == nil {
		return false, ErrNotConnected
	}

	remote, err := m.Pull(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMirror, err)
	}
	if remote == nil {
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	local, err := t.store.Load(ctx)
	if err != nil {
		return false, err
	}
	merged := sheets.Merge(local, remote)
	if err := t.store.Save(ctx, merged); err != nil {
		return false, err
	}
	t.notifyChanged(merged, "import")
	return true, nil
}

// ExportLocal pushes the full local grid to the spreadsheet.
func (t *Tracker) ExportLocal(ctx context.Context) error {
	m := t.currentMirror()
	if m == nil {
		return ErrNotConnected
	}

	t.mu.Lock()
	g, err := t.store.Load(ctx)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	if err := m.Push(ctx, g); err != nil {
		return fmt.Errorf("%w: %v", ErrMirror, err)
	}
	return nil
}

// Configure connects a new spreadsheet, persists its ID, and seeds the sheet
// with the current grid. A failed connect leaves the previous mirror and
// settings untouched.
func (t *Tracker) Configure(ctx context.Context, spreadsheetID string) error {
	if spreadsheetID == "" {
		return &ValidationError{Field: "spreadsheet_id", Reason: "spreadsheet_id is required"}
	}
	if t.connect == nil {
		return fmt.Errorf("mirror connection is not configured")
	}

	m, err := t.connect(ctx, spreadsheetID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMirror, err)
	}

	if t.persist != nil {
		if err := t.persist(spreadsheetID); err != nil {
			return fmt.Errorf("failed to persist spreadsheet ID: %w", err)
		}
	}

	t.mu.Lock()
	t.mirror = m
	t.sheetID = spreadsheetID
	t.mu.Unlock()

	t.logger.Printf("Connected spreadsheet %s", spreadsheetID)
	return t.ExportLocal(ctx)
}

// mutate runs fn against the freshly loaded grid and saves the result,
// holding the write lock throughout. The saved grid is returned so callers
// can push it to the mirror without reloading.
func (t *Tracker) mutate(ctx context.Context, reason string, fn func(*grid.Grid) error) (*grid.Grid, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(g); err != nil {
		return nil, err
	}
	if err := t.store.Save(ctx, g); err != nil {
		return nil, err
	}
	t.notifyChanged(g, reason)
	return g, nil
}

// pushBestEffort mirrors g to the spreadsheet when one is connected.
// Failures are logged, not returned: a dead sheet must never block a local
// update. The next scheduled sync heals the divergence.
func (t *Tracker) pushBestEffort(ctx context.Context, g *grid.Grid) bool {
	m := t.currentMirror()
	if m == nil {
		return false
	}
	if err := m.Push(ctx, g); err != nil {
		t.logger.Printf("Warning: push to spreadsheet failed: %v", err)
		return false
	}
	return true
}

func (t *Tracker) currentMirror() sheets.Mirror {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mirror
}

func (t *Tracker) notifyChanged(g *grid.Grid, reason string) {
	if t.events == nil {
		return
	}
	t.events.GridChanged(g.Clone(), reason)
}

func (t *Tracker) notifySync(direction string, err error) {
	if t.events == nil {
		return
	}
	t.events.SyncCompleted(direction, err)
}
