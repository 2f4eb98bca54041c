// Package daemon runs the background spreadsheet sync.
//
// The daemon:
// 1. Imports remote spreadsheet state on a fixed interval
// 2. Watches the data file for writes made outside the server
// 3. Exports local state to the spreadsheet once external edits settle
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"
)

// Config holds configuration for the daemon.
type Config struct {
	// PullInterval is how often remote spreadsheet state is imported.
	PullInterval time.Duration

	// DebounceInterval is how long file events must settle before local
	// state is exported. This batches rapid editor saves together.
	DebounceInterval time.Duration

	// WatchPath is the data file to watch for external edits. Empty
	// disables the watcher; backends without a file have nothing to watch.
	WatchPath string

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PullInterval:     60 * time.Second,
		DebounceInterval: 2 * time.Second,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Status is a point-in-time snapshot of daemon health, served by the health
// endpoint.
type Status struct {
	Running     bool       `json:"running"`
	LastSyncAt  *time.Time `json:"last_sync,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
	SyncCount   int64      `json:"sync_count"`
	PushCount   int64      `json:"push_count"`
}

// Daemon owns the background sync loops.
type Daemon struct {
	tracker *tracker.Tracker
	config  *Config

	watcher *fsnotify.Watcher

	dirtyMu sync.Mutex
	dirty   bool
	dirtyAt time.Time

	statusMu    sync.Mutex
	running     bool
	lastSyncAt  time.Time
	lastError   string
	lastErrorAt time.Time
	syncCount   int64
	pushCount   int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Daemon around a tracker. Use Start to begin syncing.
func New(tr *tracker.Tracker, config *Config) (*Daemon, error) {
	if tr == nil {
		return nil, fmt.Errorf("tracker cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.PullInterval <= 0 {
		config.PullInterval = 60 * time.Second
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 2 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	return &Daemon{tracker: tr, config: config}, nil
}

// Start launches the sync loops and returns once they are running. The loops
// stop when ctx is cancelled or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.statusMu.Lock()
	if d.running {
		d.statusMu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.statusMu.Unlock()

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.config.Logger.Printf("Starting sync daemon (pull every %s)", d.config.PullInterval)

	if d.config.WatchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			d.abortStart()
			return fmt.Errorf("failed to create watcher: %w", err)
		}

		// Watch the directory, not the file: the file store replaces
		// the data file by rename, which breaks a watch on the file
		// itself.
		dir := filepath.Dir(d.config.WatchPath)
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			d.abortStart()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		d.watcher = watcher
		d.config.Logger.Printf("Watching %s", d.config.WatchPath)

		d.wg.Add(2)
		go d.watchFileEvents()
		go d.debounceLoop()
	}

	d.wg.Add(1)
	go d.pullLoop()

	return nil
}

// abortStart rolls back the running state after a failed Start.
func (d *Daemon) abortStart() {
	d.cancel()
	d.statusMu.Lock()
	d.running = false
	d.statusMu.Unlock()
}

// Stop shuts the daemon down and waits for the loops to exit. Safe to call
// more than once.
func (d *Daemon) Stop() error {
	d.statusMu.Lock()
	if !d.running {
		d.statusMu.Unlock()
		return nil
	}
	d.running = false
	d.statusMu.Unlock()

	d.config.Logger.Println("Stopping sync daemon")
	d.cancel()

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.config.Logger.Printf("Error closing watcher: %v", err)
		}
	}

	d.wg.Wait()
	return nil
}

// Status returns a snapshot of daemon health.
func (d *Daemon) Status() Status {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()

	s := Status{
		Running:   d.running,
		LastError: d.lastError,
		SyncCount: d.syncCount,
		PushCount: d.pushCount,
	}
	if !d.lastSyncAt.IsZero() {
		ts := d.lastSyncAt
		s.LastSyncAt = &ts
	}
	if !d.lastErrorAt.IsZero() {
		ts := d.lastErrorAt
		s.LastErrorAt = &ts
	}
	return s
}

// pullLoop imports remote state on every tick while a mirror is connected.
func (d *Daemon) pullLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.PullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.pullOnce()
		}
	}
}

// pullOnce runs one import. Errors are recorded and swallowed: the loop must
// survive transient network and quota failures.
func (d *Daemon) pullOnce() {
	if !d.tracker.Connected() {
		return
	}

	if _, err := d.tracker.ImportRemote(d.ctx); err != nil {
		d.config.Logger.Printf("Background sync error: %v", err)
		d.recordError(err)
		return
	}
	d.recordSync()
}

// watchFileEvents monitors filesystem events and marks the data file dirty.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			// The watch covers the whole directory; only the data
			// file matters.
			if filepath.Base(event.Name) != filepath.Base(d.config.WatchPath) {
				continue
			}

			d.dirtyMu.Lock()
			d.dirty = true
			d.dirtyAt = time.Now()
			d.dirtyMu.Unlock()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// debounceLoop exports local state once file events have settled.
func (d *Daemon) debounceLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.flushDirty()
		}
	}
}

// flushDirty pushes the data file to the spreadsheet if it changed and the
// change has settled for at least DebounceInterval.
func (d *Daemon) flushDirty() {
	d.dirtyMu.Lock()
	if !d.dirty || time.Since(d.dirtyAt) < d.config.DebounceInterval {
		d.dirtyMu.Unlock()
		return
	}
	d.dirty = false
	d.dirtyMu.Unlock()

	if !d.tracker.Connected() {
		return
	}

	d.config.Logger.Println("Data file changed, exporting to spreadsheet")
	if err := d.tracker.ExportLocal(d.ctx); err != nil {
		d.config.Logger.Printf("Export after file change failed: %v", err)
		d.recordError(err)
		return
	}
	d.recordPush()
}

func (d *Daemon) recordSync() {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.syncCount++
	d.lastSyncAt = time.Now()
}

func (d *Daemon) recordPush() {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.pushCount++
	d.lastSyncAt = time.Now()
}

func (d *Daemon) recordError(err error) {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	d.lastError = err.Error()
	d.lastErrorAt = time.Now()
}
