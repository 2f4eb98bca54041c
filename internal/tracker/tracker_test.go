package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage/memory"
)

// stubMirror is an in-memory Mirror for exercising sync paths.
type stubMirror struct {
	mu      sync.Mutex
	remote  *grid.Grid
	pushed  []*grid.Grid
	pullErr error
	pushErr error
	id      string
}

func (m *stubMirror) Pull(ctx context.Context) (*grid.Grid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pullErr != nil {
		return nil, m.pullErr
	}
	if m.remote == nil {
		return nil, nil
	}
	return m.remote.Clone(), nil
}

func (m *stubMirror) Push(ctx context.Context, g *grid.Grid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushed = append(m.pushed, g.Clone())
	return nil
}

func (m *stubMirror) SpreadsheetID() string { return m.id }

func (m *stubMirror) pushCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pushed)
}

// recorderEvents captures notifications for assertions.
type recorderEvents struct {
	mu      sync.Mutex
	reasons []string
	syncs   []string
}

func (r *recorderEvents) GridChanged(g *grid.Grid, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recorderEvents) SyncCompleted(direction string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, direction)
}

func setupTracker(t *testing.T, cfg Config) *Tracker {
	t.Helper()

	if cfg.Store == nil {
		store, err := memory.New(storage.Options{})
		if err != nil {
			t.Fatalf("memory.New() error = %v", err)
		}
		cfg.Store = store
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("New() without store should fail")
	}
}

func TestUpdateStatus(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	synced, err := tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if synced {
		t.Error("synced = true without a mirror")
	}

	g, err := tr.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := g.Find("🏃 Running").Status("05 Jan"); got != grid.StatusDone {
		t.Errorf("status = %q, want %q", got, grid.StatusDone)
	}
}

func TestUpdateStatus_ClearsMark(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	if _, err := tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if _, err := tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusUnset); err != nil {
		t.Fatalf("UpdateStatus() clear error = %v", err)
	}

	g, _ := tr.Snapshot(ctx)
	if got := g.Find("🏃 Running").Status("05 Jan"); got != grid.StatusUnset {
		t.Errorf("status = %q, want cleared", got)
	}
}

func TestUpdateStatus_UnknownHabit(t *testing.T) {
	tr := setupTracker(t, Config{})

	_, err := tr.UpdateStatus(context.Background(), "🦄 Unicorn", "05 Jan", grid.StatusDone)
	if !IsNotFound(err) {
		t.Errorf("error = %v, want ErrHabitNotFound", err)
	}
}

func TestUpdateStatus_Validation(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	if _, err := tr.UpdateStatus(ctx, "", "05 Jan", grid.StatusDone); !IsValidation(err) {
		t.Errorf("empty name error = %v, want ValidationError", err)
	}
	if _, err := tr.UpdateStatus(ctx, "🏃 Running", "", grid.StatusDone); !IsValidation(err) {
		t.Errorf("empty date error = %v, want ValidationError", err)
	}
}

func TestUpdateStatus_PushesToMirror(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1"}
	tr := setupTracker(t, Config{Mirror: mirror})

	synced, err := tr.UpdateStatus(context.Background(), "🏃 Running", "05 Jan", grid.StatusDone)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if !synced {
		t.Error("synced = false with a working mirror")
	}
	if mirror.pushCount() != 1 {
		t.Errorf("pushes = %d, want 1", mirror.pushCount())
	}
}

func TestUpdateStatus_PushFailureKeepsLocalWrite(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1", pushErr: errors.New("quota exceeded")}
	tr := setupTracker(t, Config{Mirror: mirror})
	ctx := context.Background()

	synced, err := tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v, push failures must not fail the update", err)
	}
	if synced {
		t.Error("synced = true despite push failure")
	}

	// The local write survived.
	mirror.pullErr = errors.New("still down")
	g, err := tr.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got := g.Find("🏃 Running").Status("05 Jan"); got != grid.StatusDone {
		t.Errorf("status = %q, want %q", got, grid.StatusDone)
	}
}

func TestAddHabit(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	if _, err := tr.AddHabit(ctx, "Yoga", "🧘"); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	g, _ := tr.Snapshot(ctx)
	h := g.Find("🧘 Yoga")
	if h == nil {
		t.Fatal("added habit not found")
	}
	if h.Category != "custom" {
		t.Errorf("category = %q, want custom", h.Category)
	}

	if _, err := tr.AddHabit(ctx, "", "🧘"); !IsValidation(err) {
		t.Errorf("empty name error = %v, want ValidationError", err)
	}
}

func TestDeleteHabit(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	if _, err := tr.DeleteHabit(ctx, "🏃 Running"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}

	g, _ := tr.Snapshot(ctx)
	if g.Find("🏃 Running") != nil {
		t.Error("deleted habit still present")
	}
	if len(g.Habits) != 9 {
		t.Errorf("habits = %d, want 9", len(g.Habits))
	}

	if _, err := tr.DeleteHabit(ctx, "🏃 Running"); !IsNotFound(err) {
		t.Errorf("second delete error = %v, want ErrHabitNotFound", err)
	}
}

func TestEditHabit(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	before, _ := tr.Snapshot(ctx)
	id := before.Find("🏃 Running").ID
	if _, err := tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	if _, err := tr.EditHabit(ctx, "🏃 Running", "Sprinting", "🏃"); err != nil {
		t.Fatalf("EditHabit() error = %v", err)
	}

	g, _ := tr.Snapshot(ctx)
	h := g.Find("🏃 Sprinting")
	if h == nil {
		t.Fatal("renamed habit not found")
	}
	if h.ID != id {
		t.Errorf("ID = %q, want %q preserved across rename", h.ID, id)
	}
	if h.Status("05 Jan") != grid.StatusDone {
		t.Error("statuses lost across rename")
	}

	if _, err := tr.EditHabit(ctx, "🦄 Unicorn", "Pony", ""); !IsNotFound(err) {
		t.Errorf("unknown habit error = %v, want ErrHabitNotFound", err)
	}
}

func TestStats(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone)
	tr.UpdateStatus(ctx, "🏃 Running", "06 Jan", grid.StatusDone)
	tr.UpdateStatus(ctx, "💧 Water (8 glasses)", "05 Jan", grid.StatusMissed)

	sum, err := tr.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if sum.TotalHabits != 10 {
		t.Errorf("TotalHabits = %d, want 10", sum.TotalHabits)
	}
	if sum.TotalCompleted != 2 || sum.TotalMissed != 1 {
		t.Errorf("completed/missed = %d/%d, want 2/1", sum.TotalCompleted, sum.TotalMissed)
	}
	if sum.BestStreak != 2 {
		t.Errorf("BestStreak = %d, want 2", sum.BestStreak)
	}
}

func TestWeek(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	// 11 Jan is in week 1 (05..11 Jan); 12 Jan is in week 2.
	tr.UpdateStatus(ctx, "🏃 Running", "11 Jan", grid.StatusDone)
	tr.UpdateStatus(ctx, "🏃 Running", "12 Jan", grid.StatusDone)

	report, err := tr.Week(ctx, 1)
	if err != nil {
		t.Fatalf("Week() error = %v", err)
	}
	if report.Week != 1 {
		t.Errorf("Week = %d, want 1", report.Week)
	}
	if len(report.Dates) != 7 {
		t.Fatalf("dates = %v, want 7 labels", report.Dates)
	}
	if report.Dates[0] != "05 Jan" || report.Dates[6] != "11 Jan" {
		t.Errorf("dates = %v, want 05..11 Jan", report.Dates)
	}

	var running *WeekHabit
	for i := range report.Habits {
		if report.Habits[i].Name == "🏃 Running" {
			running = &report.Habits[i]
		}
	}
	if running == nil {
		t.Fatal("running habit missing from report")
	}
	if running.Completed != 1 {
		t.Errorf("Completed = %d, want 1 (week 2 mark excluded)", running.Completed)
	}
	if running.Streak != 1 {
		t.Errorf("Streak = %d, want 1 within the week window", running.Streak)
	}
	if len(running.DailyStatus) != 7 {
		t.Errorf("DailyStatus has %d entries, want one per week date", len(running.DailyStatus))
	}
	if running.DailyStatus["05 Jan"] != grid.StatusUnset {
		t.Errorf("unset date = %q, want empty entry", running.DailyStatus["05 Jan"])
	}
}

func TestWeek_Validation(t *testing.T) {
	tr := setupTracker(t, Config{})

	if _, err := tr.Week(context.Background(), 0); !IsValidation(err) {
		t.Errorf("Week(0) error = %v, want ValidationError", err)
	}

	// Past the end of the grid: empty, not an error.
	report, err := tr.Week(context.Background(), 9)
	if err != nil {
		t.Fatalf("Week(9) error = %v", err)
	}
	if len(report.Dates) != 0 {
		t.Errorf("Week(9) dates = %v, want empty", report.Dates)
	}
}

func TestSync_FromSheets(t *testing.T) {
	remote := grid.NewDefaultGrid()
	remote.SetStatus("🏃 Running", "05 Jan", grid.StatusDone)
	mirror := &stubMirror{id: "sheet-1", remote: remote}
	tr := setupTracker(t, Config{Mirror: mirror})
	ctx := context.Background()

	g, _ := tr.Snapshot(ctx)
	localID := g.Find("🏃 Running").ID

	if err := tr.Sync(ctx, DirectionFromSheets); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	g, _ = tr.Snapshot(ctx)
	h := g.Find("🏃 Running")
	if h.Status("05 Jan") != grid.StatusDone {
		t.Error("remote status not merged")
	}
	if h.ID != localID {
		t.Errorf("ID = %q, want local %q preserved through import", h.ID, localID)
	}
}

func TestSync_ToSheets(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1"}
	tr := setupTracker(t, Config{Mirror: mirror})
	ctx := context.Background()

	if err := tr.Sync(ctx, DirectionToSheets); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if mirror.pushCount() != 1 {
		t.Errorf("pushes = %d, want 1", mirror.pushCount())
	}
}

func TestSync_Both(t *testing.T) {
	remote := grid.NewDefaultGrid()
	remote.SetStatus("🏃 Running", "05 Jan", grid.StatusMissed)
	mirror := &stubMirror{id: "sheet-1", remote: remote}
	events := &recorderEvents{}
	tr := setupTracker(t, Config{Mirror: mirror, Events: events})
	ctx := context.Background()

	if err := tr.Sync(ctx, ""); err != nil {
		t.Fatalf("Sync() with default direction error = %v", err)
	}

	if mirror.pushCount() != 1 {
		t.Errorf("pushes = %d, want 1", mirror.pushCount())
	}
	// The push carries the merged grid.
	last := mirror.pushed[len(mirror.pushed)-1]
	if last.Find("🏃 Running").Status("05 Jan") != grid.StatusMissed {
		t.Error("pushed grid missing the merged remote status")
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	if len(events.syncs) != 1 || events.syncs[0] != DirectionBoth {
		t.Errorf("sync events = %v, want [both]", events.syncs)
	}
}

func TestSync_InvalidDirection(t *testing.T) {
	tr := setupTracker(t, Config{Mirror: &stubMirror{id: "sheet-1"}})

	err := tr.Sync(context.Background(), "sideways")
	if !IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestSync_NotConnected(t *testing.T) {
	tr := setupTracker(t, Config{})

	if err := tr.Sync(context.Background(), DirectionBoth); !IsNotConnected(err) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestSync_PullFailure(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1", pullErr: errors.New("network down")}
	tr := setupTracker(t, Config{Mirror: mirror})

	err := tr.Sync(context.Background(), DirectionFromSheets)
	if !IsMirror(err) {
		t.Errorf("error = %v, want ErrMirror", err)
	}
}

func TestImportRemote_EmptySheet(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1"}
	tr := setupTracker(t, Config{Mirror: mirror})

	merged, err := tr.ImportRemote(context.Background())
	if err != nil {
		t.Fatalf("ImportRemote() error = %v", err)
	}
	if merged {
		t.Error("merged = true for an empty sheet")
	}
}

func TestSnapshot_PullFailureFallsBackToLocal(t *testing.T) {
	mirror := &stubMirror{id: "sheet-1", pullErr: errors.New("network down")}
	tr := setupTracker(t, Config{Mirror: mirror})

	g, err := tr.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v, pull failures must downgrade to local reads", err)
	}
	if len(g.Habits) != 10 {
		t.Errorf("habits = %d, want the local default grid", len(g.Habits))
	}
}

func TestInitData(t *testing.T) {
	remote := grid.NewDefaultGrid()
	remote.SetStatus("🏃 Running", "05 Jan", grid.StatusDone)

	tests := []struct {
		name       string
		mirror     *stubMirror
		wantRemote bool
	}{
		{name: "not connected", mirror: nil, wantRemote: false},
		{name: "connected with data", mirror: &stubMirror{id: "s", remote: remote}, wantRemote: true},
		{name: "connected empty sheet", mirror: &stubMirror{id: "s"}, wantRemote: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			if tt.mirror != nil {
				cfg.Mirror = tt.mirror
			}
			tr := setupTracker(t, cfg)

			fromRemote, err := tr.InitData(context.Background())
			if err != nil {
				t.Fatalf("InitData() error = %v", err)
			}
			if fromRemote != tt.wantRemote {
				t.Errorf("fromRemote = %v, want %v", fromRemote, tt.wantRemote)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	mirror := &stubMirror{id: "sheet-new"}
	var persisted string
	tr := setupTracker(t, Config{
		ConnectMirror: func(ctx context.Context, id string) (sheets.Mirror, error) {
			return mirror, nil
		},
		PersistSheetID: func(id string) error {
			persisted = id
			return nil
		},
	})

	if tr.Connected() {
		t.Fatal("tracker should start unconnected")
	}

	if err := tr.Configure(context.Background(), "sheet-new"); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if !tr.Connected() {
		t.Error("Connected() = false after Configure")
	}
	if tr.SpreadsheetID() != "sheet-new" {
		t.Errorf("SpreadsheetID() = %q, want sheet-new", tr.SpreadsheetID())
	}
	if persisted != "sheet-new" {
		t.Errorf("persisted ID = %q, want sheet-new", persisted)
	}
	if mirror.pushCount() != 1 {
		t.Errorf("pushes = %d, want the seeding export", mirror.pushCount())
	}
}

func TestConfigure_ConnectFailure(t *testing.T) {
	persistCalled := false
	tr := setupTracker(t, Config{
		ConnectMirror: func(ctx context.Context, id string) (sheets.Mirror, error) {
			return nil, errors.New("permission denied")
		},
		PersistSheetID: func(id string) error {
			persistCalled = true
			return nil
		},
	})

	err := tr.Configure(context.Background(), "sheet-bad")
	if !IsMirror(err) {
		t.Errorf("error = %v, want ErrMirror", err)
	}
	if tr.Connected() {
		t.Error("failed connect must not leave a mirror behind")
	}
	if persistCalled {
		t.Error("failed connect must not persist the ID")
	}
	if tr.SpreadsheetID() != "" {
		t.Errorf("SpreadsheetID() = %q, want empty", tr.SpreadsheetID())
	}
}

func TestConfigure_Validation(t *testing.T) {
	tr := setupTracker(t, Config{})

	if err := tr.Configure(context.Background(), ""); !IsValidation(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestEvents_GridChanged(t *testing.T) {
	events := &recorderEvents{}
	tr := setupTracker(t, Config{Events: events})
	ctx := context.Background()

	tr.UpdateStatus(ctx, "🏃 Running", "05 Jan", grid.StatusDone)
	tr.AddHabit(ctx, "Yoga", "🧘")
	tr.DeleteHabit(ctx, "🧘 Yoga")
	tr.EditHabit(ctx, "🏃 Running", "Sprinting", "🏃")

	events.mu.Lock()
	defer events.mu.Unlock()
	want := []string{"update", "add", "delete", "edit"}
	if len(events.reasons) != len(want) {
		t.Fatalf("reasons = %v, want %v", events.reasons, want)
	}
	for i, r := range want {
		if events.reasons[i] != r {
			t.Errorf("reasons[%d] = %q, want %q", i, events.reasons[i], r)
		}
	}
}

func TestConcurrentUpdates(t *testing.T) {
	tr := setupTracker(t, Config{})
	ctx := context.Background()

	dates := grid.JanuaryDates()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			date := dates[n%len(dates)]
			if _, err := tr.UpdateStatus(ctx, "🏃 Running", date, grid.StatusDone); err != nil {
				t.Errorf("UpdateStatus(%s) error = %v", date, err)
			}
		}(i)
	}
	wg.Wait()

	g, err := tr.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	h := g.Find("🏃 Running")
	for i := 0; i < 10; i++ {
		if h.Status(dates[i]) != grid.StatusDone {
			t.Errorf("date %s lost its concurrent update", dates[i])
		}
	}
}

func TestSpreadsheetID_WithoutMirror(t *testing.T) {
	// The configured ID is reported even when the connect failed at startup.
	tr := setupTracker(t, Config{SpreadsheetID: "sheet-configured"})

	if tr.Connected() {
		t.Error("Connected() = true without a mirror")
	}
	if tr.SpreadsheetID() != "sheet-configured" {
		t.Errorf("SpreadsheetID() = %q, want sheet-configured", tr.SpreadsheetID())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "direction", Reason: fmt.Sprintf("invalid sync direction %q", "sideways")}
	if err.Error() != `invalid sync direction "sideways"` {
		t.Errorf("Error() = %q", err.Error())
	}
}
