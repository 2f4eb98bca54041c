package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
)

func setupStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := New(storage.Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_SynthesizesDefaultGrid(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	g, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(g.Habits) != 10 {
		t.Errorf("Load() habits = %d, want 10", len(g.Habits))
	}
	if len(g.Dates) == 0 {
		t.Error("Load() returned no dates")
	}
}

func TestLoad_ReturnsCopy(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Mutating the returned grid must not leak into the store.
	first.Habits[0].Name = "tampered"
	first.Habits[0].DailyStatus[first.Dates[0]] = grid.StatusDone

	second, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Habits[0].Name == "tampered" {
		t.Error("mutation of loaded grid leaked into store")
	}
	if second.Habits[0].Status(second.Dates[0]) != grid.StatusUnset {
		t.Error("status mutation of loaded grid leaked into store")
	}
}

func TestSave_StoresCopy(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	g := grid.NewDefaultGrid()
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the saved grid after the fact must not affect the store.
	g.Habits[0].Name = "tampered"

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Habits[0].Name == "tampered" {
		t.Error("mutation of saved grid leaked into store")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	g := grid.NewDefaultGrid()
	g.SetStatus(g.Habits[0].Name, g.Dates[0], grid.StatusDone)
	g.SetStatus(g.Habits[1].Name, g.Dates[1], grid.StatusMissed)
	g.Add("Yoga", "🧘")

	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Habits) != 11 {
		t.Errorf("Load() habits = %d, want 11", len(loaded.Habits))
	}
	if got := loaded.Habits[0].Status(g.Dates[0]); got != grid.StatusDone {
		t.Errorf("habit 0 status = %q, want %q", got, grid.StatusDone)
	}
	if loaded.Find("🧘 Yoga") == nil {
		t.Error("added habit not found after round trip")
	}
}

func TestSave_InvalidGrid(t *testing.T) {
	store := setupStore(t)

	err := store.Save(context.Background(), &grid.Grid{})
	if err == nil {
		t.Fatal("Save() with invalid grid should fail")
	}
}

func TestClosedStore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Load() after close error = %v, want ErrClosed", err)
	}
	if err := store.Save(ctx, grid.NewDefaultGrid()); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Save() after close error = %v, want ErrClosed", err)
	}
}

func TestStoreMetadata(t *testing.T) {
	store := setupStore(t)

	if store.Type() != storage.TypeMemory {
		t.Errorf("Type() = %q, want %q", store.Type(), storage.TypeMemory)
	}
	if store.Location() != "" {
		t.Errorf("Location() = %q, want empty", store.Location())
	}
}
