package grid

import "testing"

// habitWith builds a habit whose marks line up positionally with dates.
func habitWith(t *testing.T, dates []string, marks []Status) *Habit {
	t.Helper()
	if len(marks) > len(dates) {
		t.Fatalf("more marks (%d) than dates (%d)", len(marks), len(dates))
	}
	h := &Habit{Name: "test habit", DailyStatus: make(map[string]Status)}
	for i, m := range marks {
		h.DailyStatus[dates[i]] = m
	}
	return h
}

func TestStreak(t *testing.T) {
	dates := []string{"05 Jan", "06 Jan", "07 Jan", "08 Jan", "09 Jan", "10 Jan"}

	tests := []struct {
		name  string
		marks []Status
		want  int
	}{
		{"no marks at all", nil, 0},
		{"single done", []Status{StatusDone}, 1},
		{"missed ends scan immediately", []Status{StatusUnset, StatusUnset, StatusDone, StatusDone, StatusMissed, StatusDone}, 1},
		{"trailing unset days do not break", []Status{StatusDone, StatusDone, StatusUnset}, 2},
		{"unset gaps inside streak are skipped", []Status{StatusDone, StatusUnset, StatusDone, StatusUnset, StatusDone}, 3},
		{"all done", []Status{StatusDone, StatusDone, StatusDone, StatusDone, StatusDone, StatusDone}, 6},
		{"most recent missed", []Status{StatusDone, StatusDone, StatusDone, StatusDone, StatusDone, StatusMissed}, 0},
		{"all missed", []Status{StatusMissed, StatusMissed}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := habitWith(t, dates, tt.marks)
			if got := Streak(h, dates); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		missed    int
		want      float64
	}{
		{"nothing recorded", 0, 0, 0},
		{"two of three", 2, 1, 66.7},
		{"one of three", 1, 2, 33.3},
		{"perfect", 5, 0, 100},
		{"all missed", 0, 4, 0},
		{"half", 1, 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.completed, tt.missed); got != tt.want {
				t.Errorf("Progress(%d, %d) = %v, want %v", tt.completed, tt.missed, got, tt.want)
			}
		})
	}
}

func TestCompute(t *testing.T) {
	dates := []string{"05 Jan", "06 Jan", "07 Jan"}
	h := habitWith(t, dates, []Status{StatusDone, StatusMissed, StatusDone})
	h.Name = "🏋️ Calisthenics"

	stats := Compute(h, dates)

	if stats.Completed != 2 {
		t.Errorf("Completed = %d, want 2", stats.Completed)
	}
	if stats.Missed != 1 {
		t.Errorf("Missed = %d, want 1", stats.Missed)
	}
	if stats.Progress != 66.7 {
		t.Errorf("Progress = %v, want 66.7", stats.Progress)
	}
	if stats.Streak != 1 {
		t.Errorf("Streak = %d, want 1", stats.Streak)
	}
}

// Marks on dates outside the window must not count.
func TestCompute_IgnoresStrayDates(t *testing.T) {
	dates := []string{"05 Jan", "06 Jan"}
	h := habitWith(t, dates, []Status{StatusDone, StatusDone})
	h.DailyStatus["99 Dec"] = StatusMissed

	stats := Compute(h, dates)

	if stats.Missed != 0 {
		t.Errorf("stray date counted: Missed = %d", stats.Missed)
	}
	if stats.Streak != 2 {
		t.Errorf("Streak = %d, want 2", stats.Streak)
	}
}

func TestSummarize(t *testing.T) {
	dates := []string{"05 Jan", "06 Jan", "07 Jan"}
	g := &Grid{
		Dates: dates,
		Habits: []*Habit{
			habitWith(t, dates, []Status{StatusDone, StatusDone, StatusDone}),  // streak 3
			habitWith(t, dates, []Status{StatusDone, StatusMissed, StatusDone}), // streak 1
			habitWith(t, dates, nil),                                            // untouched
		},
	}

	s := Summarize(g)

	if s.TotalHabits != 3 {
		t.Errorf("TotalHabits = %d, want 3", s.TotalHabits)
	}
	if s.TotalCompleted != 5 {
		t.Errorf("TotalCompleted = %d, want 5", s.TotalCompleted)
	}
	if s.TotalMissed != 1 {
		t.Errorf("TotalMissed = %d, want 1", s.TotalMissed)
	}
	if s.BestStreak != 3 {
		t.Errorf("BestStreak = %d, want 3", s.BestStreak)
	}
	// 5 of 6 recorded days.
	if s.OverallProgress != 83.3 {
		t.Errorf("OverallProgress = %v, want 83.3", s.OverallProgress)
	}
}

func TestSummarize_EmptyGrid(t *testing.T) {
	s := Summarize(&Grid{Dates: []string{}})

	if s.TotalHabits != 0 || s.TotalCompleted != 0 || s.TotalMissed != 0 ||
		s.BestStreak != 0 || s.OverallProgress != 0 {
		t.Errorf("empty grid summary not all zeros: %+v", s)
	}
}
