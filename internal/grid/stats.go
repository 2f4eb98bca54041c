package grid

import "math"

// HabitStats holds the computed counters for one habit over a date window.
type HabitStats struct {
	Completed int     `json:"completed"`
	Missed    int     `json:"missed"`
	Progress  float64 `json:"progress"`
	Streak    int     `json:"streak"`
}

// Summary aggregates the whole grid.
type Summary struct {
	TotalHabits     int     `json:"total_habits"`
	OverallProgress float64 `json:"overall_progress"`
	BestStreak      int     `json:"best_streak"`
	TotalCompleted  int     `json:"total_completed"`
	TotalMissed     int     `json:"total_missed"`
}

// Compute counts a habit's marks over the given date window and derives the
// progress percentage and current streak.
func Compute(h *Habit, dates []string) HabitStats {
	var completed, missed int
	for _, date := range dates {
		switch h.Status(date) {
		case StatusDone:
			completed++
		case StatusMissed:
			missed++
		}
	}
	return HabitStats{
		Completed: completed,
		Missed:    missed,
		Progress:  Progress(completed, missed),
		Streak:    Streak(h, dates),
	}
}

// Streak walks the date window from the most recent label backwards: a done
// mark extends the streak, a missed mark ends it immediately, and an unset day
// is skipped without breaking it.
func Streak(h *Habit, dates []string) int {
	streak := 0
	for i := len(dates) - 1; i >= 0; i-- {
		switch h.Status(dates[i]) {
		case StatusDone:
			streak++
		case StatusMissed:
			return streak
		}
	}
	return streak
}

// Progress is the completion percentage over recorded days only, rounded to
// one decimal place. Days without a mark are excluded from the denominator;
// with nothing recorded the progress is 0.
func Progress(completed, missed int) float64 {
	total := completed + missed
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

// Summarize computes the grid-wide aggregate: grand completed/missed totals,
// overall progress over those totals, and the best per-habit streak. An empty
// grid summarizes to all zeros.
func Summarize(g *Grid) Summary {
	s := Summary{TotalHabits: len(g.Habits)}
	for _, h := range g.Habits {
		stats := Compute(h, g.Dates)
		s.TotalCompleted += stats.Completed
		s.TotalMissed += stats.Missed
		if stats.Streak > s.BestStreak {
			s.BestStreak = stats.Streak
		}
	}
	s.OverallProgress = Progress(s.TotalCompleted, s.TotalMissed)
	return s
}
