package grid

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Status is a single day's mark for a habit.
type Status string

const (
	// StatusDone marks a completed day.
	StatusDone Status = "✓"
	// StatusMissed marks a missed day.
	StatusMissed Status = "✗"
	// StatusUnset is the absence of a mark. Dates missing from a habit's
	// status map are equivalent to StatusUnset.
	StatusUnset Status = ""
)

// Normalize maps an arbitrary cell value onto one of the three recognized
// marks. Unrecognized values become StatusUnset so that junk from a spreadsheet
// or a hand-edited data file never leaks into stats.
func Normalize(s string) Status {
	switch Status(s) {
	case StatusDone:
		return StatusDone
	case StatusMissed:
		return StatusMissed
	default:
		return StatusUnset
	}
}

// DefaultEmoji is used when a habit has no usable emoji of its own.
const DefaultEmoji = "📌"

// Habit is one tracked routine. The display name (including its emoji prefix)
// is the user-facing lookup key; ID is the stable identity that survives
// renames and spreadsheet round-trips.
type Habit struct {
	// ===== Identity =====
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`

	// ===== Presentation =====
	Emoji    string `json:"emoji"`
	Category string `json:"category"`

	// ===== Daily Marks (sparse: missing date == StatusUnset) =====
	DailyStatus map[string]Status `json:"daily_status"`
}

// Status returns the habit's mark for a date label.
func (h *Habit) Status(date string) Status {
	return h.DailyStatus[date]
}

// Clone returns a deep copy of the habit.
func (h *Habit) Clone() *Habit {
	c := *h
	c.DailyStatus = make(map[string]Status, len(h.DailyStatus))
	for d, s := range h.DailyStatus {
		c.DailyStatus[d] = s
	}
	return &c
}

// Grid is the whole tracker document: an ordered list of date labels plus the
// habits tracked over them.
type Grid struct {
	Dates  []string `json:"dates"`
	Habits []*Habit `json:"habits"`
}

// Find returns the habit with the given display name, or nil.
func (g *Grid) Find(name string) *Habit {
	for _, h := range g.Habits {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// FindByID returns the habit with the given ID, or nil.
func (g *Grid) FindByID(id string) *Habit {
	for _, h := range g.Habits {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// Add appends a new habit. The stored display name is "<emoji> <name>" and the
// category is "custom", matching how habits have always been created through
// the API. An empty emoji falls back to DefaultEmoji.
func (g *Grid) Add(name, emoji string) *Habit {
	if emoji == "" {
		emoji = DefaultEmoji
	}
	h := &Habit{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%s %s", emoji, name),
		Emoji:       emoji,
		Category:    "custom",
		DailyStatus: make(map[string]Status),
	}
	g.Habits = append(g.Habits, h)
	return h
}

// Rename changes a habit's display name to "<emoji> <newName>". The ID is
// untouched. An empty emoji falls back to DefaultEmoji.
func (g *Grid) Rename(h *Habit, newName, emoji string) {
	if emoji == "" {
		emoji = DefaultEmoji
	}
	h.Name = fmt.Sprintf("%s %s", emoji, newName)
	h.Emoji = emoji
}

// Remove deletes the habit with the given display name. It reports whether a
// habit was removed.
func (g *Grid) Remove(name string) bool {
	for i, h := range g.Habits {
		if h.Name == name {
			g.Habits = append(g.Habits[:i], g.Habits[i+1:]...)
			return true
		}
	}
	return false
}

// SetStatus records a normalized mark for the named habit on the given date
// label. It reports whether the habit exists. Date labels are not checked
// against g.Dates: legacy data files carry stray keys and stats simply ignore
// them.
func (g *Grid) SetStatus(name, date string, status Status) bool {
	h := g.Find(name)
	if h == nil {
		return false
	}
	if h.DailyStatus == nil {
		h.DailyStatus = make(map[string]Status)
	}
	h.DailyStatus[date] = Normalize(string(status))
	return true
}

// WeekDates returns the 1-indexed week's slice of date labels, seven per week.
// Weeks past the end of the grid yield an empty slice.
func (g *Grid) WeekDates(week int) []string {
	start := (week - 1) * 7
	if start < 0 || start >= len(g.Dates) {
		return []string{}
	}
	end := start + 7
	if end > len(g.Dates) {
		end = len(g.Dates)
	}
	return g.Dates[start:end]
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Dates:  make([]string, len(g.Dates)),
		Habits: make([]*Habit, len(g.Habits)),
	}
	copy(c.Dates, g.Dates)
	for i, h := range g.Habits {
		c.Habits[i] = h.Clone()
	}
	return c
}

// Validate checks that the grid is structurally sound.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("grid cannot be nil")
	}
	if g.Dates == nil {
		return fmt.Errorf("dates are required")
	}
	for i, h := range g.Habits {
		if h == nil {
			return fmt.Errorf("habit %d is nil", i)
		}
		if h.Name == "" {
			return fmt.Errorf("habit %d has no name", i)
		}
	}
	return nil
}

// SetDefaults heals documents written before IDs existed and fills optional
// presentation fields: missing IDs get a fresh uuid, a missing emoji is
// derived from the name's first rune, and the category defaults to "custom".
func (g *Grid) SetDefaults() {
	for _, h := range g.Habits {
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		if h.Emoji == "" {
			h.Emoji = emojiFromName(h.Name)
		}
		if h.Category == "" {
			h.Category = "custom"
		}
		if h.DailyStatus == nil {
			h.DailyStatus = make(map[string]Status)
		}
		for d, s := range h.DailyStatus {
			h.DailyStatus[d] = Normalize(string(s))
		}
	}
}

// emojiFromName takes the first rune of a display name, the same heuristic the
// spreadsheet import uses. Empty names fall back to DefaultEmoji.
func emojiFromName(name string) string {
	for _, r := range name {
		return string(r)
	}
	return DefaultEmoji
}

// Marshal renders the grid as the pretty-printed JSON document format used by
// the data file (two-space indent, same layout as the legacy tracker files).
func (g *Grid) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grid: %w", err)
	}
	return data, nil
}

// Unmarshal parses a grid document and applies SetDefaults so that legacy
// files load cleanly.
func Unmarshal(data []byte) (*Grid, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse grid document: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid document: %w", err)
	}
	g.SetDefaults()
	return &g, nil
}
