package grid

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Status
	}{
		{"done mark", "✓", StatusDone},
		{"missed mark", "✗", StatusMissed},
		{"empty", "", StatusUnset},
		{"junk word", "done", StatusUnset},
		{"ascii x", "x", StatusUnset},
		{"whitespace", " ", StatusUnset},
		{"lookalike check mark", "✔", StatusUnset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJanuaryDates(t *testing.T) {
	dates := JanuaryDates()

	if len(dates) != 27 {
		t.Fatalf("expected 27 date labels, got %d", len(dates))
	}
	if dates[0] != "05 Jan" {
		t.Errorf("first label = %q, want %q", dates[0], "05 Jan")
	}
	if dates[len(dates)-1] != "31 Jan" {
		t.Errorf("last label = %q, want %q", dates[len(dates)-1], "31 Jan")
	}
}

func TestNewDefaultGrid(t *testing.T) {
	g := NewDefaultGrid()

	if len(g.Habits) != 10 {
		t.Fatalf("expected 10 default habits, got %d", len(g.Habits))
	}
	if len(g.Dates) != 27 {
		t.Fatalf("expected 27 dates, got %d", len(g.Dates))
	}

	first := g.Habits[0]
	if first.Name != "🏋️ Calisthenics" {
		t.Errorf("first habit = %q, want %q", first.Name, "🏋️ Calisthenics")
	}
	if first.Category != "fitness" {
		t.Errorf("first habit category = %q, want fitness", first.Category)
	}

	seen := make(map[string]bool)
	for _, h := range g.Habits {
		if h.ID == "" {
			t.Errorf("habit %q has no ID", h.Name)
		}
		if seen[h.ID] {
			t.Errorf("duplicate habit ID %q", h.ID)
		}
		seen[h.ID] = true
		if h.DailyStatus == nil {
			t.Errorf("habit %q has nil status map", h.Name)
		}
	}
}

func TestGrid_Add(t *testing.T) {
	g := NewDefaultGrid()

	h := g.Add("Yoga", "🧘")

	if h.Name != "🧘 Yoga" {
		t.Errorf("stored name = %q, want %q", h.Name, "🧘 Yoga")
	}
	if h.Category != "custom" {
		t.Errorf("category = %q, want custom", h.Category)
	}
	if h.ID == "" {
		t.Error("new habit has no ID")
	}
	if g.Find("🧘 Yoga") != h {
		t.Error("added habit not findable by stored name")
	}
	// The bare name is not a lookup key; only the stored display name is.
	if g.Find("Yoga") != nil {
		t.Error("bare name should not resolve to a habit")
	}
}

func TestGrid_Add_DefaultEmoji(t *testing.T) {
	g := &Grid{Dates: JanuaryDates()}

	h := g.Add("Journaling", "")

	if h.Name != "📌 Journaling" {
		t.Errorf("stored name = %q, want %q", h.Name, "📌 Journaling")
	}
	if h.Emoji != DefaultEmoji {
		t.Errorf("emoji = %q, want %q", h.Emoji, DefaultEmoji)
	}
}

func TestGrid_FindByID(t *testing.T) {
	g := NewDefaultGrid()
	h := g.Habits[3]

	if got := g.FindByID(h.ID); got != h {
		t.Errorf("FindByID(%q) = %v, want %v", h.ID, got, h)
	}
	if g.FindByID("no-such-id") != nil {
		t.Error("FindByID for unknown ID should return nil")
	}
}

func TestGrid_Rename(t *testing.T) {
	g := NewDefaultGrid()
	h := g.Find("🏃 Running")
	if h == nil {
		t.Fatal("missing default habit")
	}
	id := h.ID
	h.DailyStatus["05 Jan"] = StatusDone

	g.Rename(h, "Sprinting", "⚡")

	if h.Name != "⚡ Sprinting" {
		t.Errorf("renamed to %q, want %q", h.Name, "⚡ Sprinting")
	}
	if h.ID != id {
		t.Errorf("rename changed ID from %q to %q", id, h.ID)
	}
	if h.Status("05 Jan") != StatusDone {
		t.Error("rename lost recorded statuses")
	}
	if g.Find("🏃 Running") != nil {
		t.Error("old name still resolves after rename")
	}
}

func TestGrid_Remove(t *testing.T) {
	g := NewDefaultGrid()

	if !g.Remove("🏃 Running") {
		t.Fatal("Remove returned false for existing habit")
	}
	if len(g.Habits) != 9 {
		t.Errorf("expected 9 habits after removal, got %d", len(g.Habits))
	}
	if g.Find("🏃 Running") != nil {
		t.Error("removed habit still findable")
	}
	if g.Remove("🏃 Running") {
		t.Error("Remove returned true for missing habit")
	}
}

func TestGrid_SetStatus(t *testing.T) {
	g := NewDefaultGrid()

	if !g.SetStatus("🏋️ Calisthenics", "05 Jan", StatusDone) {
		t.Fatal("SetStatus failed for existing habit")
	}
	if got := g.Find("🏋️ Calisthenics").Status("05 Jan"); got != StatusDone {
		t.Errorf("status = %q, want %q", got, StatusDone)
	}

	// Unknown habit names are reported, not silently created.
	if g.SetStatus("Yoga", "05 Jan", StatusDone) {
		t.Error("SetStatus succeeded for unknown habit")
	}

	// Junk marks are normalized away before they land in the map.
	g.SetStatus("🏋️ Calisthenics", "06 Jan", Status("maybe"))
	if got := g.Find("🏋️ Calisthenics").Status("06 Jan"); got != StatusUnset {
		t.Errorf("junk mark stored as %q, want unset", got)
	}
}

func TestGrid_WeekDates(t *testing.T) {
	g := &Grid{Dates: JanuaryDates()} // 27 labels

	tests := []struct {
		name      string
		week      int
		wantLen   int
		wantFirst string
	}{
		{"week 1", 1, 7, "05 Jan"},
		{"week 2", 2, 7, "12 Jan"},
		{"week 3", 3, 7, "19 Jan"},
		{"partial week 4", 4, 6, "26 Jan"},
		{"past the end", 5, 0, ""},
		{"zero", 0, 0, ""},
		{"negative", -1, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.WeekDates(tt.week)
			if len(got) != tt.wantLen {
				t.Fatalf("WeekDates(%d) returned %d labels, want %d", tt.week, len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0] != tt.wantFirst {
				t.Errorf("WeekDates(%d)[0] = %q, want %q", tt.week, got[0], tt.wantFirst)
			}
		})
	}
}

func TestGrid_Clone(t *testing.T) {
	g := NewDefaultGrid()
	g.SetStatus("🏃 Running", "05 Jan", StatusDone)

	c := g.Clone()
	c.SetStatus("🏃 Running", "05 Jan", StatusMissed)
	c.Add("Yoga", "🧘")
	c.Dates[0] = "01 Jan"

	if got := g.Find("🏃 Running").Status("05 Jan"); got != StatusDone {
		t.Errorf("clone mutation leaked into original status: %q", got)
	}
	if len(g.Habits) != 10 {
		t.Errorf("clone mutation changed original habit count: %d", len(g.Habits))
	}
	if g.Dates[0] != "05 Jan" {
		t.Errorf("clone mutation changed original dates: %q", g.Dates[0])
	}
}

func TestGrid_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid empty grid",
			grid:    &Grid{Dates: []string{}},
			wantErr: false,
		},
		{
			name:    "valid default grid",
			grid:    NewDefaultGrid(),
			wantErr: false,
		},
		{
			name:    "nil dates",
			grid:    &Grid{},
			wantErr: true,
			errMsg:  "dates are required",
		},
		{
			name:    "habit without name",
			grid:    &Grid{Dates: []string{"05 Jan"}, Habits: []*Habit{{Name: ""}}},
			wantErr: true,
			errMsg:  "habit 0 has no name",
		},
		{
			name:    "nil habit entry",
			grid:    &Grid{Dates: []string{"05 Jan"}, Habits: []*Habit{nil}},
			wantErr: true,
			errMsg:  "habit 0 is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want containing %q", err, tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestGrid_SetDefaults(t *testing.T) {
	g := &Grid{
		Dates: []string{"05 Jan"},
		Habits: []*Habit{
			{Name: "🏃 Running", DailyStatus: map[string]Status{"05 Jan": "yes"}},
			{Name: "Plain habit"},
		},
	}

	g.SetDefaults()

	first := g.Habits[0]
	if first.ID == "" {
		t.Error("SetDefaults did not assign an ID")
	}
	if first.Emoji != "🏃" {
		t.Errorf("derived emoji = %q, want 🏃", first.Emoji)
	}
	if first.Category != "custom" {
		t.Errorf("category = %q, want custom", first.Category)
	}
	if first.Status("05 Jan") != StatusUnset {
		t.Error("SetDefaults did not normalize junk marks")
	}

	second := g.Habits[1]
	if second.Emoji != "P" {
		t.Errorf("derived emoji for plain name = %q, want first rune", second.Emoji)
	}
	if second.DailyStatus == nil {
		t.Error("SetDefaults left a nil status map")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := NewDefaultGrid()
	g.SetStatus("🏋️ Calisthenics", "05 Jan", StatusDone)
	g.SetStatus("🏋️ Calisthenics", "06 Jan", StatusMissed)

	data, err := g.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if len(got.Habits) != len(g.Habits) {
		t.Fatalf("round trip habit count = %d, want %d", len(got.Habits), len(g.Habits))
	}
	for i := range g.Habits {
		if got.Habits[i].Name != g.Habits[i].Name {
			t.Errorf("habit %d name = %q, want %q", i, got.Habits[i].Name, g.Habits[i].Name)
		}
		if got.Habits[i].ID != g.Habits[i].ID {
			t.Errorf("habit %d ID changed across round trip", i)
		}
	}
	if got.Find("🏋️ Calisthenics").Status("06 Jan") != StatusMissed {
		t.Error("round trip lost a recorded status")
	}
}

// Legacy data files predate IDs and may carry junk marks; loading must heal both.
func TestUnmarshal_LegacyDocument(t *testing.T) {
	legacy := `{
  "habits": [
    {
      "name": "🏋️ Calisthenics",
      "emoji": "🏋️",
      "category": "fitness",
      "daily_status": {"05 Jan": "✓", "06 Jan": "", "07 Jan": "skip"}
    }
  ],
  "dates": ["05 Jan", "06 Jan", "07 Jan"]
}`

	g, err := Unmarshal([]byte(legacy))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	h := g.Find("🏋️ Calisthenics")
	if h == nil {
		t.Fatal("legacy habit missing after load")
	}
	if h.ID == "" {
		t.Error("legacy habit did not get an ID")
	}
	if h.Status("05 Jan") != StatusDone {
		t.Errorf("status = %q, want done", h.Status("05 Jan"))
	}
	if h.Status("07 Jan") != StatusUnset {
		t.Errorf("junk legacy mark survived load: %q", h.Status("07 Jan"))
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"missing dates", `{"habits": []}`},
		{"nameless habit", `{"dates": [], "habits": [{"name": ""}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); err == nil {
				t.Error("Unmarshal() expected error, got nil")
			}
		})
	}
}

func TestHabit_JSONTags(t *testing.T) {
	h := &Habit{
		ID:          "test-id",
		Name:        "🏃 Running",
		Emoji:       "🏃",
		Category:    "fitness",
		DailyStatus: map[string]Status{"05 Jan": StatusDone},
	}

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "name", "emoji", "category", "daily_status"} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled habit missing %q key", key)
		}
	}
}
