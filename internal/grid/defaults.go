package grid

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of every date label in the grid.
const DateLayout = "02 Jan"

// defaultSeeds is the built-in habit set for a fresh tracker.
var defaultSeeds = []Seed{
	{Name: "🏋️ Calisthenics", Emoji: "🏋️", Category: "fitness"},
	{Name: "💧 Water (8 glasses)", Emoji: "💧", Category: "health"},
	{Name: "🏃 Running", Emoji: "🏃", Category: "fitness"},
	{Name: "😴 Sleep (7+ hours)", Emoji: "😴", Category: "health"},
	{Name: "🐍 Learning Python", Emoji: "🐍", Category: "learning"},
	{Name: "🥩 Protein Intake", Emoji: "🥩", Category: "health"},
	{Name: "💼 Client Finding (1hr)", Emoji: "💼", Category: "business"},
	{Name: "📚 Reading (30 min)", Emoji: "📚", Category: "learning"},
	{Name: "🧘 Meditation (10 min)", Emoji: "🧘", Category: "mindfulness"},
	{Name: "📱 No Social Media (1st hr)", Emoji: "📱", Category: "productivity"},
}

// Seed describes one habit in a seed set.
type Seed struct {
	Name     string `yaml:"name"`
	Emoji    string `yaml:"emoji"`
	Category string `yaml:"category"`
}

// seedFile is the YAML layout accepted by LoadSeeds.
type seedFile struct {
	Habits []Seed `yaml:"habits"`
}

// JanuaryDates returns the default tracking window: every day from January 5
// through January 31, 2026, formatted as DateLayout labels.
func JanuaryDates() []string {
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// NewDefaultGrid builds a fresh grid with the built-in habit set over the
// default date window. Every habit gets a fresh ID.
func NewDefaultGrid() *Grid {
	return NewSeededGrid(defaultSeeds)
}

// NewSeededGrid builds a fresh grid from an explicit seed set over the default
// date window.
func NewSeededGrid(seeds []Seed) *Grid {
	g := &Grid{
		Dates:  JanuaryDates(),
		Habits: make([]*Habit, 0, len(seeds)),
	}
	for _, s := range seeds {
		emoji := s.Emoji
		if emoji == "" {
			emoji = emojiFromName(s.Name)
		}
		category := s.Category
		if category == "" {
			category = "custom"
		}
		g.Habits = append(g.Habits, &Habit{
			ID:          uuid.NewString(),
			Name:        s.Name,
			Emoji:       emoji,
			Category:    category,
			DailyStatus: make(map[string]Status),
		})
	}
	return g
}

// LoadSeeds reads a YAML seed file describing a replacement for the built-in
// habit set:
//
//	habits:
//	  - name: "🧘 Yoga"
//	    emoji: "🧘"
//	    category: mindfulness
func LoadSeeds(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if len(f.Habits) == 0 {
		return nil, fmt.Errorf("seed file %s defines no habits", path)
	}
	for i, s := range f.Habits {
		if s.Name == "" {
			return nil, fmt.Errorf("seed file %s: habit %d has no name", path, i)
		}
	}
	return f.Habits, nil
}
