package sheets

import (
	"strconv"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

// First header cell and trailing summary columns of the mirrored sheet.
// Sheets written by earlier exporters carry the same shape, so the layout
// is load-bearing for Pull.
const headerHabit = "Habit"

var summaryHeaders = []string{"Total ✓", "Total ✗", "Progress %", "Streak 🔥"}

// Rows flattens the grid into spreadsheet rows. Row 0 is the header (habit
// column, one column per date, four summary columns); each habit contributes
// one row of raw status marks followed by its computed stats. Counts and
// streaks are written as numbers, progress as a percent string.
func Rows(g *grid.Grid) [][]interface{} {
	header := make([]interface{}, 0, len(g.Dates)+1+len(summaryHeaders))
	header = append(header, headerHabit)
	for _, d := range g.Dates {
		header = append(header, d)
	}
	for _, h := range summaryHeaders {
		header = append(header, h)
	}

	rows := make([][]interface{}, 0, len(g.Habits)+1)
	rows = append(rows, header)

	for _, h := range g.Habits {
		st := grid.Compute(h, g.Dates)

		row := make([]interface{}, 0, len(header))
		row = append(row, h.Name)
		for _, d := range g.Dates {
			row = append(row, string(h.Status(d)))
		}
		row = append(row, st.Completed, st.Missed, formatProgress(st.Progress), st.Streak)
		rows = append(rows, row)
	}
	return rows
}

// ParseRows rebuilds a grid from spreadsheet rows. The date columns sit
// between the habit column and the four summary columns; sheets too narrow to
// carry summary columns are treated as all-dates. Rows with an empty first
// cell are skipped. Returns (nil, nil) when the sheet has no habit rows.
func ParseRows(rows [][]string) (*grid.Grid, error) {
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var dates []string
	switch {
	case len(headers) > 1+len(summaryHeaders):
		dates = headers[1 : len(headers)-len(summaryHeaders)]
	case len(headers) > 1:
		dates = headers[1:]
	}

	g := &grid.Grid{
		Dates:  append([]string{}, dates...),
		Habits: []*grid.Habit{},
	}

	for _, row := range rows[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}

		h := &grid.Habit{
			Name:        row[0],
			DailyStatus: make(map[string]grid.Status),
		}
		for i, d := range dates {
			if i+1 >= len(row) {
				break
			}
			if s := grid.Normalize(row[i+1]); s != grid.StatusUnset {
				h.DailyStatus[d] = s
			}
		}
		g.Habits = append(g.Habits, h)
	}

	g.SetDefaults()
	return g, nil
}

// formatProgress renders a progress percentage the way the sheet has always
// shown it: "0%" when untouched, otherwise one decimal place.
func formatProgress(p float64) string {
	if p == 0 {
		return "0%"
	}
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
