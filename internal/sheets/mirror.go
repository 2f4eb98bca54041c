// Package sheets mirrors the habit grid into a spreadsheet.
//
// The package splits into a pure row codec (Rows/ParseRows/Merge), which is
// where all the layout knowledge lives, and a Google Sheets transport that
// moves those rows over the wire. Everything above this package talks to the
// Mirror interface only.
package sheets

import (
	"context"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

// Mirror is a remote spreadsheet holding a full copy of the habit grid.
//
// Implementations are expected to target a single worksheet and to treat the
// remote document as a whole: Push overwrites everything, Pull reads
// everything. There is no cell-level patching.
type Mirror interface {
	// Pull fetches the remote rows and decodes them into a grid.
	//
	// Returns (nil, nil) when the sheet is empty or carries no habit
	// rows. Transport failures are returned wrapped; callers decide
	// whether they are fatal or merely logged.
	Pull(ctx context.Context) (*grid.Grid, error)

	// Push clears the remote sheet and writes the full export of g,
	// then freezes the header row and habit column so the sheet stays
	// readable when scrolled.
	Push(ctx context.Context, g *grid.Grid) error

	// SpreadsheetID identifies the mirrored spreadsheet.
	SpreadsheetID() string
}

// SpreadsheetURL returns the browser URL for a spreadsheet ID, or "" when no
// sheet is configured.
func SpreadsheetURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + id
}

// Merge reconciles a pulled remote grid with the local one. The remote
// document wins: its dates, habit set, habit order, and statuses replace the
// local state. Identity survives the round trip: a remote habit whose name
// matches a local habit keeps the local ID, emoji, and category, so edits
// made elsewhere never mint a new identity for a habit the app already knows.
func Merge(local, remote *grid.Grid) *grid.Grid {
	if remote == nil {
		return local
	}

	merged := remote.Clone()
	if local != nil {
		for _, h := range merged.Habits {
			prev := local.Find(h.Name)
			if prev == nil {
				continue
			}
			h.ID = prev.ID
			if prev.Emoji != "" {
				h.Emoji = prev.Emoji
			}
			if prev.Category != "" {
				h.Category = prev.Category
			}
		}
	}
	merged.SetDefaults()
	return merged
}
