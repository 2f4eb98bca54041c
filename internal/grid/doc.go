// Package grid defines the status grid data model for the routine tracker.
//
// # Overview
//
// The tracker's entire state is one document: an ordered list of date labels
// and a list of habits, where each habit carries a sparse map from date label
// to a status mark. The same document round-trips through every storage
// backend and through the spreadsheet mirror.
//
// # Status Marks
//
// Three marks are recognized:
//   - "✓" - the habit was completed on that date
//   - "✗" - the habit was missed on that date
//   - ""  - no entry (dates absent from the map mean the same thing)
//
// Anything else is normalized to the empty mark before it reaches storage.
//
// # Date Labels
//
// Date labels are ordered opaque strings formatted as "02 Jan" (for example
// "05 Jan"). Their order in Grid.Dates drives stats iteration, week slicing,
// and the spreadsheet column order. The default grid covers January 5-31.
//
// # Usage Examples
//
// Creating the default grid:
//
//	g := grid.NewDefaultGrid()
//	h := g.Find("🏋️ Calisthenics")
//	h.DailyStatus["05 Jan"] = grid.StatusDone
//
// Computing stats:
//
//	stats := grid.Compute(h, g.Dates)
//	fmt.Printf("%d done, %.1f%%, streak %d\n", stats.Completed, stats.Progress, stats.Streak)
//
// # Design Principles
//
//   - Flat JSON structure compatible with the legacy tracker_data.json files
//   - Habit names are the user-facing lookup key; IDs are stable internal identity
//   - Stats are pure functions over the document and never mutate it
package grid
