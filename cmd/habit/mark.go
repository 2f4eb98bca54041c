package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var markCmd = &cobra.Command{
	Use:     "mark <habit> [date]",
	GroupID: "core",
	Short:   "Mark a habit done, missed, or cleared for a date",
	Long: `Mark a habit for a date. The habit can be the full display name or any
unique part of it. The date is natural language ("today", "yesterday",
"jan 7") and defaults to today.

Example usage:
  habit mark running                     # 🏃 Running done today
  habit mark running yesterday
  habit mark water --missed "jan 7"
  habit mark reading --clear`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		missed, _ := cmd.Flags().GetBool("missed")
		clear, _ := cmd.Flags().GetBool("clear")
		if missed && clear {
			fmt.Fprintf(os.Stderr, "Error: --missed and --clear are mutually exclusive\n")
			os.Exit(1)
		}

		dateArg := "today"
		if len(args) == 2 {
			dateArg = args[1]
		}
		label, err := parseDateLabel(dateArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg := loadConfig()
		ctx := context.Background()
		logger := log.New(os.Stderr, "", 0)

		tr, closeStore := openTracker(ctx, cfg, logger, nil)
		defer closeStore()

		g, err := tr.Snapshot(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		name, err := resolveHabit(g, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		status := grid.StatusDone
		verb := "done"
		glyph := ui.RenderPass("✓")
		switch {
		case missed:
			status = grid.StatusMissed
			verb = "missed"
			glyph = ui.RenderError("✗")
		case clear:
			status = grid.StatusUnset
			verb = "cleared"
			glyph = ui.RenderMuted("·")
		}

		synced, err := tr.UpdateStatus(ctx, name, label, status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		suffix := ""
		if synced {
			suffix = " (synced to sheet)"
		}
		fmt.Printf("%s %s %s for %s%s\n", glyph, name, verb, label, suffix)
	},
}

// parseDateLabel turns natural language into a "02 Jan" grid label.
func parseDateLabel(text string) (string, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(text, time.Now())
	if err != nil {
		return "", fmt.Errorf("could not parse date %q: %w", text, err)
	}
	if r == nil {
		return "", fmt.Errorf("could not understand date %q", text)
	}
	return r.Time.Format(grid.DateLayout), nil
}

// resolveHabit matches a query against habit display names: exact match
// first, then a unique case-insensitive substring match.
func resolveHabit(g *grid.Grid, query string) (string, error) {
	if g.Find(query) != nil {
		return query, nil
	}

	q := strings.ToLower(query)
	var matches []string
	for _, h := range g.Habits {
		if strings.Contains(strings.ToLower(h.Name), q) {
			matches = append(matches, h.Name)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no habit matches %q", query)
	default:
		return "", fmt.Errorf("%q is ambiguous, matches: %s", query, strings.Join(matches, ", "))
	}
}

func init() {
	markCmd.Flags().Bool("missed", false, "Mark the habit missed instead of done")
	markCmd.Flags().Bool("clear", false, "Clear the mark for the date")

	rootCmd.AddCommand(markCmd)
}
