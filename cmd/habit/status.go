package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "core",
	Short:   "Show the habit grid for a week",
	Long: `Display one week of the habit grid as a terminal table.

Each row is a habit with its marks for the week, a completion bar over the
full tracking window, and the current streak.

Example usage:
  habit status             # Week 1
  habit status --week 3    # A later week`,
	Run: func(cmd *cobra.Command, args []string) {
		week, _ := cmd.Flags().GetInt("week")

		cfg := loadConfig()
		ctx := context.Background()
		logger := log.New(os.Stderr, "", 0)

		tr, closeStore := openTracker(ctx, cfg, logger, nil)
		defer closeStore()

		report, err := tr.Week(ctx, week)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(report.Dates) == 0 {
			fmt.Printf("\n%s Week %d is past the end of the tracking window\n\n", ui.RenderWarn("⚠"), week)
			return
		}

		summary, err := tr.Stats(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		first, last := report.Dates[0], report.Dates[len(report.Dates)-1]
		fmt.Printf("\n%s\n\n", ui.Heading("📊", fmt.Sprintf("Week %d (%s to %s)", report.Week, first, last)))

		nameWidth := 0
		for _, h := range report.Habits {
			if n := len([]rune(h.Name)); n > nameWidth {
				nameWidth = n
			}
		}

		fmt.Print(pad("Habit", nameWidth))
		for _, d := range report.Dates {
			fmt.Printf(" %3s", dayOf(d))
		}
		fmt.Println("   Progress")

		for _, h := range report.Habits {
			fmt.Print(pad(h.Name, nameWidth))
			for _, d := range report.Dates {
				fmt.Printf("   %s", ui.RenderMark(string(h.DailyStatus[d])))
			}
			fmt.Printf("   %s %5.1f%%  streak %d\n", ui.ProgressBar(h.Progress, 10), h.Progress, h.Streak)
		}

		fmt.Printf("\nOverall: %.1f%%  Best streak: %d  (%d done / %d missed)\n",
			summary.OverallProgress, summary.BestStreak, summary.TotalCompleted, summary.TotalMissed)
		if tr.Connected() {
			fmt.Printf("Sheet: %s\n", tr.SpreadsheetID())
		}
		fmt.Println()
	},
}

// pad right-pads s to width by rune count. Wide emoji still drift a column,
// which is tolerable for a terminal table.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// dayOf extracts the day number from a "02 Jan" label.
func dayOf(date string) string {
	if fields := strings.Fields(date); len(fields) > 0 {
		return fields[0]
	}
	return date
}

func init() {
	statusCmd.Flags().IntP("week", "w", 1, "Week of the tracking window to show (1-indexed)")

	rootCmd.AddCommand(statusCmd)
}
