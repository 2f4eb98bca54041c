package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Sync the grid with the connected Google Sheet",
	Long: `Run an explicit sync against the connected spreadsheet.

Directions:
  both          pull remote edits, then push the merged grid (default)
  from_sheets   pull remote edits only
  to_sheets     push local state only

Pulling merges by habit name and keeps local IDs, so sheet edits made from a
phone never duplicate habits.`,
	Run: func(cmd *cobra.Command, args []string) {
		direction, _ := cmd.Flags().GetString("direction")

		cfg := loadConfig()
		ctx := context.Background()
		logger := log.New(os.Stderr, "", 0)

		tr, closeStore := openTracker(ctx, cfg, logger, nil)
		defer closeStore()

		if !tr.Connected() {
			fmt.Fprintf(os.Stderr, "Error: Google Sheets not connected\n")
			fmt.Fprintf(os.Stderr, "Connect one via POST /api/config or spreadsheet_id in %s\n", cfg.SettingsFile())
			os.Exit(1)
		}

		fmt.Printf("%s Syncing with %s...\n", ui.RenderAccent("🔄"), sheets.SpreadsheetURL(tr.SpreadsheetID()))
		start := time.Now()

		if err := tr.Sync(ctx, direction); err != nil {
			fmt.Fprintf(os.Stderr, "Error during sync: %v\n", err)
			os.Exit(1)
		}

		elapsed := time.Since(start)
		fmt.Printf("%s Sync complete in %v (%s)\n", ui.RenderPass("✓"), elapsed.Round(time.Millisecond), direction)

		if summary, err := tr.Stats(ctx); err == nil {
			fmt.Printf("   Habits: %d\n", summary.TotalHabits)
			fmt.Printf("   Overall: %.1f%%\n", summary.OverallProgress)
		}
	},
}

func init() {
	syncCmd.Flags().StringP("direction", "d", tracker.DirectionBoth, "Sync direction (both, from_sheets, to_sheets)")

	rootCmd.AddCommand(syncCmd)
}
