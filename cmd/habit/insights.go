package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/coach"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var insightsCmd = &cobra.Command{
	Use:     "insights",
	GroupID: "core",
	Short:   "Ask Claude for a coaching note on your habits",
	Long: `Reduce the grid to a compact stats digest and ask the Anthropic API for
a short coaching note: the strongest habit, the one most at risk, and one
suggestion for tomorrow.

Requires ANTHROPIC_API_KEY in the environment or a .env file.`,
	Run: func(cmd *cobra.Command, args []string) {
		model, _ := cmd.Flags().GetString("model")

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

		c, err := coach.New(coach.Config{Model: model})
		if err != nil {
			if errors.Is(err, coach.ErrNoAPIKey) {
				fmt.Fprintf(os.Stderr, "Error: ANTHROPIC_API_KEY not set\n")
				fmt.Fprintf(os.Stderr, "Export it or put it in a .env file\n")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s Reviewing %d habits...\n\n", ui.RenderAccent("🧠"), len(g.Habits))

		reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()

		note, err := c.Insights(reqCtx, g)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(note)
	},
}

func init() {
	insightsCmd.Flags().String("model", "", "Claude model to use (default claude-sonnet-4-5)")

	rootCmd.AddCommand(insightsCmd)
}
