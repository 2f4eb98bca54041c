package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/config"
	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"

	// Storage backends register themselves on import.
	_ "github.com/nishantagraw/daily-routine-tracker/internal/storage/file"
	_ "github.com/nishantagraw/daily-routine-tracker/internal/storage/memory"
	_ "github.com/nishantagraw/daily-routine-tracker/internal/storage/sqlite"
)

const version = "0.3.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "habit",
	Version: version,
	Short:   "Personal daily habit tracker",
	Long: `Track daily habits in a habits x dates grid, serve it over HTTP for the
dashboard, and mirror it to a Google Sheet you can edit from your phone.

Configuration comes from habit.yaml (working directory or ~/.config/habit),
HABIT_* environment variables, and a .env file, in that order of discovery.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: habit.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Tracker Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync & Data Commands:"},
	)
}

// loadConfig reads process configuration, honoring --config.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openTracker wires the configured backend, saved settings, and, when one is
// configured and reachable, the spreadsheet mirror into a tracker. One-shot
// commands pass nil events and close the store when done; serve passes the
// websocket hub.
func openTracker(ctx context.Context, cfg *config.Config, logger *log.Logger, events tracker.Events) (*tracker.Tracker, func()) {
	store, err := storage.Open(storage.Type(cfg.Backend), storage.Options{
		Path:   cfg.StorePath(),
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s backend: %v\n", cfg.Backend, err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(cfg.SettingsFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read settings: %v\n", err)
		settings = &config.Settings{}
	}

	connect := func(ctx context.Context, spreadsheetID string) (sheets.Mirror, error) {
		return sheets.NewGoogle(ctx, sheets.GoogleConfig{
			CredentialsFile: cfg.CredentialsFile,
			SpreadsheetID:   spreadsheetID,
			Logger:          logger,
		})
	}

	var mirror sheets.Mirror
	if settings.SpreadsheetID != "" {
		m, err := connect(ctx, settings.SpreadsheetID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: spreadsheet unreachable, continuing offline: %v\n", err)
		} else {
			mirror = m
		}
	}

	tr, err := tracker.New(tracker.Config{
		Store:         store,
		Mirror:        mirror,
		SpreadsheetID: settings.SpreadsheetID,
		ConnectMirror: connect,
		PersistSheetID: func(id string) error {
			settings.SpreadsheetID = id
			return settings.Save(cfg.SettingsFile())
		},
		Events: events,
		Logger: logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return tr, func() { _ = store.Close() }
}
