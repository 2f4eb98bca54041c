package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/config"
	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "core",
	Short:   "Interactive setup wizard",
	Long: `Walk through the tracker configuration and write habit.yaml.

Picks the storage backend, port, and data directory, and optionally connects
a Google Sheet. With --seed, a YAML habit list replaces the built-in default
habit set:

  habits:
    - name: "🧘 Yoga"
      emoji: "🧘"
      category: mindfulness`,
	Run: func(cmd *cobra.Command, args []string) {
		seedPath, _ := cmd.Flags().GetString("seed")
		force, _ := cmd.Flags().GetBool("force")

		backend := string(storage.DefaultType)
		port := "5200"
		dataDir := "./data"
		spreadsheetID := ""
		credentials := "service-account.json"

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Storage backend").
					Description("Where the habit grid lives").
					Options(
						huh.NewOption("JSON file (simple, diffable)", "file"),
						huh.NewOption("SQLite database", "sqlite"),
						huh.NewOption("In-memory (throwaway)", "memory"),
					).
					Value(&backend),
				huh.NewInput().
					Title("API port").
					Value(&port).
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n < 0 || n > 65535 {
							return fmt.Errorf("port must be 0-65535")
						}
						return nil
					}),
				huh.NewInput().
					Title("Data directory").
					Value(&dataDir),
				huh.NewInput().
					Title("Google spreadsheet ID").
					Description("Optional, leave empty to stay local").
					Value(&spreadsheetID),
				huh.NewInput().
					Title("Service account key file").
					Description("Only used when a spreadsheet is connected").
					Value(&credentials),
			),
		)

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Aborted")
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		portNum, _ := strconv.Atoi(port)
		cfg := &config.Config{
			Host:             "0.0.0.0",
			Port:             portNum,
			Backend:          backend,
			DataDir:          dataDir,
			CredentialsFile:  credentials,
			SeedFile:         seedPath,
			PullInterval:     60 * time.Second,
			DebounceInterval: 2 * time.Second,
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		out := configPath
		if out == "" {
			out = "habit.yaml"
		}
		if err := cfg.WriteFile(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), out)

		if spreadsheetID != "" {
			settings := &config.Settings{SpreadsheetID: spreadsheetID}
			if err := settings.Save(cfg.SettingsFile()); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving settings: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s Saved spreadsheet ID to %s\n", ui.RenderPass("✓"), cfg.SettingsFile())
		}

		if seedPath != "" {
			seedStore(cfg, seedPath, force)
		}

		fmt.Printf("\nRun %s to start tracking\n", ui.RenderAccent("habit serve"))
	},
}

// seedStore writes a seeded grid into a fresh store. Existing data is left
// alone unless force is set.
func seedStore(cfg *config.Config, seedPath string, force bool) {
	seeds, err := grid.LoadSeeds(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if path := cfg.StorePath(); path != "" && !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("%s Existing data at %s, not reseeding (use --force)\n", ui.RenderWarn("⚠"), path)
			return
		}
	}

	store, err := storage.Open(storage.Type(cfg.Backend), storage.Options{Path: cfg.StorePath()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s backend: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer store.Close()

	g := grid.NewSeededGrid(seeds)
	if err := store.Save(context.Background(), g); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding store: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s Seeded %d habits from %s\n", ui.RenderPass("✓"), len(g.Habits), seedPath)
}

func init() {
	initCmd.Flags().String("seed", "", "YAML file replacing the default habit set")
	initCmd.Flags().Bool("force", false, "Reseed even when data already exists")

	rootCmd.AddCommand(initCmd)
}
