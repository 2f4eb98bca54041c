package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "sync",
	Short:   "Copy the habit grid to another storage backend",
	Long: `Copy the full grid from the configured backend into another one.

The source is never modified. The destination is fully overwritten, so this
is also the way to rebuild a broken backend from a healthy one.

Example usage:
  habit migrate --to sqlite           # file -> sqlite
  habit migrate --to file --dry-run   # preview without writing`,
	Run: func(cmd *cobra.Command, args []string) {
		to, _ := cmd.Flags().GetString("to")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg := loadConfig()

		dstType := storage.Type(to)
		if to == "" || !storage.IsRegistered(dstType) {
			fmt.Fprintf(os.Stderr, "Error: --to must be one of %v\n", storage.RegisteredTypes())
			os.Exit(1)
		}
		if dstType == storage.Type(cfg.Backend) {
			fmt.Fprintf(os.Stderr, "Error: already on the %s backend\n", to)
			os.Exit(1)
		}

		ctx := context.Background()
		logger := log.New(os.Stderr, "", 0)

		src, err := storage.Open(storage.Type(cfg.Backend), storage.Options{
			Path:   cfg.StorePath(),
			Logger: logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening source %s backend: %v\n", cfg.Backend, err)
			os.Exit(1)
		}
		defer src.Close()

		var dstPath string
		switch dstType {
		case storage.TypeFile:
			dstPath = cfg.DataFile()
		case storage.TypeSQLite:
			dstPath = cfg.DatabaseFile()
		}
		dst, err := storage.Open(dstType, storage.Options{
			Path:   dstPath,
			Logger: logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening destination %s backend: %v\n", to, err)
			os.Exit(1)
		}
		defer dst.Close()

		fmt.Printf("%s Migrating %s to %s...\n", ui.RenderAccent("🔄"), cfg.Backend, to)

		result, err := storage.Migrate(ctx, src, dst, storage.MigrateOptions{DryRun: dryRun})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during migration: %v\n", err)
			os.Exit(1)
		}

		verb := "Migrated"
		if dryRun {
			verb = "Would migrate"
		}
		fmt.Printf("%s %s %d habits with %d marks over %d dates\n",
			ui.RenderPass("✓"), verb, result.Habits, result.Marks, result.Dates)
		if !dryRun {
			if dstPath != "" {
				fmt.Printf("   Destination: %s\n", dstPath)
			}
			fmt.Printf("   Set backend: %s in habit.yaml to switch over\n", to)
		}
	},
}

func init() {
	migrateCmd.Flags().String("to", "", "Destination backend (file, sqlite, memory)")
	migrateCmd.Flags().Bool("dry-run", false, "Preview without writing to the destination")

	rootCmd.AddCommand(migrateCmd)
}
