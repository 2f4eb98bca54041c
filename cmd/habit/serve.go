package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nishantagraw/daily-routine-tracker/internal/daemon"
	"github.com/nishantagraw/daily-routine-tracker/internal/server"
	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "core",
	Short:   "Start the habit tracker API server",
	Long: `Start the HTTP API server with the background sync daemon.

The server exposes the habit grid as JSON for the dashboard frontend and
broadcasts live updates over a WebSocket. When a Google Sheet is connected,
the daemon pulls remote edits on an interval and pushes local file changes
after a short debounce.

Example usage:
  habit serve                    # Serve on the configured port (default 5200)
  habit serve --port 8080        # Serve on a custom port
  habit serve --backend sqlite   # Use the sqlite backend

Connect the dashboard or a WebSocket client:
  http://localhost:5200/api/habits
  ws://localhost:5200/ws`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("host") {
			cfg.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend, _ = cmd.Flags().GetString("backend")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile, _ = cmd.Flags().GetString("log-file")
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// All component logs share one sink: stderr, or a rotated file
		// when --log-file is set.
		logOut := io.Writer(os.Stderr)
		if cfg.LogFile != "" {
			logOut = &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    100, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating data dir: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := server.NewHub(log.New(logOut, "[ws] ", log.LstdFlags))

		tr, closeStore := openTracker(ctx, cfg,
			log.New(logOut, "[tracker] ", log.LstdFlags), hub)
		defer closeStore()

		// The daemon always runs; its loops are no-ops until a sheet is
		// connected, so connecting one later needs no restart.
		watchPath := ""
		if storage.Type(cfg.Backend) == storage.TypeFile {
			watchPath = cfg.DataFile()
		}
		d, err := daemon.New(tr, &daemon.Config{
			PullInterval:     cfg.PullInterval,
			DebounceInterval: cfg.DebounceInterval,
			WatchPath:        watchPath,
			Logger:           log.New(logOut, "[daemon] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating sync daemon: %v\n", err)
			os.Exit(1)
		}

		srv, err := server.NewServer(server.Config{
			Host:    cfg.Host,
			Port:    cfg.Port,
			Tracker: tr,
			Daemon:  d,
			Hub:     hub,
			Logger:  log.New(logOut, "[server] ", log.LstdFlags),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
			os.Exit(1)
		}

		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start server: %v\n", err)
			os.Exit(1)
		}

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: sync daemon not running: %v\n", err)
		}

		fmt.Printf("%s Habit tracker started on http://%s\n", ui.RenderAccent("🚀"), srv.Addr())
		fmt.Printf("   Backend: %s\n", cfg.Backend)
		if path := cfg.StorePath(); path != "" {
			fmt.Printf("   Data: %s\n", path)
		}
		if tr.Connected() {
			fmt.Printf("   Sheets: %s %s\n", ui.RenderPass("✓"), sheets.SpreadsheetURL(tr.SpreadsheetID()))
		} else {
			fmt.Printf("   Sheets: %s not connected\n", ui.RenderWarn("⚠"))
		}
		fmt.Printf("   WebSocket: ws://%s/ws\n", srv.Addr())
		fmt.Println("\nPress Ctrl+C to stop...")

		<-ctx.Done()

		fmt.Println("\nShutting down...")
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
		if err := d.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping daemon: %v\n", err)
		}

		fmt.Println("Habit tracker stopped")
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 5200, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind")
	serveCmd.Flags().String("backend", "", "Storage backend (file, sqlite, memory)")
	serveCmd.Flags().String("data-dir", "", "Data directory")
	serveCmd.Flags().String("log-file", "", "Write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(serveCmd)
}
