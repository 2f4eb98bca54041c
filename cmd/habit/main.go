// Command habit is the daily routine tracker: an HTTP API over a habits x
// dates status grid, with optional Google Sheets mirroring and a small CLI
// for marking and reviewing habits from the terminal.
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load .env before any configuration is read, so HABIT_* and
	// ANTHROPIC_API_KEY can live next to the data. A missing file is fine.
	_ = godotenv.Load()

	Execute()
}
