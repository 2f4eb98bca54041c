package sheets

import (
	"context"
	"fmt"
	"log"
	"os"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

// GoogleConfig configures the Google Sheets transport.
type GoogleConfig struct {
	// CredentialsFile is the path to a service account JSON key with
	// access to the spreadsheet.
	CredentialsFile string

	// SpreadsheetID is the target spreadsheet. Operations always hit the
	// first worksheet, whatever it is named.
	SpreadsheetID string

	Logger *log.Logger
}

// Google mirrors the grid into the first worksheet of a Google spreadsheet.
type Google struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetTitle    string
	sheetID       int64
	logger        *log.Logger
}

// NewGoogle authenticates with the service account key and verifies the
// spreadsheet is reachable, recording the first worksheet as the mirror
// target. Any failure here means the sheet is unusable, so construction
// doubles as the connectivity check.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID cannot be empty")
	}
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("credentials file cannot be empty")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[sheets] ", log.LstdFlags)
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", cfg.SpreadsheetID, err)
	}
	if len(meta.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", cfg.SpreadsheetID)
	}

	props := meta.Sheets[0].Properties
	g := &Google{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetTitle:    props.Title,
		sheetID:       props.SheetId,
		logger:        cfg.Logger,
	}
	g.logger.Printf("Connected to spreadsheet %s (worksheet %q)", cfg.SpreadsheetID, props.Title)
	return g, nil
}

// Pull reads the whole worksheet and decodes it.
func (g *Google) Pull(ctx context.Context) (*grid.Grid, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.sheetTitle).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", g.sheetTitle, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, cellString(cell))
		}
		rows = append(rows, row)
	}
	return ParseRows(rows)
}

// Push clears the worksheet, writes the full export, and freezes the header
// row and habit column.
func (g *Google) Push(ctx context.Context, doc *grid.Grid) error {
	_, err := g.svc.Spreadsheets.Values.
		Clear(g.spreadsheetID, g.sheetTitle, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear worksheet %q: %w", g.sheetTitle, err)
	}

	vr := &sheetsapi.ValueRange{Values: Rows(doc)}
	_, err = g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.sheetTitle+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write worksheet %q: %w", g.sheetTitle, err)
	}

	freeze := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
				Properties: &sheetsapi.SheetProperties{
					SheetId: g.sheetID,
					GridProperties: &sheetsapi.GridProperties{
						FrozenRowCount:    1,
						FrozenColumnCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount,gridProperties.frozenColumnCount",
			},
		}},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, freeze).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}
	return nil
}

// SpreadsheetID identifies the mirrored spreadsheet.
func (g *Google) SpreadsheetID() string { return g.spreadsheetID }

// cellString renders an API cell value. The Values API hands back strings for
// RAW sheets but numbers arrive as float64 or json.Number.
func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
