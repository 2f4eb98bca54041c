package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
	"github.com/nishantagraw/daily-routine-tracker/internal/sheets"
	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"
)

// habitView is one grid row as the dashboard renders it: the sparse status
// map plus the stats computed over the full date window.
type habitView struct {
	Name        string                 `json:"name"`
	DailyStatus map[string]grid.Status `json:"daily_status"`
	grid.HabitStats
}

type habitsResponse struct {
	Habits          []habitView `json:"habits"`
	Dates           []string    `json:"dates"`
	SheetsConnected bool        `json:"sheets_connected"`
	SpreadsheetURL  *string     `json:"spreadsheet_url"`
}

type updateRequest struct {
	HabitName string `json:"habit_name"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type addRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

type deleteRequest struct {
	HabitName string `json:"habit_name"`
}

type editRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	Emoji   string `json:"emoji"`
}

type configRequest struct {
	SpreadsheetID string `json:"spreadsheet_id"`
}

type syncRequest struct {
	Direction string `json:"direction"`
}

// spreadsheetURL renders the browser URL for a connected sheet, or nil so
// the JSON field comes out as null.
func spreadsheetURL(id string) *string {
	if id == "" {
		return nil
	}
	u := sheets.SpreadsheetURL(id)
	return &u
}

// handleHealth reports server liveness and the sync daemon's counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":           "ok",
		"sheets_connected": s.tracker.Connected(),
		"sheet_id":         nil,
	}
	if id := s.tracker.SpreadsheetID(); id != "" {
		resp["sheet_id"] = id
	}
	if s.daemon != nil {
		resp["sync"] = s.daemon.Status()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"spreadsheet_id":   nil,
		"sheets_connected": s.tracker.Connected(),
	}
	if id := s.tracker.SpreadsheetID(); id != "" {
		resp["spreadsheet_id"] = id
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleConfigPost connects a spreadsheet and runs the first sync. A sheet
// that cannot be reached leaves the previous configuration in place.
func (s *Server) handleConfigPost(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SpreadsheetID == "" {
		s.writeError(w, http.StatusBadRequest, "spreadsheet_id is required")
		return
	}

	if err := s.tracker.Configure(r.Context(), req.SpreadsheetID); err != nil {
		if tracker.IsMirror(err) {
			s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "Could not connect to the sheet. Make sure it's shared with the service account.",
			})
			return
		}
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"message":         "Google Sheet connected and synced!",
		"spreadsheet_url": sheets.SpreadsheetURL(req.SpreadsheetID),
	})
}

// handleInit pulls the freshest copy of the grid: from the spreadsheet when
// one is connected, from local storage otherwise.
func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	fromRemote, err := s.tracker.InitData(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	message := "Loaded from local storage"
	if fromRemote {
		message = "Synced from Google Sheets!"
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"message":          message,
		"sheets_connected": s.tracker.Connected(),
		"spreadsheet_url":  spreadsheetURL(s.tracker.SpreadsheetID()),
	})
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	g, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	habits := make([]habitView, 0, len(g.Habits))
	for _, h := range g.Habits {
		habits = append(habits, habitView{
			Name:        h.Name,
			DailyStatus: h.DailyStatus,
			HabitStats:  grid.Compute(h, g.Dates),
		})
	}
	s.writeJSON(w, http.StatusOK, habitsResponse{
		Habits:          habits,
		Dates:           g.Dates,
		SheetsConnected: s.tracker.Connected(),
		SpreadsheetURL:  spreadsheetURL(s.tracker.SpreadsheetID()),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.HabitName == "" || req.Date == "" {
		s.writeError(w, http.StatusBadRequest, "habit_name and date are required")
		return
	}

	synced, err := s.tracker.UpdateStatus(r.Context(), req.HabitName, req.Date, grid.Status(req.Status))
	if err != nil {
		if tracker.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Habit '%s' not found", req.HabitName))
			return
		}
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"message":          fmt.Sprintf("Updated %s for %s", req.HabitName, req.Date),
		"synced_to_sheets": synced,
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "Habit name is required")
		return
	}

	if _, err := s.tracker.AddHabit(r.Context(), req.Name, req.Emoji); err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Added new habit: %s", req.Name),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.HabitName == "" {
		s.writeError(w, http.StatusBadRequest, "Habit name is required")
		return
	}

	if _, err := s.tracker.DeleteHabit(r.Context(), req.HabitName); err != nil {
		if tracker.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Habit '%s' not found", req.HabitName))
			return
		}
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Deleted habit: %s", req.HabitName),
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := parseJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OldName == "" || strings.TrimSpace(req.NewName) == "" {
		s.writeError(w, http.StatusBadRequest, "old_name and new_name are required")
		return
	}

	if _, err := s.tracker.EditHabit(r.Context(), req.OldName, req.NewName, req.Emoji); err != nil {
		if tracker.IsNotFound(err) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("Habit '%s' not found", req.OldName))
			return
		}
		s.handleError(w, err)
		return
	}

	emoji := req.Emoji
	if emoji == "" {
		emoji = grid.DefaultEmoji
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Updated habit to: %s %s", emoji, req.NewName),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.tracker.Stats(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, struct {
		grid.Summary
		SheetsConnected bool `json:"sheets_connected"`
	}{summary, s.tracker.Connected()})
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.PathValue("num"))
	if err != nil || week < 1 {
		s.writeError(w, http.StatusBadRequest, "week must be a positive integer")
		return
	}

	report, err := s.tracker.Week(r.Context(), week)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleSync triggers an explicit sync. The body is optional; an absent
// direction means both ways.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := parseJSON(r, &req); err != nil && err != io.EOF {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	direction := req.Direction
	if direction == "" {
		direction = tracker.DirectionBoth
	}

	if err := s.tracker.Sync(r.Context(), direction); err != nil {
		if tracker.IsNotConnected(err) {
			s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "Google Sheets not connected",
			})
			return
		}
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Sync completed (%s)", direction),
	})
}

func (s *Server) handleSheetsStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected":      s.tracker.Connected(),
		"spreadsheet_id": s.tracker.SpreadsheetID(),
	})
}

// handleRoot returns basic server information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Daily Routine Tracker</title>
</head>
<body>
    <h1>Daily Routine Tracker API</h1>
    <p>Habit grid: <a href="/api/habits">/api/habits</a></p>
    <p>Health check: <a href="/api/health">/api/health</a></p>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Connect a WebSocket client to receive live grid updates.</p>
</body>
</html>`, r.Host)
}
