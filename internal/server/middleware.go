package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nishantagraw/daily-routine-tracker/internal/storage"
	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"
)

// withLogging wraps a handler with request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s from %s (%dms)",
			r.Method, r.URL.Path, r.RemoteAddr, time.Since(start).Milliseconds())
	})
}

// withCORS allows cross-origin requests from the dashboard frontend.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Failed to encode response: %v", err)
	}
}

// writeError writes a JSON error body with the given status.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps a tracker error onto an HTTP status and renders it.
// Handlers call this after their own special cases (missing fields, legacy
// message formats) have been dealt with.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("Request failed: %v", err)
	}
	s.writeError(w, status, err.Error())
}

// errorStatus picks the HTTP status for a tracker error.
func errorStatus(err error) int {
	switch {
	case tracker.IsValidation(err), tracker.IsNotConnected(err):
		return http.StatusBadRequest
	case tracker.IsNotFound(err):
		return http.StatusNotFound
	case tracker.IsMirror(err):
		return http.StatusBadGateway
	case storage.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseJSON decodes the request body into v.
func parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
