// Package server exposes the habit tracker over HTTP.
//
// The server is a thin JSON layer over the tracker service: every endpoint
// parses its request, calls one tracker operation, and renders the result.
// Live updates flow through a websocket hub that implements the tracker's
// Events interface, so connected browsers see grid changes and sync results
// as they happen.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nishantagraw/daily-routine-tracker/internal/daemon"
	"github.com/nishantagraw/daily-routine-tracker/internal/tracker"
)

// Config holds server configuration.
type Config struct {
	// Host and Port form the listen address. Port 0 picks a free port,
	// which the tests rely on.
	Host string
	Port int

	// Tracker serves every request. Required.
	Tracker *tracker.Tracker

	// Daemon, when set, contributes its sync status to /api/health.
	Daemon *daemon.Daemon

	// Hub, when set, is started with the server and serves /ws.
	Hub *Hub

	// Logger for server activity (default: stderr logger).
	Logger *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	tracker *tracker.Tracker
	daemon  *daemon.Daemon
	hub     *Hub

	wg     sync.WaitGroup
	logger *log.Logger
}

// NewServer creates the API server. Use Start to begin serving.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Tracker == nil {
		return nil, fmt.Errorf("tracker cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[server] ", log.LstdFlags)
	}

	return &Server{
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		tracker: cfg.Tracker,
		daemon:  cfg.Daemon,
		hub:     cfg.Hub,
		logger:  cfg.Logger,
	}, nil
}

// Start binds the listener and begins serving. It returns once the server is
// accepting connections.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	if s.hub != nil {
		s.hub.Start()
	}

	s.server = &http.Server{
		Handler:      s.withLogging(withCORS(s.routes())),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("API server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop() error {
	s.logger.Println("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.wg.Wait()

	if s.hub != nil {
		s.hub.Stop()
	}

	s.logger.Println("API server stopped")
	return nil
}

// Addr returns the bound listen address, useful with Port 0.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// routes builds the endpoint table.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/config", s.handleConfigGet)
	mux.HandleFunc("POST /api/config", s.handleConfigPost)
	mux.HandleFunc("POST /api/init", s.handleInit)

	mux.HandleFunc("GET /api/habits", s.handleHabits)
	mux.HandleFunc("POST /api/habits/update", s.handleUpdate)
	mux.HandleFunc("POST /api/habits/add", s.handleAdd)
	mux.HandleFunc("POST /api/habits/delete", s.handleDelete)
	mux.HandleFunc("POST /api/habits/edit", s.handleEdit)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/week/{num}", s.handleWeek)

	mux.HandleFunc("POST /api/sync", s.handleSync)
	mux.HandleFunc("GET /api/sheets/status", s.handleSheetsStatus)

	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.ServeWS)
	}
	mux.HandleFunc("GET /", s.handleRoot)

	return mux
}
