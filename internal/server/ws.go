package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

// MessageType defines the type of a live update message.
type MessageType string

const (
	// MessageTypeGridUpdate indicates the habit grid changed.
	MessageTypeGridUpdate MessageType = "grid_update"

	// MessageTypeSyncComplete indicates a spreadsheet sync finished.
	MessageTypeSyncComplete MessageType = "sync_complete"

	// MessageTypeStats carries summary statistics. Also sent as the
	// welcome message on connect.
	MessageTypeStats MessageType = "stats_update"
)

// Message represents a broadcast frame sent to websocket clients.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// GridUpdateData describes a grid change.
type GridUpdateData struct {
	Reason  string       `json:"reason"`
	Summary grid.Summary `json:"summary"`
}

// SyncCompleteData describes a finished sync attempt.
type SyncCompleteData struct {
	Direction string `json:"direction"`
	Error     string `json:"error,omitempty"`
}

// Hub fans live updates out to connected websocket clients. It implements
// the tracker's Events interface, so every saved grid change and sync result
// reaches browsers as it happens.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewHub creates a Hub. Call Start before broadcasting.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start launches the broadcast loop.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop disconnects all clients and stops the broadcast loop.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Broadcast queues a message for all connected clients. Messages are dropped
// when the queue is full rather than blocking the caller.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
		return
	default:
		h.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

// ClientCount returns the current number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// GridChanged implements the tracker Events interface.
func (h *Hub) GridChanged(g *grid.Grid, reason string) {
	data, err := json.Marshal(GridUpdateData{Reason: reason, Summary: grid.Summarize(g)})
	if err != nil {
		return
	}
	h.Broadcast(Message{Type: MessageTypeGridUpdate, Data: data})
}

// SyncCompleted implements the tracker Events interface.
func (h *Hub) SyncCompleted(direction string, err error) {
	payload := SyncCompleteData{Direction: direction}
	if err != nil {
		payload.Error = err.Error()
	}
	data, merr := json.Marshal(payload)
	if merr != nil {
		return
	}
	h.Broadcast(Message{Type: MessageTypeSyncComplete, Data: data})
}

// ServeWS upgrades an HTTP connection and registers the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Printf("Client connected (total: %d)", clientCount)

	// Welcome frame so clients can confirm the stream is live.
	welcome := Message{Type: MessageTypeStats, Timestamp: time.Now()}
	welcomeData, _ := json.Marshal(welcome)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, welcomeData)
	cancel()

	go h.readLoop(conn)
}

// broadcastLoop delivers queued messages to every client.
func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg := <-h.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			// Write outside the read lock so a slow client cannot
			// stall registrations.
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					h.logger.Printf("Failed to send to client: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

// readLoop drains client frames to detect disconnects. Incoming messages are
// not processed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

// removeClient drops a client connection.
func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		clientCount := len(h.clients)
		h.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Printf("Client disconnected (total: %d)", clientCount)
	} else {
		h.clientsMu.Unlock()
	}
}
