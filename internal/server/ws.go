package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/beyondbrush/internal/app"
	"github.com/gorilla/websocket"
	"pkt.systems/pslog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// TelemetryHandler pushes pipeline telemetry to websocket clients.
type TelemetryHandler struct {
	source   func() app.Telemetry
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewTelemetryHandler creates a handler polling source every interval.
func NewTelemetryHandler(source func() app.Telemetry, interval time.Duration) *TelemetryHandler {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &TelemetryHandler{
		source:   source,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *TelemetryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := pslog.Ctx(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Send the current state right away so clients don't wait a tick.
	if msg, err := json.Marshal(h.source()); err == nil {
		h.mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, msg)
		h.mu.Unlock()
		if err != nil {
			return
		}
	}

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *TelemetryHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts telemetry until ctx is cancelled.
func (h *TelemetryHandler) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			last = nil
			continue
		}
		msg, err := json.Marshal(h.source())
		if err != nil || string(msg) == string(last) {
			continue
		}
		last = msg
		h.broadcast(msg)
	}
}

// broadcast writes msg to every client. Writes are serialised by the
// write lock since a websocket conn supports one concurrent writer.
func (h *TelemetryHandler) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *TelemetryHandler) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}
