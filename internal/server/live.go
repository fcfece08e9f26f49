package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nmehta/gonio/internal/session"
)

// writeWait bounds a single WebSocket write so one stalled dashboard tab
// cannot hold up the measurement loop.
const writeWait = 5 * time.Second

// The dashboard is served by this same process, so cross-origin checks
// would only lock out local tooling.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// LiveHandler streams session updates to connected dashboards. It hooks the
// controller's update callback, so clients receive one message per processed
// detection cycle rather than a fixed-rate poll.
type LiveHandler struct {
	controller *session.Controller
	clients    map[*websocket.Conn]bool
	mu         sync.RWMutex
}

// NewLiveHandler creates a LiveHandler and registers it as the controller's
// update callback. Call it before the first session starts.
func NewLiveHandler(c *session.Controller) *LiveHandler {
	h := &LiveHandler{
		controller: c,
		clients:    make(map[*websocket.Conn]bool),
	}
	c.OnUpdate = h.push
	return h
}

// ServeHTTP upgrades the connection and replays the latest update so a
// dashboard joining mid-session shows the current angles immediately.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade /api/live: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	if snap := h.controller.Snapshot(); snap.Status != "" {
		if msg, err := json.Marshal(snap); err == nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.TextMessage, msg)
		}
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Block on reads; an error means the client went away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// push fans one update out to every client. It runs on the pipeline
// goroutine; a client whose write fails is left for its read loop to
// clean up.
func (h *LiveHandler) push(u session.Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(u)
	if err != nil {
		return
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
