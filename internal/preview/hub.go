package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeTimeout = 200 * time.Millisecond

// Hub streams snapshots to websocket clients.
type Hub struct {
	log zerolog.Logger
	up  websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	last    Snapshot
}

// NewHub returns a hub with no clients, logging to log.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		up:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients: map[*websocket.Conn]bool{},
	}
}

// HandleFramesWS upgrades the request and streams snapshots to it until the
// client goes away.
func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("upgrade")
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Int("clients", n).Msg("preview client connected")

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports the last snapshot as JSON.
func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"clients": len(h.clients),
		"board":   h.last.Board,
		"ticks":   h.last.Ticks,
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler returns the preview routes: /frames (websocket) and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends s to every client. Clients that cannot keep up are skipped.
func (h *Hub) Broadcast(s Snapshot) {
	b, err := json.Marshal(s)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal snapshot")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = s
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
		}
	}
}

// Run broadcasts a snapshot of in every period until ctx is done.
func (h *Hub) Run(ctx context.Context, in *Integrator, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Broadcast(in.Snapshot())
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
}
