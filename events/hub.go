// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

const (
	clientBuffer = 32
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// subscriber is one websocket connection. A nil pollID receives every poll.
type subscriber struct {
	send   chan []byte
	pollID *uint64
}

// Hub fans committed vote events out to websocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
	}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[s] = struct{}{}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[s]; ok {
		delete(h.clients, s)
		close(s.send)
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit broadcasts the event. Slow subscribers miss it rather than block the vote.
func (h *Hub) Emit(ctx context.Context, event models.VoteCastEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode vote event", "error", err, "event_id", event.ID)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.clients {
		if s.pollID != nil && *s.pollID != event.PollID {
			continue
		}
		select {
		case s.send <- data:
		default:
			slog.Warn("dropping vote event for slow subscriber", "event_id", event.ID, "poll_id", event.PollID)
		}
	}
}

// ServeHTTP upgrades GET /events to a websocket. An optional poll_id query
// parameter limits the stream to one poll.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := &subscriber{send: make(chan []byte, clientBuffer)}

	if raw := r.URL.Query().Get("poll_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid poll_id", http.StatusBadRequest)
			return
		}
		s.pollID = &id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.register(s)
	slog.Info("event subscriber connected", "remote", r.RemoteAddr, "subscribers", h.Subscribers())

	go h.readLoop(conn, s)
	h.writeLoop(conn, s)
}

// readLoop discards client messages and unregisters on disconnect.
func (h *Hub) readLoop(conn *websocket.Conn, s *subscriber) {
	defer h.unregister(s)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, s *subscriber) {
	defer conn.Close()
	for data := range s.send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.unregister(s)
			break
		}
	}
	slog.Info("event subscriber disconnected", "subscribers", h.Subscribers())
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.clients {
		delete(h.clients, s)
		close(s.send)
	}
}

var _ engine.EventSink = (*Hub)(nil)
