// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package websocket implements the live fix feed. Connected clients receive
// an event for every accepted fix and for store clears, so a dashboard can
// follow ingest without polling GET /locations.
package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/metrics"
	"github.com/tomtom215/locus/internal/models"
)

// Event is the envelope for all messages pushed to clients.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Event types sent by the hub.
const (
	EventFix     = "fix"
	EventCleared = "cleared"
	EventStats   = "stats"
)

// Hub manages the set of connected clients and fan-out of events. The
// client map is owned by the run loop; all mutation goes through channels.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// done is closed when the run loop exits, releasing any client
	// goroutine blocked on register or unregister.
	done chan struct{}

	connected atomic.Int64
}

// NewHub creates a hub. Call RunWithContext before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// RunWithContext processes registrations and broadcasts until ctx is
// canceled, then closes every client connection.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.connected.Store(0)
			metrics.WebSocketConnections.Set(0)
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = struct{}{}
			n := h.connected.Add(1)
			metrics.WebSocketConnections.Set(float64(n))
			logging.Debug().Int64("clients", n).Msg("websocket client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				n := h.connected.Add(-1)
				metrics.WebSocketConnections.Set(float64(n))
				logging.Debug().Int64("clients", n).Msg("websocket client disconnected")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
					metrics.WebSocketMessagesSent.Inc()
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
					n := h.connected.Add(-1)
					metrics.WebSocketConnections.Set(float64(n))
				}
			}
		}
	}
}

// String implements suture's service naming for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// add attaches a client, or reports false when the hub has stopped.
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// remove detaches a client; a stopped hub has already dropped everyone.
func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// BroadcastFix pushes an accepted fix to all connected clients.
func (h *Hub) BroadcastFix(fix models.Fix) {
	h.broadcastEvent(Event{
		Type:      EventFix,
		Data:      fix,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// BroadcastCleared notifies clients that the store was emptied.
func (h *Hub) BroadcastCleared() {
	h.broadcastEvent(Event{
		Type:      EventCleared,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// BroadcastStats pushes the current fix count to all connected clients.
func (h *Hub) BroadcastStats(totalFixes int) {
	h.broadcastEvent(Event{
		Type:      EventStats,
		Data:      map[string]int{"total_locations": totalFixes},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) broadcastEvent(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logging.Err(err).Str("type", ev.Type).Msg("failed to marshal websocket event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("type", ev.Type).Msg("websocket broadcast queue full, dropping event")
	}
}
