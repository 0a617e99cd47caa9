// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package services

import (
	"context"

	"github.com/tomtom215/locus/internal/websocket"
)

// WebSocketHubService runs the live-feed hub under the supervision tree.
type WebSocketHubService struct {
	hub *websocket.Hub
}

// NewWebSocketHubService wraps hub.
func NewWebSocketHubService(hub *websocket.Hub) *WebSocketHubService {
	return &WebSocketHubService{hub: hub}
}

// Serve implements suture.Service.
func (s *WebSocketHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements suture's service naming for supervisor logs.
func (s *WebSocketHubService) String() string {
	return "websocket-hub"
}
