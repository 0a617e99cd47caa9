// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/locus/internal/models"
)

// startHub runs the hub loop and returns a cancel that waits for exit.
func startHub(t *testing.T) (*Hub, func()) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.RunWithContext(ctx)
		close(done)
	}()

	return hub, func() {
		cancel()
		<-done
	}
}

// recvEvent reads one event from a client send queue.
func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case msg := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubBroadcastsFixToClients(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	client := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	hub.register <- client

	hub.BroadcastFix(models.Fix{Latitude: 13.0827, Longitude: 80.2707, Timestamp: "t1"})

	ev := recvEvent(t, client)
	assert.Equal(t, EventFix, ev.Type)

	data, ok := ev.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 13.0827, data["latitude"])
}

func TestHubBroadcastsClearedEvent(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	client := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	hub.register <- client

	hub.BroadcastCleared()

	ev := recvEvent(t, client)
	assert.Equal(t, EventCleared, ev.Type)
	assert.NotEmpty(t, ev.Timestamp)
}

func TestHubTracksClientCount(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	c1 := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	c2 := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	hub.register <- c1
	hub.register <- c2

	// Registration is processed by the hub goroutine; poll the counter.
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 },
		time.Second, 10*time.Millisecond)

	hub.unregister <- c1
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	// Unbuffered send queue: the first broadcast cannot be delivered.
	slow := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastStats(5)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHubShutdownUnblocksClientTeardown(t *testing.T) {
	hub, stop := startHub(t)

	client := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	require.True(t, hub.add(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	stop()

	// A connection goroutine detaching after shutdown must not block.
	finished := make(chan struct{})
	go func() {
		hub.remove(client)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("remove blocked after hub shutdown")
	}

	// Late registrations are refused instead of hanging.
	late := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	assert.False(t, hub.add(late))
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, stop := startHub(t)

	client := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	require.True(t, hub.add(client))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	stop()

	_, open := <-client.send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientCount())
}
