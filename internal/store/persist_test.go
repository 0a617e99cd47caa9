// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/locus/internal/models"
)

// waitForFile polls until the store file holds want fixes or the deadline
// passes.
func waitForFile(t *testing.T, path string, want int) []models.Fix {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil {
			var fixes []models.Fix
			if json.Unmarshal(data, &fixes) == nil && len(fixes) == want {
				return fixes
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("store file never reached %d fixes", want)
	return nil
}

func TestPersisterFlushesOnDirty(t *testing.T) {
	s := newTestStore(t, 10)
	p := NewPersister(s, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		p.Serve(ctx)
		close(done)
	}()

	s.Append(fix(1, 2, "a"))
	fixes := waitForFile(t, s.path, 1)
	assert.Equal(t, 1.0, fixes[0].Latitude)

	cancel()
	<-done
}

func TestPersisterFinalFlushOnShutdown(t *testing.T) {
	s := newTestStore(t, 10)
	p := NewPersister(s, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	// Append without waiting for the dirty drain, then stop the service.
	s.Append(fix(5, 6, "z"))
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)

	data, readErr := os.ReadFile(s.path)
	require.NoError(t, readErr)
	var fixes []models.Fix
	require.NoError(t, json.Unmarshal(data, &fixes))
	require.Len(t, fixes, 1)
	assert.Equal(t, "z", fixes[0].Timestamp)
}

func TestPersisterDefaultsInterval(t *testing.T) {
	p := NewPersister(newTestStore(t, 10), 0)
	assert.Equal(t, DefaultFlushInterval, p.interval)
	assert.Equal(t, "store-persister", p.String())
}
