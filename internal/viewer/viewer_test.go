// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/locus/internal/models"
)

// mutableServer serves a fix list that tests can swap between requests.
type mutableServer struct {
	mu    sync.Mutex
	fixes []models.Fix
}

func (m *mutableServer) set(fixes []models.Fix) {
	m.mu.Lock()
	m.fixes = fixes
	m.mu.Unlock()
}

func (m *mutableServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		fixes := m.fixes
		m.mu.Unlock()
		json.NewEncoder(w).Encode(models.LocationsResponse{
			Status:     models.StatusSuccess,
			Locations:  fixes,
			TotalCount: len(fixes),
		})
	}
}

func TestRunOnceWritesMapDocument(t *testing.T) {
	ms := &mutableServer{fixes: []models.Fix{{Latitude: 1, Longitude: 2, Timestamp: "t1"}}}
	srv := httptest.NewServer(ms.handler())
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "map.html")
	v := New(Options{
		ServerURL:  srv.URL,
		FilePath:   filepath.Join(t.TempDir(), "locations.json"),
		OutputPath: output,
	})

	require.NoError(t, v.RunOnce(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total points: 1")
}

func TestRunOnceRendersEmptyMapWhenNoData(t *testing.T) {
	output := filepath.Join(t.TempDir(), "map.html")
	v := New(Options{
		ServerURL:  "http://127.0.0.1:1",
		FilePath:   filepath.Join(t.TempDir(), "absent.json"),
		OutputPath: output,
	})

	require.NoError(t, v.RunOnce(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No location data yet")
}

func TestRefreshSkipsRenderWhenCountUnchanged(t *testing.T) {
	ms := &mutableServer{fixes: []models.Fix{{Latitude: 1, Longitude: 2, Timestamp: "t1"}}}
	srv := httptest.NewServer(ms.handler())
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "map.html")
	v := New(Options{
		ServerURL:  srv.URL,
		FilePath:   filepath.Join(t.TempDir(), "locations.json"),
		OutputPath: output,
	})

	require.NoError(t, v.refresh(context.Background()))

	// Same count again: the output must not be rewritten.
	require.NoError(t, os.Remove(output))
	require.NoError(t, v.refresh(context.Background()))
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))

	// New fix arrives: refresh renders again.
	ms.set([]models.Fix{
		{Latitude: 1, Longitude: 2, Timestamp: "t1"},
		{Latitude: 3, Longitude: 4, Timestamp: "t2"},
	})
	require.NoError(t, v.refresh(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total points: 2")
}

func TestRunLiveStopsOnContextCancel(t *testing.T) {
	ms := &mutableServer{}
	srv := httptest.NewServer(ms.handler())
	defer srv.Close()

	v := New(Options{
		ServerURL:  srv.URL,
		FilePath:   filepath.Join(t.TempDir(), "locations.json"),
		OutputPath: filepath.Join(t.TempDir(), "map.html"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, v.RunLive(ctx))
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, writeAtomic(path, []byte("first")))
	require.NoError(t, writeAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
