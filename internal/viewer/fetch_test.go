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
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/locus/internal/models"
)

func locationsHandler(fixes []models.Fix) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.LocationsResponse{
			Status:     models.StatusSuccess,
			Locations:  fixes,
			TotalCount: len(fixes),
		})
	}
}

func writeStoreFile(t *testing.T, fixes []models.Fix) string {
	t.Helper()

	data, err := json.Marshal(fixes)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFetchPrefersServer(t *testing.T) {
	serverFixes := []models.Fix{{Latitude: 1, Longitude: 2, Timestamp: "from-server"}}
	srv := httptest.NewServer(locationsHandler(serverFixes))
	defer srv.Close()

	filePath := writeStoreFile(t, []models.Fix{{Timestamp: "from-file"}})
	f := NewFetcher(srv.URL, filePath)

	fixes, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, fixes, 1)
	assert.Equal(t, "from-server", fixes[0].Timestamp)
}

func TestFetchFallsBackToFile(t *testing.T) {
	filePath := writeStoreFile(t, []models.Fix{{Latitude: 5, Longitude: 6, Timestamp: "from-file"}})
	f := NewFetcher("http://127.0.0.1:1", filePath)

	fixes, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, fixes, 1)
	assert.Equal(t, "from-file", fixes[0].Timestamp)
}

func TestFetchFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	filePath := writeStoreFile(t, []models.Fix{{Timestamp: "from-file"}})
	f := NewFetcher(srv.URL, filePath)

	fixes, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-file", fixes[0].Timestamp)
}

func TestFetchNoDataWhenBothFail(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1", filepath.Join(t.TempDir(), "absent.json"))

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFetchBreakerOpensAfterRepeatedFailures(t *testing.T) {
	filePath := writeStoreFile(t, []models.Fix{{Timestamp: "from-file"}})
	f := NewFetcher("http://127.0.0.1:1", filePath)

	for i := 0; i < 5; i++ {
		_, err := f.Fetch(context.Background())
		require.NoError(t, err)
	}

	// After three consecutive failures the breaker rejects immediately,
	// without attempting a connection.
	_, err := f.breaker.Execute(func() ([]models.Fix, error) {
		t.Fatal("breaker should be open, call must not run")
		return nil, nil
	})
	assert.Error(t, err)
}

func TestFetchCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))

	f := NewFetcher("http://127.0.0.1:1", path)
	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}
