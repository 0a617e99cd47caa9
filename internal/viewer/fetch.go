// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package viewer fetches stored fixes and renders them as a self-contained
// Leaflet map document, either once or in a polling live mode.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/models"
)

// ErrNoData is returned by Fetch when neither the server nor the local
// file yields any fixes.
var ErrNoData = errors.New("viewer: no location data available")

// fetchTimeout bounds a single HTTP fetch so live mode cannot hang on a
// stalled server.
const fetchTimeout = 5 * time.Second

// Fetcher retrieves fixes from the ingest server, falling back to the
// store file. Server calls go through a circuit breaker so a dead server
// short-circuits to the file immediately instead of timing out every tick.
type Fetcher struct {
	serverURL string
	filePath  string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]models.Fix]
}

// NewFetcher creates a fetcher for the given server base URL and fallback
// file path.
func NewFetcher(serverURL, filePath string) *Fetcher {
	settings := gobreaker.Settings{
		Name:        "locations-fetch",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Fetcher{
		serverURL: serverURL,
		filePath:  filePath,
		client:    &http.Client{Timeout: fetchTimeout},
		breaker:   gobreaker.NewCircuitBreaker[[]models.Fix](settings),
	}
}

// Fetch returns the current fixes, preferring the server and falling back
// to the local file. It returns ErrNoData when both sources fail.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Fix, error) {
	fixes, serverErr := f.breaker.Execute(func() ([]models.Fix, error) {
		return f.fetchHTTP(ctx)
	})
	if serverErr == nil {
		return fixes, nil
	}

	logging.Warn().Err(serverErr).Str("file", f.filePath).Msg("server fetch failed, trying local file")

	fixes, fileErr := f.readFile()
	if fileErr != nil {
		return nil, fmt.Errorf("%w (server: %v; file: %v)", ErrNoData, serverErr, fileErr)
	}
	return fixes, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context) ([]models.Fix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.serverURL+"/locations", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request locations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var body models.LocationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return body.Locations, nil
}

func (f *Fetcher) readFile() ([]models.Fix, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.filePath, err)
	}

	var fixes []models.Fix
	if err := json.Unmarshal(data, &fixes); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.filePath, err)
	}
	return fixes, nil
}
