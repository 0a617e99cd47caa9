// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/metrics"
	"github.com/tomtom215/locus/internal/models"
	"github.com/tomtom215/locus/internal/store"
	"github.com/tomtom215/locus/internal/validation"
	ws "github.com/tomtom215/locus/internal/websocket"
)

// maxBodySize bounds POST /location request bodies.
const maxBodySize = 1 << 20 // 1 MiB

// Handlers carries the dependencies of all HTTP handlers.
type Handlers struct {
	store *store.Store
	hub   *ws.Hub
}

// NewHandlers creates the handler set for the given store and hub. The hub
// may be nil in tests; broadcasts are then skipped.
func NewHandlers(s *store.Store, hub *ws.Hub) *Handlers {
	return &Handlers{store: s, hub: hub}
}

// SubmitLocation handles POST /location.
func (h *Handlers) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var sub models.FixSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		metrics.FixesRejected.Inc()
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "request body is not valid JSON", nil)
		return
	}

	if fieldErrs := validation.Validate(&sub); fieldErrs != nil {
		metrics.FixesRejected.Inc()
		respondError(w, r, http.StatusBadRequest, CodeValidationError, "invalid location data", fieldErrs)
		return
	}

	fix := sub.ToFix(time.Now().UTC())
	count := h.store.Append(fix)
	metrics.FixesReceived.Inc()

	if h.hub != nil {
		h.hub.BroadcastFix(fix)
		h.hub.BroadcastStats(count)
	}

	logging.Info().
		Float64("latitude", fix.Latitude).
		Float64("longitude", fix.Longitude).
		Int("total", count).
		Msg("location received")

	respondJSON(w, r, http.StatusOK, models.SubmitResponse{
		Status:         models.StatusSuccess,
		Message:        "Location received and stored",
		TotalLocations: count,
	})
}

// Locations handles GET /locations.
func (h *Handlers) Locations(w http.ResponseWriter, r *http.Request) {
	fixes := h.store.Snapshot()
	if fixes == nil {
		fixes = []models.Fix{}
	}

	respondJSON(w, r, http.StatusOK, models.LocationsResponse{
		Status:     models.StatusSuccess,
		Locations:  fixes,
		TotalCount: len(fixes),
	})
}

// LatestLocation handles GET /locations/latest.
func (h *Handlers) LatestLocation(w http.ResponseWriter, r *http.Request) {
	fix, err := h.store.Latest()
	if err != nil {
		respondJSON(w, r, http.StatusNotFound, struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}{
			Status:  models.StatusNoData,
			Message: "No locations available",
		})
		return
	}

	respondJSON(w, r, http.StatusOK, models.LatestResponse{
		Status:   models.StatusSuccess,
		Location: fix,
	})
}

// ClearLocations handles POST /locations/clear. The cleared state is
// persisted before responding so a restart cannot resurrect old fixes.
func (h *Handlers) ClearLocations(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		respondError(w, r, http.StatusInternalServerError, CodePersistenceError,
			"failed to persist cleared state", nil)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastCleared()
	}

	logging.Info().Msg("all locations cleared")
	respondJSON(w, r, http.StatusOK, models.ClearResponse{
		Status:  models.StatusSuccess,
		Message: "All locations cleared",
	})
}

// Status handles GET /status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	resp := models.StatusResponse{
		Status:         models.StatusRunning,
		TotalLocations: h.store.Count(),
		ServerTime:     time.Now().UTC().Format(time.RFC3339),
	}
	if fix, err := h.store.Latest(); err == nil {
		ts := fix.Timestamp
		resp.LatestLocationTime = &ts
	}

	respondJSON(w, r, http.StatusOK, resp)
}

// Index handles GET / with a short service description.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, models.ServiceInfo{
		Service: "Locus GPS Tracking Server",
		Status:  models.StatusRunning,
		Endpoints: map[string]string{
			"POST /location":        "Submit a GPS fix",
			"GET /locations":        "List all stored fixes",
			"GET /locations/latest": "Most recent fix",
			"POST /locations/clear": "Clear all stored fixes",
			"GET /status":           "Server status",
			"GET /healthz":          "Liveness probe",
			"GET /metrics":          "Prometheus metrics",
			"GET /ws":               "Live fix feed (WebSocket)",
		},
	})
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// WebSocket handles GET /ws, upgrading to the live fix feed. Without a
// running hub the feed is reported unavailable instead of panicking.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable,
			"live feed is not available", nil)
		return
	}
	ws.ServeWS(h.hub, w, r)
}
