// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package models

// Response status values. The "no_data" status is used by the latest-fix
// endpoint when the store is empty, matching what the viewer expects.
const (
	StatusSuccess = "success"
	StatusRunning = "running"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

// SubmitResponse is returned by POST /location on success.
type SubmitResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	TotalLocations int    `json:"total_locations"`
}

// LocationsResponse is returned by GET /locations.
type LocationsResponse struct {
	Status     string `json:"status"`
	Locations  []Fix  `json:"locations"`
	TotalCount int    `json:"total_count"`
}

// LatestResponse is returned by GET /locations/latest when the store holds
// at least one fix.
type LatestResponse struct {
	Status   string `json:"status"`
	Location Fix    `json:"location"`
}

// ClearResponse is returned by POST /locations/clear.
type ClearResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Status             string  `json:"status"`
	TotalLocations     int     `json:"total_locations"`
	LatestLocationTime *string `json:"latest_location_time"`
	ServerTime         string  `json:"server_time"`
}

// ServiceInfo is returned by GET / and describes the endpoint surface.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// APIError carries a machine-readable error code alongside the message.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorResponse is the error envelope for all non-2xx API responses.
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *APIError `json:"error"`
}
