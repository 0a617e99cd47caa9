// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package api implements the locusd HTTP surface: fix ingest, listing,
// status, the live WebSocket feed, and operational endpoints.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/middleware"
	"github.com/tomtom215/locus/internal/models"
)

// Machine-readable error codes returned in the error envelope.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodePersistenceError = "PERSISTENCE_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// respondJSON writes payload as JSON with the given status code.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}

// respondError writes the standard error envelope, tagging it with the
// request ID so clients can quote it when reporting problems.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	resp := models.ErrorResponse{
		Status: models.StatusError,
		Error: &models.APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(r.Context()),
		},
	}

	if status >= http.StatusInternalServerError {
		logging.Error().
			Str("request_id", resp.Error.RequestID).
			Str("path", r.URL.Path).
			Str("code", code).
			Msg(message)
	}

	respondJSON(w, r, status, resp)
}
