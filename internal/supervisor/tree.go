// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package supervisor wires the long-running parts of locusd (HTTP server,
// WebSocket hub, store persister) into a suture supervision tree so a
// crashing service is restarted with backoff instead of taking the daemon
// down.
package supervisor

import (
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/locus/internal/logging"
)

// NewTree creates the root supervisor. Supervision events are logged
// through the global zerolog logger via the slog adapter.
func NewTree(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook:        (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook(),
		FailureDecay:     30,
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
	})
}
