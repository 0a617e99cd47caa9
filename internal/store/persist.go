// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package store

import (
	"context"
	"time"

	"github.com/tomtom215/locus/internal/logging"
)

// DefaultFlushInterval is the periodic safety flush when none is configured.
const DefaultFlushInterval = 5 * time.Minute

// Persister is the single writer of the store file. It runs under the
// supervision tree and drains the store's dirty channel, so any number of
// concurrent appends collapse into one write of the latest snapshot.
// Persist failures are logged and do not stop the service; memory remains
// authoritative.
type Persister struct {
	store    *Store
	interval time.Duration
}

// NewPersister creates a persister flushing the store on dirty
// notifications and at least every interval.
func NewPersister(s *Store, interval time.Duration) *Persister {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Persister{store: s, interval: interval}
}

// Serve implements suture.Service.
func (p *Persister) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush so a clean shutdown loses nothing.
			if err := p.store.SaveNow(); err != nil {
				logging.Err(err).Msg("final location save failed")
			}
			return ctx.Err()
		case <-p.store.Dirty():
			if err := p.store.SaveNow(); err != nil {
				logging.Err(err).Msg("location save failed")
			}
		case <-ticker.C:
			if err := p.store.SaveNow(); err != nil {
				logging.Err(err).Msg("periodic location save failed")
			}
		}
	}
}

// String implements suture's service naming for supervisor logs.
func (p *Persister) String() string {
	return "store-persister"
}
