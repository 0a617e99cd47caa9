// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package store holds received GPS fixes in memory and mirrors them to a
// JSON file.
//
// The in-memory slice is authoritative. Appends mark the store dirty on a
// single-slot channel drained by the Persister, so bursts of writes coalesce
// into one disk write of the latest snapshot. Clear persists synchronously
// so an explicit reset is durable before the API responds.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/metrics"
	"github.com/tomtom215/locus/internal/models"
)

// ErrEmpty is returned by Latest when the store holds no fixes.
var ErrEmpty = errors.New("store: no fixes")

// DefaultMaxFixes caps the store when no limit is configured.
const DefaultMaxFixes = 1000

// Store is a capped, insertion-ordered collection of fixes backed by a
// JSON file. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	fixes []models.Fix

	path string
	max  int

	// dirty carries at most one pending persistence notification.
	dirty chan struct{}
}

// New creates a store persisting to path, holding at most max fixes.
// A max of zero or less falls back to DefaultMaxFixes.
func New(path string, max int) *Store {
	if max <= 0 {
		max = DefaultMaxFixes
	}
	return &Store{
		path:  path,
		max:   max,
		dirty: make(chan struct{}, 1),
	}
}

// Load reads the persisted file into memory. A missing file is a normal
// first run; an unreadable or corrupt file is logged and the store starts
// empty rather than failing startup.
func (s *Store) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info().Str("path", s.path).Msg("no existing location file, starting empty")
		} else {
			logging.Err(err).Str("path", s.path).Msg("failed to read location file, starting empty")
		}
		return
	}

	var fixes []models.Fix
	if err := json.Unmarshal(data, &fixes); err != nil {
		logging.Err(err).Str("path", s.path).Msg("corrupt location file, starting empty")
		return
	}

	if len(fixes) > s.max {
		fixes = fixes[len(fixes)-s.max:]
	}

	s.mu.Lock()
	s.fixes = fixes
	s.mu.Unlock()

	metrics.StoreSize.Set(float64(len(fixes)))
	logging.Info().Int("count", len(fixes)).Str("path", s.path).Msg("loaded existing locations")
}

// Append adds a fix, evicting the oldest when the cap is reached, and
// schedules an asynchronous persist. It returns the new fix count.
func (s *Store) Append(fix models.Fix) int {
	s.mu.Lock()
	s.fixes = append(s.fixes, fix)
	if evicted := len(s.fixes) - s.max; evicted > 0 {
		s.fixes = s.fixes[evicted:]
		metrics.StoreEvictions.Add(float64(evicted))
	}
	count := len(s.fixes)
	s.mu.Unlock()

	metrics.StoreSize.Set(float64(count))
	s.markDirty()
	return count
}

// Clear removes all fixes and persists the empty state before returning.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.fixes = nil
	s.mu.Unlock()

	metrics.StoreSize.Set(0)
	return s.SaveNow()
}

// Latest returns the most recently appended fix, or ErrEmpty.
func (s *Store) Latest() (models.Fix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.fixes) == 0 {
		return models.Fix{}, ErrEmpty
	}
	return s.fixes[len(s.fixes)-1], nil
}

// Snapshot returns a copy of all fixes in insertion order.
func (s *Store) Snapshot() []models.Fix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Fix, len(s.fixes))
	copy(out, s.fixes)
	return out
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Count returns the number of fixes currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fixes)
}

// markDirty signals the persister without blocking; a pending notification
// already covers this change.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Dirty exposes the persistence notification channel to the Persister.
func (s *Store) Dirty() <-chan struct{} {
	return s.dirty
}

// SaveNow writes the current snapshot to the store file atomically. The
// file is human-formatted so it stays inspectable with a text editor.
func (s *Store) SaveNow() error {
	start := time.Now()
	err := s.save()
	metrics.RecordPersist(time.Since(start), err)
	return err
}

func (s *Store) save() error {
	snapshot := s.Snapshot()
	if snapshot == nil {
		snapshot = []models.Fix{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal locations: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".locations-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}

	logging.Debug().Int("count", len(snapshot)).Str("path", s.path).Msg("persisted locations")
	return nil
}
