// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tomtom215/locus/internal/logging"
)

// Options configures a Viewer.
type Options struct {
	// ServerURL is the ingest server base URL, e.g. http://localhost:8000.
	ServerURL string

	// FilePath is the local store file used when the server is unreachable.
	FilePath string

	// OutputPath is where the rendered map document is written.
	OutputPath string

	// Interval is the live-mode polling interval.
	Interval time.Duration

	// OpenBrowser opens the rendered document in the platform browser
	// after the first render.
	OpenBrowser bool
}

// Viewer renders the map document once or continuously.
type Viewer struct {
	fetcher *Fetcher
	opts    Options

	// lastCount is the fix count of the last rendered document; live mode
	// re-renders only when the count changes.
	lastCount int
	rendered  bool
}

// New creates a Viewer.
func New(opts Options) *Viewer {
	return &Viewer{
		fetcher: NewFetcher(opts.ServerURL, opts.FilePath),
		opts:    opts,
	}
}

// RunOnce fetches, renders, and writes the map document a single time.
// When no data is available anywhere, it still writes the default map so
// the user gets a document explaining the empty state.
func (v *Viewer) RunOnce(ctx context.Context) error {
	if err := v.refresh(ctx); err != nil {
		return err
	}

	if v.opts.OpenBrowser {
		openBrowser(v.opts.OutputPath)
	}
	return nil
}

// RunLive renders immediately, then polls the server every interval and
// re-renders only when the fix count has changed. It returns when ctx is
// canceled.
func (v *Viewer) RunLive(ctx context.Context) error {
	if err := v.RunOnce(ctx); err != nil {
		return err
	}

	interval := v.opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	logging.Info().Dur("interval", interval).Msg("live mode started, press Ctrl+C to stop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("live mode stopped")
			return nil
		case <-ticker.C:
			if err := v.refresh(ctx); err != nil {
				logging.Err(err).Msg("refresh failed, keeping previous map")
			}
		}
	}
}

// refresh fetches the current fixes and rewrites the output document if
// the fix count changed since the last render (or nothing was rendered
// yet).
func (v *Viewer) refresh(ctx context.Context) error {
	fixes, err := v.fetcher.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			return err
		}
		logging.Warn().Msg("no location data available, rendering empty map")
		fixes = nil
	}

	if v.rendered && len(fixes) == v.lastCount {
		logging.Debug().Int("count", len(fixes)).Msg("fix count unchanged, skipping render")
		return nil
	}

	html, err := Render(fixes)
	if err != nil {
		return err
	}
	if err := writeAtomic(v.opts.OutputPath, []byte(html)); err != nil {
		return err
	}

	v.lastCount = len(fixes)
	v.rendered = true
	logging.Info().Int("count", len(fixes)).Str("output", v.opts.OutputPath).Msg("map rendered")
	return nil
}

// writeAtomic writes data to path via a temp file and rename, so a browser
// refreshing mid-write never sees a truncated document.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".map-*.html")
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
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// openBrowser opens path with the platform's default browser. Failure is
// logged, not fatal; the document is already on disk.
func openBrowser(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("could not open browser")
	}
}
