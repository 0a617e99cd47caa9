// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Command locusd is the Locus ingest daemon: it accepts GPS fixes over
// HTTP, keeps them in a capped in-memory store, and mirrors them to a JSON
// file readable by locus-viewer.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/tomtom215/locus/internal/api"
	"github.com/tomtom215/locus/internal/config"
	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/store"
	"github.com/tomtom215/locus/internal/supervisor"
	"github.com/tomtom215/locus/internal/supervisor/services"
	"github.com/tomtom215/locus/internal/websocket"
)

// version is set at build time via -ldflags.
var version = "dev"

var cli struct {
	Config  string           `help:"Path to YAML config file." type:"existingfile" optional:""`
	Version kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("locusd"),
		kong.Description("GPS location tracking server."),
		kong.Vars{"version": version},
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("version", version).Str("addr", cfg.Server.Addr()).Msg("starting locusd")

	st := store.New(cfg.Store.Path, cfg.Store.MaxFixes)
	st.Load()

	hub := websocket.NewHub()
	handlers := api.NewHandlers(st, hub)
	router := api.NewRouter(handlers, api.RouterConfig{
		CORSOrigins:      cfg.Security.CORSOrigins,
		RateLimitEnabled: cfg.Security.RateLimitEnabled,
		RateLimitRPM:     cfg.Security.RateLimitRPM,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree("locusd")
	tree.Add(services.NewWebSocketHubService(hub))
	tree.Add(store.NewPersister(st, cfg.Store.FlushInterval))
	tree.Add(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The persister flushes the store on shutdown, so a clean exit leaves
	// the file matching memory.
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("supervision tree failed")
	}

	logging.Info().Msg("locusd stopped")
}
