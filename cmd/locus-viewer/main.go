// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Command locus-viewer renders stored GPS fixes as an interactive map
// document, either once or continuously while the ingest server runs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tomtom215/locus/internal/logging"
	"github.com/tomtom215/locus/internal/viewer"
)

// version is set at build time via -ldflags.
var version = "dev"

var cli struct {
	Mode     string           `help:"Render once or keep updating while the server runs." enum:"once,live" default:"once"`
	Server   string           `help:"Ingest server base URL." default:"http://localhost:8000"`
	Output   string           `help:"Output HTML file." type:"path" default:"location_map.html"`
	File     string           `help:"Local store file used when the server is unreachable." type:"path" default:"locations.json"`
	Interval time.Duration    `help:"Polling interval in live mode." default:"10s"`
	NoOpen   bool             `help:"Do not open the rendered map in a browser."`
	LogLevel string           `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	Version  kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("locus-viewer"),
		kong.Description("Render tracked GPS locations on an interactive map."),
		kong.Vars{"version": version},
	)

	logging.Init(logging.Config{Level: cli.LogLevel, Format: "console"})

	v := viewer.New(viewer.Options{
		ServerURL:   cli.Server,
		FilePath:    cli.File,
		OutputPath:  cli.Output,
		Interval:    cli.Interval,
		OpenBrowser: !cli.NoOpen,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cli.Mode {
	case "live":
		err = v.RunLive(ctx)
	default:
		err = v.RunOnce(ctx)
	}
	kctx.FatalIfErrorf(err)
}
