// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/locus/internal/logging"
)

// envMapping maps recognized environment variables to config paths.
// Anything not listed here is ignored, so unrelated process environment
// never leaks into the configuration.
var envMapping = map[string]string{
	"HTTP_HOST":            "server.host",
	"HTTP_PORT":            "server.port",
	"HTTP_READ_TIMEOUT":    "server.read_timeout",
	"HTTP_WRITE_TIMEOUT":   "server.write_timeout",
	"STORE_PATH":           "store.path",
	"STORE_MAX_FIXES":      "store.max_fixes",
	"STORE_FLUSH_INTERVAL": "store.flush_interval",
	"CORS_ORIGINS":         "security.cors_origins",
	"RATE_LIMIT_ENABLED":   "security.rate_limit_enabled",
	"RATE_LIMIT_RPM":       "security.rate_limit_rpm",
	"LOG_LEVEL":            "logging.level",
	"LOG_FORMAT":           "logging.format",
	"LOG_CALLER":           "logging.caller",
}

// defaultConfigPaths are tried in order when no --config flag is given.
var defaultConfigPaths = []string{
	"locus.yaml",
	"config.yaml",
	"/etc/locus/config.yaml",
}

// Load builds the configuration: defaults, then the YAML file (explicit
// path or first default location found), then environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := findConfigFile(configPath)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		logging.Info().Str("path", path).Msg("loaded config file")
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	normalizeSlices(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile resolves the config file path. An explicit path must
// exist; default locations are optional.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps environment variable names to config paths; unknown
// variables are dropped by returning an empty key.
func envTransform(key string) string {
	if path, ok := envMapping[strings.ToUpper(key)]; ok {
		return path
	}
	return ""
}

// normalizeSlices splits comma-separated slice values that arrive as a
// single string from the environment (CORS_ORIGINS="a,b").
func normalizeSlices(cfg *Config) {
	if len(cfg.Security.CORSOrigins) == 1 && strings.Contains(cfg.Security.CORSOrigins[0], ",") {
		parts := strings.Split(cfg.Security.CORSOrigins[0], ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		cfg.Security.CORSOrigins = out
	}
}
