// Locus - GPS Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locus

// Package config loads locusd configuration from defaults, an optional YAML
// file, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/locus/internal/store"
	"github.com/tomtom215/locus/internal/validation"
)

// Config is the complete locusd configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig configures the fix store and its persistence.
type StoreConfig struct {
	Path          string        `koanf:"path" validate:"required"`
	MaxFixes      int           `koanf:"max_fixes" validate:"gte=1"`
	FlushInterval time.Duration `koanf:"flush_interval" validate:"gt=0"`
}

// SecurityConfig configures CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins      []string `koanf:"cors_origins"`
	RateLimitEnabled bool     `koanf:"rate_limit_enabled"`
	RateLimitRPM     int      `koanf:"rate_limit_rpm" validate:"gte=0"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in configuration. Port, store path, cap, and
// flush interval match what capture pages posting to a stock deployment
// expect.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:          "locations.json",
			MaxFixes:      store.DefaultMaxFixes,
			FlushInterval: store.DefaultFlushInterval,
		},
		Security: SecurityConfig{
			CORSOrigins:      []string{"*"},
			RateLimitEnabled: true,
			RateLimitRPM:     300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if errs := validation.Validate(c); errs != nil {
		return fmt.Errorf("invalid configuration: %s: %s", errs[0].Field, errs[0].Message)
	}
	return nil
}
