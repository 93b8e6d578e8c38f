// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package config

import (
	"fmt"
	"time"
)

// Config is the root service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Label   LabelConfig   `koanf:"label"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// CORSOrigins lists allowed browser origins for the dashboard frontend.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimit is the per-client request budget per minute for the REST
	// API. The websocket pointer stream is not rate limited.
	RateLimit int `koanf:"rate_limit"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig configures label position persistence.
type StorageConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// AllowPartialScope restores the legacy read-side behavior where a
	// persisted record with missing scope fields matches any scope. Leave
	// off unless migrating stores written before scoping was mandatory.
	AllowPartialScope bool `koanf:"allow_partial_scope"`
}

// LabelConfig configures the interaction controller.
type LabelConfig struct {
	AutoSaveInterval time.Duration `koanf:"auto_save_interval"`

	// DirectDrag selects the fused pointer-down drag flow instead of
	// click-to-select.
	DirectDrag bool `koanf:"direct_drag"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the configuration applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:5173"},
			RateLimit:       300,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path:              "/data/marketmap/labels",
			AllowPartialScope: false,
		},
		Label: LabelConfig{
			AutoSaveInterval: 30 * time.Second,
			DirectDrag:       false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("server.rate_limit must be positive, got %d", c.Server.RateLimit)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	if c.Label.AutoSaveInterval < time.Second {
		return fmt.Errorf("label.auto_save_interval %s too short, minimum 1s", c.Label.AutoSaveInterval)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}
