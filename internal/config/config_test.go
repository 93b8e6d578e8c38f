// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "rate limit zero", mutate: func(c *Config) { c.Server.RateLimit = 0 }},
		{name: "empty storage path", mutate: func(c *Config) { c.Storage.Path = "" }},
		{name: "auto-save too short", mutate: func(c *Config) { c.Label.AutoSaveInterval = 500 * time.Millisecond }},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid configuration")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "MARKETMAP_SERVER_PORT", want: "server.port"},
		{in: "MARKETMAP_SERVER_RATE_LIMIT", want: "server.rate_limit"},
		{in: "MARKETMAP_STORAGE_ALLOW_PARTIAL_SCOPE", want: "storage.allow_partial_scope"},
		{in: "MARKETMAP_LABEL_AUTO_SAVE_INTERVAL", want: "label.auto_save_interval"},
		{in: "MARKETMAP_LOGGING_LEVEL", want: "logging.level"},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_FileAndEnvLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
label:
  direct_drag: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MARKETMAP_SERVER_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment beats the file, the file beats defaults.
	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want env override 9191", cfg.Server.Port)
	}
	if !cfg.Label.DirectDrag {
		t.Error("DirectDrag = false, want file value true")
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default", cfg.Server.Host)
	}
}

func TestLoad_InvalidFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	if _, err := Load(); err == nil {
		t.Error("Load() accepted port 0")
	}
}
