// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package config loads service configuration with koanf: struct defaults,
// then an optional YAML file, then MARKETMAP_-prefixed environment
// variables, highest priority last.
package config
