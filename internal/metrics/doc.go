// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package metrics exposes Prometheus instrumentation for the label engine:
// optimizer runs, position-store traffic, drag sessions and websocket
// connections. Metrics are registered via promauto at package load and
// served from the /metrics endpoint.
package metrics
