// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

/*
Package main is the entry point for the marketmap label engine server.

Marketmap manages text labels on market-area maps: it keeps labels from
overlapping, lets users reposition and restyle them, and persists those
customizations per project, map configuration and map type so they survive
re-renders and restarts.

# Application Architecture

The server runs two supervised services under a Suture v4 root:

	RootSupervisor ("marketmap")
	├── http-server        REST API and websocket surface bridge
	└── auto-save          periodic flush of dirty label records

The REST API (chi) drives the engine: scope activation, layer ingestion,
optimization, style edits, persistence and reset. The websocket bridge
carries the pointer event stream from the browser map surface into the
interaction state machine and relays hit-test requests back out.

Label records are stored in BadgerDB under scope-qualified keys. See
internal/engine for the orchestration layer and internal/store for the
persistence format.

# Configuration

Configuration is layered: struct defaults, then an optional YAML file
(config.yaml, /etc/marketmap/config.yaml or $CONFIG_PATH), then MARKETMAP_*
environment variables. See internal/config.
*/
package main
