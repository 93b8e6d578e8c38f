// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package api exposes the label engine to the dashboard frontend: a chi
// REST surface for scope, layer, style and persistence operations, and a
// websocket bridge that carries the map surface's pointer stream inbound
// and hit-test requests, label updates and navigation locks outbound.
package api
