// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package engine wires the label subsystem together and exposes the public
// API the surrounding application consumes: scope switching, layer
// ingestion, global optimization, selection and drag control, style edits,
// and persistence operations. One Engine is constructed per map view and
// torn down with it; there is no process-wide state.
package engine
