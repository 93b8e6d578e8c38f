// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package models defines the core data types of the label engine: labels and
// their style attributes, the scope triple that isolates persisted
// customizations, persisted records, drag sessions, and the operation result
// envelope returned by all mutating engine operations.
package models
