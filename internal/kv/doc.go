// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package kv abstracts the persistent string-keyed blob store backing label
// position persistence. The engine treats the store as opaque bytes; the
// production implementation is BadgerDB, and an in-memory implementation
// backs tests.
package kv
