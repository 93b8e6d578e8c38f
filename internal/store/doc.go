// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package store persists per-label style and position records, isolated by
// (project, map configuration, map type) scope.
//
// Records for one scope live under a single scope-qualified key in the
// backing kv.Store. Saves are read-modify-write merges: only the labels
// present in the batch are overwritten, so a save issued while only a subset
// of labels is registered in memory never drops the rest. Reads degrade to an
// empty record set on missing or corrupt data; a storage problem must never
// block rendering.
package store
