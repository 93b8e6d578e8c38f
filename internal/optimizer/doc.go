// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package optimizer computes collision-avoiding offsets for batches of
// labels that have no persisted position. Labels a user has placed manually
// are never passed in; user intent always wins.
//
// The search is deterministic: labels are placed in priority order (longer
// text first, larger font breaking ties), each evaluating a fixed candidate
// list: the original offset, concentric rings of increasing radius, then a
// short list of named positions. Candidates are scored by overlap area
// against already-placed and still-unplaced neighbors plus small displacement
// and direction penalties; the original offset is always tried first, so an
// unobstructed label never moves. Total elimination of overlap is a goal,
// not a guarantee.
package optimizer
