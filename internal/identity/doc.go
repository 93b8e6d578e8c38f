// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package identity derives stable label identifiers from feature attributes.
//
// The rendering pipeline destroys and recreates label graphics whenever it
// rebuilds a layer, so object identity is useless for matching a label to its
// persisted state. Resolve is a pure function over the label's attributes and
// geometry: the same source data always yields the same identifier, and a
// label whose attributes cannot produce a stable identifier yields none at
// all. Callers must skip such labels; a randomly generated fallback would
// break persistence across reloads.
package identity
