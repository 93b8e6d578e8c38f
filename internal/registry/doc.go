// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package registry maintains the run-time table mapping label identity to
// the live label graphic and its tracked state. It bridges freshly rendered
// labels to their persisted records: on layer ingestion each label either
// receives its saved style verbatim or joins the optimizer batch for
// automatic placement. Entries live for the lifetime of their scope and are
// cleared on scope switch.
package registry
