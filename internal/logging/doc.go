// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package logging provides centralized zerolog-based logging for Marketmap.
//
// Initialize once at startup, then log through the package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("scope", scope.String()).Msg("scope activated")
//
// Handlers should prefer the context-aware form so request IDs propagate:
//
//	logging.Ctx(ctx).Warn().Msg("label skipped")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// emits nothing.
package logging
