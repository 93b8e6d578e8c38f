// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package kv

import "errors"

// ErrKeyNotFound is returned by Get when the key has no value. Callers that
// treat missing data as "no saved state" should check for it with errors.Is.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is a persistent string-keyed blob store. Implementations must be
// safe for concurrent use and must survive process restarts (the in-memory
// implementation is for tests only).
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
