// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package models

import "fmt"

// OpResult is the outcome of a mutating engine operation. Expected failure
// modes (label not found, scope mismatch, drag already active) are reported
// here rather than as errors, so callers can surface them without treating
// them as faults.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// OK returns a successful result with an optional affected-item count.
func OK(count int) OpResult {
	return OpResult{Success: true, Count: count}
}

// OKMsg returns a successful result with a message.
func OKMsg(format string, args ...any) OpResult {
	return OpResult{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Fail returns a failed result with a descriptive message.
func Fail(format string, args ...any) OpResult {
	return OpResult{Success: false, Message: fmt.Sprintf(format, args...)}
}
