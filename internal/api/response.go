// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marketmap/internal/logging"
)

// APIResponse is the standardized wrapper for all REST responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError carries a machine-readable code plus a human-readable message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes returned by the label engine API.
const (
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeScopeMismatch = "scope_mismatch"
	CodeConflict      = "conflict"
	CodeStorage       = "storage_error"
	CodeInternal      = "internal_error"
)

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	resp := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID: logging.RequestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
		},
	}
	writeJSON(w, r, status, resp)
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	resp := APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	}
	writeJSON(w, r, status, resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode response failed")
	}
}

// decodeJSON parses a request body into dst with unknown fields rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
