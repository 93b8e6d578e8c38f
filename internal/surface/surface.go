// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package surface defines the boundary to the map rendering surface: the
// pointer event stream, asynchronous hit-testing, live label mutation and
// navigation locking. The engine never talks to a concrete map widget; in
// production the implementation is the websocket bridge in the api package,
// and tests use scripted fakes.
package surface

import (
	"context"

	"github.com/tomtom215/marketmap/internal/models"
)

// PointerEventType enumerates the pointer stream events the surface emits.
type PointerEventType string

const (
	PointerDown  PointerEventType = "down"
	PointerMove  PointerEventType = "move"
	PointerUp    PointerEventType = "up"
	PointerLeave PointerEventType = "leave"
)

// PointerEvent is one event from the map surface's pointer stream. Position
// is in map pixel space.
type PointerEvent struct {
	Type     PointerEventType `json:"type"`
	Position models.Point     `json:"position"`
}

// Surface is the map rendering surface as seen by the engine.
type Surface interface {
	// HitTest queries the surface for label graphics under the given
	// screen point. It is asynchronous on the wire and the only engine
	// operation that yields control before producing a result. Returns
	// the identities of hit label graphics, nearest first.
	HitTest(ctx context.Context, pt models.Point) ([]models.LabelID, error)

	// SetNavigationEnabled toggles the surface's native pan/zoom handling.
	// Disabled for the duration of a drag so pointer moves reposition the
	// label instead of panning the map.
	SetNavigationEnabled(enabled bool)

	// UpdateLabel pushes a live label's current state to the surface so
	// the rendered graphic follows engine-side mutations immediately.
	UpdateLabel(l *models.Label)
}
