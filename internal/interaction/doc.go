// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

// Package interaction implements the edit-mode selection and
// drag-to-reposition state machine layered on the map surface's pointer
// stream.
//
// States: Idle → Selected → Dragging → Selected, with an orthogonal
// edit-mode flag gating whether selection is possible at all. Pointer-move
// handling during a drag is synchronous: every move event is applied to the
// live label before the next event is delivered, so a save issued on
// pointer-up always observes the final offset. At most one drag session is
// live at a time; starting another is rejected, never silently replaced.
// A periodic auto-save service flushes dirty records independently of user
// interaction.
package interaction
