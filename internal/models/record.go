// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package models

import "time"

// PersistedRecord is the saved style and position state for one label under
// one scope. It captures everything a user can customize; fields the user
// never touched still round-trip so a record can be applied verbatim.
type PersistedRecord struct {
	Offset       Offset      `json:"offset"`
	FontSize     float64     `json:"fontSize"`
	FontWeight   FontWeight  `json:"fontWeight"`
	Background   *Background `json:"background,omitempty"`
	Visible      bool        `json:"visible"`
	Text         string      `json:"text"`
	LastEditedAt time.Time   `json:"lastEditedAt"`
}

// RecordFromLabel snapshots a label's current engine-owned state into a
// persisted record stamped with the given edit time.
func RecordFromLabel(l *Label, editedAt time.Time) PersistedRecord {
	return PersistedRecord{
		Offset:       l.Offset,
		FontSize:     l.FontSize,
		FontWeight:   l.FontWeight,
		Background:   l.Background,
		Visible:      l.Visible,
		Text:         l.Text,
		LastEditedAt: editedAt,
	}
}

// Apply writes the record's state onto a live label. The caller is
// responsible for having checked scope compatibility first.
func (r PersistedRecord) Apply(l *Label) {
	l.Offset = r.Offset
	if r.FontSize > 0 {
		l.FontSize = r.FontSize
	}
	if r.FontWeight != "" {
		l.FontWeight = r.FontWeight
	}
	l.Background = r.Background
	l.Visible = r.Visible
	if r.Text != "" {
		l.Text = r.Text
	}
}
