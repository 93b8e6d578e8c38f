// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package optimizer

import "github.com/tomtom215/marketmap/internal/models"

// Rect is an axis-aligned screen-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// OverlapArea returns the area of the intersection, or 0 when disjoint.
func (r Rect) OverlapArea(o Rect) float64 {
	w := min(r.X+r.W, o.X+o.W) - max(r.X, o.X)
	h := min(r.Y+r.H, o.Y+o.H) - max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// boundingBox estimates the screen-space footprint of a label rendered at
// the given offset: measured text width, height from font size, padded on
// all sides by the larger of background padding and halo size, centered on
// the anchor displaced by the offset (offset Y inverted into screen space).
func (m *Measurer) boundingBox(l *models.Label, offset models.Offset) Rect {
	w := m.TextWidth(l.Text, l.FontSize, l.FontWeight)
	h := m.TextHeight(l.FontSize)

	pad := l.HaloSize
	if l.Background != nil && l.Background.Padding > pad {
		pad = l.Background.Padding
	}
	w += 2 * pad
	h += 2 * pad

	cx := l.AnchorPoint.X + offset.X
	cy := l.AnchorPoint.Y - offset.Y
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}
