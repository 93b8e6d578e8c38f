// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package models

import (
	"fmt"
	"math"
)

// LabelID is the stable identifier of a label, derived from the attributes of
// its owning feature rather than from object identity. The renderer destroys
// and recreates label graphics on every data refresh; the derived ID is what
// lets a recreated graphic find its persisted state.
type LabelID string

// FontWeight is the rendered weight of a label's text.
type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

// DefaultFontSize is applied to labels with no persisted record and no layer
// default style.
const DefaultFontSize = 10.0

// Point is a position in map pixel space. Y grows downward, matching screen
// coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset is a label's pixel displacement from its anchor point. By convention
// Y grows upward: an offset of (0, 15) places the label above its anchor.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the component-wise sum of two offsets.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// DistanceTo returns the Euclidean distance between two offsets.
func (o Offset) DistanceTo(other Offset) float64 {
	return math.Hypot(o.X-other.X, o.Y-other.Y)
}

// Background is the optional backing rectangle rendered behind a label's text.
type Background struct {
	Color       string  `json:"color"`
	BorderColor string  `json:"borderColor,omitempty"`
	BorderWidth float64 `json:"borderWidth,omitempty"`
	Padding     float64 `json:"padding,omitempty"`
}

// LabelAttributes carries the source-feature attributes a label graphic is
// tagged with. Identity resolution reads these in a fixed priority order; see
// the identity package.
type LabelAttributes struct {
	// FeatureID is the numeric stable identifier of the owning feature,
	// when the source layer provides one. Zero means absent.
	FeatureID int64 `json:"featureId,omitempty"`

	// ParentFeatureID identifies the parent feature for labels attached to
	// derived graphics (e.g. a radius ring labels its center point).
	ParentFeatureID int64 `json:"parentFeatureId,omitempty"`

	// AssignedLabelID is an explicit pre-assigned label identifier, set by
	// layers that manage their own label identity.
	AssignedLabelID string `json:"assignedLabelId,omitempty"`

	// UniqueField is the value of the layer's designated unique data field
	// from the source record (e.g. a ZIP code or census tract GEOID).
	UniqueField string `json:"uniqueField,omitempty"`
}

// Label is a text annotation anchored to a map feature. The engine owns the
// offset and style fields; AnchorPoint and Attributes are read-only inputs
// from the rendering pipeline.
type Label struct {
	ID          LabelID         `json:"id"`
	Text        string          `json:"text"`
	Offset      Offset          `json:"offset"`
	FontSize    float64         `json:"fontSize"`
	FontWeight  FontWeight      `json:"fontWeight"`
	Background  *Background     `json:"background,omitempty"`
	Visible     bool            `json:"visible"`
	AnchorPoint Point           `json:"anchorPoint"`
	Attributes  LabelAttributes `json:"attributes"`

	// HaloSize is the text outline width in pixels, used only for bounding
	// box padding. Not persisted.
	HaloSize float64 `json:"haloSize,omitempty"`
}

// ScreenPosition returns the label's rendered position in map pixel space:
// the anchor displaced by the offset, with the offset's Y axis inverted
// because screen Y grows downward.
func (l *Label) ScreenPosition() Point {
	return Point{X: l.AnchorPoint.X + l.Offset.X, Y: l.AnchorPoint.Y - l.Offset.Y}
}

// Layer is a batch of label graphics supplied by the rendering pipeline,
// tagged with the map configuration and type that produced it.
type Layer struct {
	Name        string   `json:"name"`
	MapConfigID string   `json:"mapConfigId"`
	MapType     string   `json:"mapType"`
	Labels      []*Label `json:"labels"`

	// DefaultStyle is optional declarative styling applied to labels that
	// have no persisted record.
	DefaultStyle *LayerStyle `json:"defaultStyle,omitempty"`
}

// LayerStyle is the declarative default styling a layer may request for its
// unplaced labels.
type LayerStyle struct {
	FontSize   float64     `json:"fontSize,omitempty"`
	FontWeight FontWeight  `json:"fontWeight,omitempty"`
	Background *Background `json:"background,omitempty"`
}

// DragSession tracks an in-progress manual repositioning. At most one session
// is live at a time; the interaction controller is its sole owner.
type DragSession struct {
	Label        LabelID `json:"label"`
	PointerStart Point   `json:"pointerStart"`
	OffsetStart  Offset  `json:"offsetStart"`
}

func (s *DragSession) String() string {
	return fmt.Sprintf("drag[%s from (%.0f,%.0f)]", s.Label, s.PointerStart.X, s.PointerStart.Y)
}
