// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package identity

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/marketmap/internal/models"
)

// Identifier source prefixes. Keeping the source in the key prevents
// collisions between, say, feature ID 42 and a unique field value "42".
const (
	prefixFeature   = "f"
	prefixParent    = "p"
	prefixAssigned  = "a"
	prefixUnique    = "u"
	prefixComposite = "c"
)

// coordPrecision is the rounding step in pixels for composite keys. Anchor
// points jitter by fractions of a pixel between renders; rounding to whole
// pixels keeps the composite key stable.
const coordPrecision = 1.0

// Resolve derives a stable identifier for a label. It tries, in order, the
// first applicable of:
//
//  1. the numeric stable feature identifier
//  2. the parent-feature identifier
//  3. an explicit pre-assigned label identifier
//  4. the layer's designated unique data field
//  5. a rounded-coordinate-plus-text composite key
//
// The second return value is false when nothing qualifies. Callers must skip
// such labels rather than fabricate an identifier.
func Resolve(l *models.Label) (models.LabelID, bool) {
	attrs := l.Attributes

	if attrs.FeatureID != 0 {
		return compose(prefixFeature, fmt.Sprintf("%d", attrs.FeatureID)), true
	}
	if attrs.ParentFeatureID != 0 {
		return compose(prefixParent, fmt.Sprintf("%d", attrs.ParentFeatureID)), true
	}
	if attrs.AssignedLabelID != "" {
		return compose(prefixAssigned, attrs.AssignedLabelID), true
	}
	if attrs.UniqueField != "" {
		return compose(prefixUnique, attrs.UniqueField), true
	}

	// Last resort: anchor position rounded to whole pixels plus the label
	// text. Requires non-empty text, otherwise two blank labels at the same
	// point would collide.
	if text := strings.TrimSpace(l.Text); text != "" {
		x := math.Round(l.AnchorPoint.X / coordPrecision)
		y := math.Round(l.AnchorPoint.Y / coordPrecision)
		return compose(prefixComposite, fmt.Sprintf("%.0f:%.0f:%s", x, y, text)), true
	}

	return "", false
}

func compose(prefix, value string) models.LabelID {
	return models.LabelID(prefix + ":" + value)
}
