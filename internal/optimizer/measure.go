// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package optimizer

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/models"
)

// heightFactor converts a font size to an estimated line height.
const heightFactor = 1.2

// fallbackCharWidth estimates per-character width as a fraction of the font
// size when no font face is available.
const fallbackCharWidth = 0.6

// Measurer estimates rendered text dimensions using real font metrics. Faces
// are built lazily per (weight, size) and cached; measurement happens on
// every candidate evaluation, face construction only once per style.
type Measurer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face

	regular *truetype.Font
	bold    *truetype.Font
}

type faceKey struct {
	weight models.FontWeight
	// size in half-point steps so 10 and 10.4 share a face
	halfPoints int
}

// NewMeasurer parses the embedded Go fonts. Parsing embedded data cannot
// fail in practice; if it does, the measurer falls back to a per-character
// width estimate.
func NewMeasurer() *Measurer {
	m := &Measurer{faces: make(map[faceKey]font.Face)}

	var err error
	if m.regular, err = truetype.Parse(goregular.TTF); err != nil {
		logging.Error().Err(err).Msg("parse regular font, falling back to width estimate")
	}
	if m.bold, err = truetype.Parse(gobold.TTF); err != nil {
		logging.Error().Err(err).Msg("parse bold font, falling back to width estimate")
	}
	return m
}

// TextWidth returns the estimated rendered width of text in pixels.
func (m *Measurer) TextWidth(text string, size float64, weight models.FontWeight) float64 {
	if size <= 0 {
		size = models.DefaultFontSize
	}

	face := m.face(weight, size)
	if face == nil {
		return float64(len([]rune(text))) * size * fallbackCharWidth
	}

	// fixed.Int26_6 carries 6 fractional bits.
	return float64(font.MeasureString(face, text)) / 64.0
}

// TextHeight returns the estimated rendered height of text in pixels.
func (m *Measurer) TextHeight(size float64) float64 {
	if size <= 0 {
		size = models.DefaultFontSize
	}
	return size * heightFactor
}

func (m *Measurer) face(weight models.FontWeight, size float64) font.Face {
	src := m.regular
	if weight == models.FontWeightBold {
		src = m.bold
	}
	if src == nil {
		return nil
	}

	key := faceKey{weight: weight, halfPoints: int(size * 2)}

	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.faces[key]; ok {
		return f
	}
	f := truetype.NewFace(src, &truetype.Options{
		Size:    float64(key.halfPoints) / 2,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	m.faces[key] = f
	return f
}
