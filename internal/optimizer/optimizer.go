// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package optimizer

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/metrics"
	"github.com/tomtom215/marketmap/internal/models"
)

// Candidate search geometry. Rings are tried nearest-first; each ring is
// sampled at 8 angles starting straight up and proceeding clockwise.
var ringRadii = [...]float64{15, 25, 35, 45, 60, 80}

const ringSteps = 8

// namedOffsets are anchor-relative fallback positions tried after the rings:
// directly above/below/left/right of the anchor and the four diagonals.
var namedOffsets = [...]models.Offset{
	{X: 0, Y: 20},    // above
	{X: 0, Y: -20},   // below
	{X: -20, Y: 0},   // left
	{X: 20, Y: 0},    // right
	{X: 14, Y: 14},   // upper right
	{X: -14, Y: 14},  // upper left
	{X: 14, Y: -14},  // lower right
	{X: -14, Y: -14}, // lower left
}

// Scoring weights. Overlap area dominates; the displacement and direction
// terms are tie-breaks that keep the search deterministic and visually
// consistent (prefer near, prefer up-right).
const (
	unplacedWeight     = 0.5
	displacementWeight = 0.05
	downPenalty        = 0.5
	leftPenalty        = 0.5
)

// significantOverlapCap bounds the overlap-pair threshold regardless of
// batch size.
const significantOverlapCap = 5

// Optimizer computes collision-avoiding offsets. Safe for concurrent use;
// the only shared state is the measurer's face cache.
type Optimizer struct {
	measurer *Measurer
}

// New creates an Optimizer with its own font measurer.
func New() *Optimizer {
	return &Optimizer{measurer: NewMeasurer()}
}

// HasSignificantOverlap reports whether enough label pairs overlap at their
// current offsets to justify a full optimization pass. The threshold is
// roughly 20% of the batch, capped at 5 pairs and never below 1.
func (o *Optimizer) HasSignificantOverlap(labels []*models.Label) bool {
	n := len(labels)
	if n < 2 {
		return false
	}

	threshold := int(math.Ceil(0.2 * float64(n)))
	if threshold > significantOverlapCap {
		threshold = significantOverlapCap
	}
	if threshold < 1 {
		threshold = 1
	}

	boxes := make([]Rect, n)
	for i, l := range labels {
		boxes[i] = o.measurer.boundingBox(l, l.Offset)
	}

	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if boxes[i].Intersects(boxes[j]) {
				pairs++
				if pairs >= threshold {
					return true
				}
			}
		}
	}
	return false
}

// Optimize assigns exactly one offset to every input label. Labels whose
// default position is unobstructed keep it; the rest are relocated to their
// best-scoring candidate. The input labels are not mutated.
func (o *Optimizer) Optimize(labels []*models.Label) map[models.LabelID]models.Offset {
	result := make(map[models.LabelID]models.Offset, len(labels))
	if len(labels) == 0 {
		return result
	}

	if !o.HasSignificantOverlap(labels) {
		metrics.OptimizerSkipped.Inc()
		for _, l := range labels {
			result[l.ID] = l.Offset
		}
		return result
	}

	start := time.Now()
	metrics.OptimizerRuns.Inc()

	// Longer or larger labels are harder to relocate without looking wrong,
	// so they claim good positions first.
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		la, lb := labels[order[a]], labels[order[b]]
		wa, wb := len([]rune(la.Text)), len([]rune(lb.Text))
		if wa != wb {
			return wa > wb
		}
		return la.FontSize > lb.FontSize
	})

	defaultBoxes := make([]Rect, len(labels))
	weights := make([]float64, len(labels))
	for i, l := range labels {
		defaultBoxes[i] = o.measurer.boundingBox(l, l.Offset)
		weights[i] = importance(l)
	}

	type placedBox struct {
		rect   Rect
		weight float64
	}
	placed := make([]placedBox, 0, len(labels))
	moved := 0

	for k, idx := range order {
		l := labels[idx]
		def := l.Offset

		// A label whose default box clears every finalized box keeps its
		// position outright. Higher-priority labels claim their spot and
		// the rest move around them; lower-priority labels still at their
		// defaults are the ones expected to yield.
		obstructed := false
		for _, p := range placed {
			if defaultBoxes[idx].Intersects(p.rect) {
				obstructed = true
				break
			}
		}
		if !obstructed {
			result[l.ID] = def
			placed = append(placed, placedBox{rect: defaultBoxes[idx], weight: weights[idx]})
			continue
		}

		best := def
		bestScore := math.Inf(1)

		for _, cand := range o.candidates(def) {
			box := o.measurer.boundingBox(l, cand)

			score := 0.0
			for _, p := range placed {
				score += box.OverlapArea(p.rect) * p.weight
			}
			// Not-yet-placed labels may still move, so their default
			// footprint counts at half weight.
			for _, j := range order[k+1:] {
				score += unplacedWeight * box.OverlapArea(defaultBoxes[j])
			}
			score += displacementWeight * cand.DistanceTo(def)
			if cand.Y < def.Y {
				score += downPenalty
			}
			if cand.X < def.X {
				score += leftPenalty
			}

			if score == 0 {
				best = cand
				break
			}
			if score < bestScore {
				bestScore = score
				best = cand
			}
		}

		result[l.ID] = best
		placed = append(placed, placedBox{rect: o.measurer.boundingBox(l, best), weight: weights[idx]})
		if best != def {
			moved++
		}
	}

	metrics.OptimizerMovedLabels.Add(float64(moved))
	metrics.OptimizerDuration.Observe(time.Since(start).Seconds())
	logging.Debug().
		Int("labels", len(labels)).
		Int("moved", moved).
		Dur("took", time.Since(start)).
		Msg("optimizer pass complete")
	return result
}

// candidates returns the fixed ordered candidate list for a label with the
// given default offset. The default itself is always first.
func (o *Optimizer) candidates(def models.Offset) []models.Offset {
	out := make([]models.Offset, 0, 1+len(ringRadii)*ringSteps+len(namedOffsets))
	out = append(out, def)

	for _, r := range ringRadii {
		for step := 0; step < ringSteps; step++ {
			theta := float64(step) * (2 * math.Pi / ringSteps)
			// Offset space: Y up. Step 0 is straight up, then clockwise.
			out = append(out, models.Offset{
				X: def.X + r*math.Sin(theta),
				Y: def.Y + r*math.Cos(theta),
			})
		}
	}

	out = append(out, namedOffsets[:]...)
	return out
}

// importance weights a label's claim on its position: larger, bold, or
// backgrounded labels cost more to overlap.
func importance(l *models.Label) float64 {
	w := 1.0
	if l.FontSize > models.DefaultFontSize {
		w += (l.FontSize - models.DefaultFontSize) / models.DefaultFontSize
	}
	if l.FontWeight == models.FontWeightBold {
		w += 0.5
	}
	if l.Background != nil {
		w += 0.5
	}
	return w
}
