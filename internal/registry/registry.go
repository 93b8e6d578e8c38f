// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package registry

import (
	"sync"
	"time"

	"github.com/tomtom215/marketmap/internal/identity"
	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/metrics"
	"github.com/tomtom215/marketmap/internal/models"
	"github.com/tomtom215/marketmap/internal/optimizer"
	"github.com/tomtom215/marketmap/internal/store"
)

// Entry tracks one live label.
type Entry struct {
	ID    models.LabelID
	Label *models.Label
	Scope models.LabelScope

	// PersistentStyle marks entries whose style came from a persisted
	// record. Automated style passes must not clobber them.
	PersistentStyle bool

	// Dirty marks entries with unsaved user edits.
	Dirty bool
}

// Registry is the identity → entry table. It consults the position store on
// ingestion and hands unplaced labels to the optimizer.
type Registry struct {
	mu      sync.RWMutex
	entries map[models.LabelID]*Entry

	store *store.PositionStore
	opt   *optimizer.Optimizer
}

// New creates an empty registry over the given store and optimizer.
func New(positions *store.PositionStore, opt *optimizer.Optimizer) *Registry {
	return &Registry{
		entries: make(map[models.LabelID]*Entry),
		store:   positions,
		opt:     opt,
	}
}

// Ingest processes a rendered layer under the active scope. Per label: derive
// identity (labels without one are skipped and logged), apply any persisted
// record verbatim, otherwise apply the layer's declarative default style and
// queue the label for optimization. Returns the IDs of all ingested labels.
//
// A layer may carry its own map configuration and type tags; those override
// the active scope's view fields so cross-view layers stay isolated.
func (r *Registry) Ingest(layer *models.Layer, scope models.LabelScope) []models.LabelID {
	effective := scope
	if layer.MapConfigID != "" {
		effective.MapConfigID = layer.MapConfigID
	}
	if layer.MapType != "" {
		effective.MapType = layer.MapType
	}

	records := r.store.Load(effective)

	ingested := make([]models.LabelID, 0, len(layer.Labels))
	unplaced := make([]*models.Label, 0, len(layer.Labels))

	r.mu.Lock()
	for _, l := range layer.Labels {
		id, ok := identity.Resolve(l)
		if !ok {
			metrics.IdentityFailures.Inc()
			logging.Warn().
				Str("layer", layer.Name).
				Str("text", l.Text).
				Msg("label has no stable identity, skipping")
			continue
		}
		l.ID = id

		entry := &Entry{ID: id, Label: l, Scope: effective}
		if rec, found := records[id]; found {
			rec.Apply(l)
			entry.PersistentStyle = true
		} else {
			applyLayerStyle(l, layer.DefaultStyle)
			unplaced = append(unplaced, l)
		}

		r.entries[id] = entry
		ingested = append(ingested, id)
	}
	r.mu.Unlock()

	r.applyOffsets(r.opt.Optimize(unplaced))

	logging.Debug().
		Str("layer", layer.Name).
		Str("scope", effective.String()).
		Int("labels", len(ingested)).
		Int("persisted", len(ingested)-len(unplaced)).
		Msg("layer ingested")
	return ingested
}

// OptimizeScope re-runs the optimizer across every visible entry of the
// scope that has no persisted style. Returns the number of labels moved.
func (r *Registry) OptimizeScope(scope models.LabelScope) int {
	r.mu.RLock()
	batch := make([]*models.Label, 0, len(r.entries))
	for _, e := range r.entries {
		if e.PersistentStyle || !e.Scope.Equal(scope) || !e.Label.Visible {
			continue
		}
		batch = append(batch, e.Label)
	}
	r.mu.RUnlock()

	return r.applyOffsets(r.opt.Optimize(batch))
}

// applyOffsets writes optimizer results onto the live labels.
func (r *Registry) applyOffsets(offsets map[models.LabelID]models.Offset) int {
	moved := 0
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, off := range offsets {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if e.Label.Offset != off {
			moved++
		}
		e.Label.Offset = off
	}
	return moved
}

// Mutate applies fn to the entry's label under the registry write lock.
// Style edits from the HTTP API and drag updates from the pointer stream
// both go through here so they never interleave on the same label.
func (r *Registry) Mutate(id models.LabelID, fn func(*models.Label)) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	fn(e.Label)
	return e, true
}

// Get returns the entry for id.
func (r *Registry) Get(id models.LabelID) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// MarkDirty flags an entry as having unsaved edits and records that its
// style is now user intent.
func (r *Registry) MarkDirty(id models.LabelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.Dirty = true
		e.PersistentStyle = true
	}
}

// DirtyRecords snapshots all dirty entries of the scope as persisted records
// stamped with now, and clears their dirty flags. The caller is expected to
// persist the returned map; on save failure it should re-mark the entries.
func (r *Registry) DirtyRecords(scope models.LabelScope, now time.Time) map[models.LabelID]models.PersistedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[models.LabelID]models.PersistedRecord)
	for id, e := range r.entries {
		if !e.Dirty || !e.Scope.Equal(scope) {
			continue
		}
		out[id] = models.RecordFromLabel(e.Label, now)
		e.Dirty = false
	}
	return out
}

// MarkDirtyAll re-flags the given IDs, used to restore state after a failed
// save so the auto-save timer retries them.
func (r *Registry) MarkDirtyAll(ids []models.LabelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Dirty = true
		}
	}
}

// Entries returns all entries belonging to the scope.
func (r *Registry) Entries(scope models.LabelScope) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Scope.Equal(scope) {
			out = append(out, e)
		}
	}
	return out
}

// ClearOtherViews drops every entry whose scope renders a different map view
// than the given scope. Called on scope switch so old entries are never
// mixed with the new view's labels.
func (r *Registry) ClearOtherViews(scope models.LabelScope) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, e := range r.entries {
		if !e.Scope.SameView(scope) {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func applyLayerStyle(l *models.Label, style *models.LayerStyle) {
	if l.FontSize <= 0 {
		l.FontSize = models.DefaultFontSize
	}
	if l.FontWeight == "" {
		l.FontWeight = models.FontWeightNormal
	}
	if style == nil {
		return
	}
	if style.FontSize > 0 {
		l.FontSize = style.FontSize
	}
	if style.FontWeight != "" {
		l.FontWeight = style.FontWeight
	}
	if style.Background != nil {
		l.Background = style.Background
	}
}
