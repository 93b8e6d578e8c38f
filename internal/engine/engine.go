// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/marketmap/internal/interaction"
	"github.com/tomtom215/marketmap/internal/kv"
	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/models"
	"github.com/tomtom215/marketmap/internal/optimizer"
	"github.com/tomtom215/marketmap/internal/registry"
	"github.com/tomtom215/marketmap/internal/store"
	"github.com/tomtom215/marketmap/internal/surface"
)

// Options configures an Engine.
type Options struct {
	// AllowPartialScope restores legacy read-side matching of records with
	// missing scope fields. Default off.
	AllowPartialScope bool

	// AutoSaveInterval for the periodic flush. Default 30s.
	AutoSaveInterval time.Duration

	// Mode selects the interaction flow. Default ModeClickSelect.
	Mode interaction.Mode
}

// Engine is the top-level orchestrator of the label subsystem.
type Engine struct {
	mu    sync.Mutex
	scope models.LabelScope

	pos  *store.PositionStore
	reg  *registry.Registry
	ctrl *interaction.Controller
	surf surface.Surface
}

// New constructs an engine over the given persistent store and map surface.
func New(backend kv.Store, surf surface.Surface, opts Options) *Engine {
	pos := store.New(backend, opts.AllowPartialScope)
	opt := optimizer.New()
	reg := registry.New(pos, opt)
	ctrl := interaction.NewController(reg, pos, surf, opts.Mode, opts.AutoSaveInterval)

	return &Engine{pos: pos, reg: reg, ctrl: ctrl, surf: surf}
}

// AutoSaver returns the periodic auto-save service for supervision. It
// implements suture.Service.
func (e *Engine) AutoSaver() *interaction.Controller {
	return e.ctrl
}

// Scope returns the active scope.
func (e *Engine) Scope() models.LabelScope {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scope
}

// SetScope switches the active (project, configuration, type) scope. When
// the new scope renders a different map view, registry entries from the old
// view are dropped so they are never mixed with the new one, and the new
// scope's persisted records are reloaded.
func (e *Engine) SetScope(scope models.LabelScope) models.OpResult {
	if err := scope.Validate(); err != nil {
		return models.Fail("invalid scope: %v", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scope.Equal(scope) {
		return models.OKMsg("scope unchanged")
	}

	if !e.scope.SameView(scope) {
		dropped := e.reg.ClearOtherViews(scope)
		if dropped > 0 {
			logging.Info().
				Str("scope", scope.String()).
				Int("dropped", dropped).
				Msg("registry cleared for new map view")
		}
	}

	e.scope = scope
	e.ctrl.SetScope(scope)

	records := e.pos.Load(scope)
	logging.Info().
		Str("scope", scope.String()).
		Int("records", len(records)).
		Msg("scope activated")
	return models.OK(len(records))
}

// IngestLayer registers a rendered layer's labels under the active scope,
// applying persisted records and optimizing the rest.
func (e *Engine) IngestLayer(layer *models.Layer) models.OpResult {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()

	if err := scope.Validate(); err != nil {
		return models.Fail("no active scope: %v", err)
	}

	ids := e.reg.Ingest(layer, scope)
	return models.OK(len(ids))
}

// OptimizeAll re-runs the optimizer across every visible label of the
// active scope that has no persisted position. Used after bulk layer loads.
func (e *Engine) OptimizeAll() models.OpResult {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()

	moved := e.reg.OptimizeScope(scope)
	return models.OK(moved)
}

// EnterEditMode enables label selection.
func (e *Engine) EnterEditMode() { e.ctrl.EnterEditMode() }

// ExitEditMode disables selection, clearing it unless preserve is set.
func (e *Engine) ExitEditMode(preserve bool) { e.ctrl.ExitEditMode(preserve) }

// Select programmatically selects a label of the active scope.
func (e *Engine) Select(id models.LabelID) models.OpResult { return e.ctrl.Select(id) }

// StartDrag begins repositioning the selected label.
func (e *Engine) StartDrag(pt models.Point) models.OpResult { return e.ctrl.StartDrag(pt) }

// StopDrag ends the active drag session.
func (e *Engine) StopDrag() models.OpResult { return e.ctrl.StopDrag() }

// HandlePointer feeds one surface pointer event into the interaction state
// machine.
func (e *Engine) HandlePointer(ctx context.Context, ev surface.PointerEvent) models.OpResult {
	return e.ctrl.HandleEvent(ctx, ev)
}

// UpdateOffset sets a label's offset and marks it for persistence.
func (e *Engine) UpdateOffset(id models.LabelID, off models.Offset) models.OpResult {
	return e.mutate(id, func(l *models.Label) { l.Offset = off })
}

// UpdateFontSize sets a label's font size and marks it for persistence.
func (e *Engine) UpdateFontSize(id models.LabelID, size float64) models.OpResult {
	if size <= 0 {
		return models.Fail("font size must be positive, got %v", size)
	}
	return e.mutate(id, func(l *models.Label) { l.FontSize = size })
}

// UpdateText sets a label's text and marks it for persistence.
func (e *Engine) UpdateText(id models.LabelID, text string) models.OpResult {
	return e.mutate(id, func(l *models.Label) { l.Text = text })
}

// mutate applies a style edit to a label of the active scope. Edits to
// labels of a foreign scope are rejected; the write path never crosses
// scopes.
func (e *Engine) mutate(id models.LabelID, fn func(*models.Label)) models.OpResult {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()

	entry, ok := e.reg.Get(id)
	if !ok {
		return models.Fail("label %s not found", id)
	}
	if !entry.Scope.Equal(scope) {
		return models.Fail("label %s belongs to scope %s, active scope is %s", id, entry.Scope, scope)
	}

	// Applied under the registry lock so a concurrent drag update on the
	// same label cannot interleave with the edit.
	if _, ok := e.reg.Mutate(id, fn); !ok {
		return models.Fail("label %s not found", id)
	}
	e.reg.MarkDirty(id)
	e.surf.UpdateLabel(entry.Label)
	return models.OK(1)
}

// Save flushes dirty records for the active scope.
func (e *Engine) Save(force bool) models.OpResult {
	n, err := e.ctrl.Save(force)
	if err != nil {
		return models.Fail("save failed: %v", err)
	}
	return models.OK(n)
}

// Load returns the persisted records of the active scope.
func (e *Engine) Load() map[models.LabelID]models.PersistedRecord {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()
	return e.pos.Load(scope)
}

// ResetAll deletes every persisted record of the active scope and restores
// the scope's live labels to default position and style.
func (e *Engine) ResetAll() models.OpResult {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()

	if err := e.pos.Delete(scope); err != nil {
		return models.Fail("reset failed: %v", err)
	}

	entries := e.reg.Entries(scope)
	for _, entry := range entries {
		resetLabel(entry)
		e.surf.UpdateLabel(entry.Label)
	}
	return models.OK(len(entries))
}

// ResetOne deletes a single label's persisted record and restores its
// defaults, leaving other labels' records untouched.
func (e *Engine) ResetOne(id models.LabelID) models.OpResult {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()

	entry, ok := e.reg.Get(id)
	if !ok {
		return models.Fail("label %s not found", id)
	}
	if !entry.Scope.Equal(scope) {
		return models.Fail("label %s belongs to scope %s, active scope is %s", id, entry.Scope, scope)
	}

	if err := e.pos.DeleteOne(scope, id); err != nil {
		return models.Fail("reset failed: %v", err)
	}

	resetLabel(entry)
	e.surf.UpdateLabel(entry.Label)
	return models.OK(1)
}

// Entries lists the live entries of the active scope, for inspection APIs.
func (e *Engine) Entries() []*registry.Entry {
	e.mu.Lock()
	scope := e.scope
	e.mu.Unlock()
	return e.reg.Entries(scope)
}

func resetLabel(entry *registry.Entry) {
	entry.Label.Offset = models.Offset{}
	entry.Label.FontSize = models.DefaultFontSize
	entry.Label.FontWeight = models.FontWeightNormal
	entry.Label.Background = nil
	entry.Label.Visible = true
	entry.PersistentStyle = false
	entry.Dirty = false
}
