// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package interaction

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/metrics"
	"github.com/tomtom215/marketmap/internal/models"
	"github.com/tomtom215/marketmap/internal/registry"
	"github.com/tomtom215/marketmap/internal/store"
	"github.com/tomtom215/marketmap/internal/surface"
)

// Mode selects how a drag is initiated. The two flows are mutually
// exclusive; the inactive flow's handlers are no-ops.
type Mode int

const (
	// ModeClickSelect requires edit mode: a click selects a label, then an
	// explicit StartDrag begins repositioning.
	ModeClickSelect Mode = iota

	// ModeDirectDrag fuses selection and drag start into a single
	// pointer-down hit-test, for flows without an edit-mode toggle.
	ModeDirectDrag
)

// DefaultAutoSaveInterval is how often the auto-save service flushes dirty
// records when the caller does not configure it.
const DefaultAutoSaveInterval = 30 * time.Second

// Controller owns the selection and drag state. It is the sole writer of
// the drag session; all handlers serialize on its mutex, preserving the
// event-order guarantee of the synchronous pointer stream.
type Controller struct {
	mu sync.Mutex

	reg  *registry.Registry
	pos  *store.PositionStore
	surf surface.Surface
	mode Mode

	scope    models.LabelScope
	editMode bool
	selected models.LabelID
	drag     *models.DragSession

	autoSaveInterval time.Duration
	now              func() time.Time
}

// NewController creates a controller in the given interaction mode.
func NewController(reg *registry.Registry, pos *store.PositionStore, surf surface.Surface, mode Mode, autoSave time.Duration) *Controller {
	if autoSave <= 0 {
		autoSave = DefaultAutoSaveInterval
	}
	return &Controller{
		reg:              reg,
		pos:              pos,
		surf:             surf,
		mode:             mode,
		autoSaveInterval: autoSave,
		now:              time.Now,
	}
}

// SetScope points the controller at a new active scope, clearing selection.
// An in-flight drag is finished first, with the same forced save as a
// pointer-up, while the outgoing scope is still active; the dragged offset
// is never silently dropped.
func (c *Controller) SetScope(scope models.LabelScope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag != nil {
		c.finishDragLocked()
	}
	c.selected = ""
	c.scope = scope
}

// EnterEditMode enables selection hit-testing.
func (c *Controller) EnterEditMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editMode = true
}

// ExitEditMode disables selection. The active selection is cleared unless
// preserveSelection is set. Exiting mid-drag finishes the drag first, with
// the same forced save as a pointer-up.
func (c *Controller) ExitEditMode(preserveSelection bool) {
	c.mu.Lock()
	if c.drag != nil {
		c.finishDragLocked()
	}
	c.editMode = false
	if !preserveSelection {
		c.selected = ""
	}
	c.mu.Unlock()
}

// EditMode reports whether edit mode is active.
func (c *Controller) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editMode
}

// Selected returns the currently selected label, if any.
func (c *Controller) Selected() (models.LabelID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

// Select programmatically selects a label. Cross-scope labels are rejected;
// records from one map view must never be editable from another.
func (c *Controller) Select(id models.LabelID) models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.reg.Get(id)
	if !ok {
		return models.Fail("label %s not found", id)
	}
	if !e.Scope.Equal(c.scope) {
		return models.Fail("label %s belongs to scope %s, active scope is %s", id, e.Scope, c.scope)
	}
	c.selected = id
	return models.OK(1)
}

// Click performs the edit-mode hit-test selection flow: the first hit that
// is a tracked label of the active scope is selected; a miss deselects.
// Outside edit mode, or in direct-drag mode, clicks are ignored.
func (c *Controller) Click(ctx context.Context, pt models.Point) models.OpResult {
	c.mu.Lock()
	if !c.editMode || c.mode != ModeClickSelect || c.drag != nil {
		c.mu.Unlock()
		return models.OKMsg("click ignored")
	}
	scope := c.scope
	c.mu.Unlock()

	// The hit-test suspends; the lock is not held across it.
	hits, err := c.hitTest(ctx, pt)
	if err != nil {
		return models.Fail("hit test failed: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !scope.Equal(c.scope) {
		// Scope changed while the hit-test was in flight.
		return models.OKMsg("scope changed during hit test")
	}

	for _, id := range hits {
		e, ok := c.reg.Get(id)
		if !ok || !e.Scope.Equal(c.scope) {
			continue
		}
		c.selected = id
		return models.OK(1)
	}
	c.selected = ""
	return models.OKMsg("no label under pointer")
}

// StartDrag begins repositioning the selected label from the given pointer
// position. Valid only when a label is selected and no drag is active; a
// second start is rejected and does not alter the live session.
func (c *Controller) StartDrag(pt models.Point) models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startDragLocked(pt)
}

func (c *Controller) startDragLocked(pt models.Point) models.OpResult {
	if c.drag != nil {
		metrics.DragRejected.Inc()
		return models.Fail("drag already active for label %s", c.drag.Label)
	}
	if c.selected == "" {
		return models.Fail("no label selected")
	}
	e, ok := c.reg.Get(c.selected)
	if !ok {
		return models.Fail("selected label %s no longer exists", c.selected)
	}
	if !e.Scope.Equal(c.scope) {
		return models.Fail("label %s belongs to scope %s, active scope is %s", e.ID, e.Scope, c.scope)
	}

	c.drag = &models.DragSession{
		Label:        c.selected,
		PointerStart: pt,
		OffsetStart:  e.Label.Offset,
	}
	c.surf.SetNavigationEnabled(false)
	logging.Debug().Str("label", string(c.selected)).Msg("drag started")
	return models.OK(1)
}

// StopDrag ends an active drag as if the pointer were released at its last
// position.
func (c *Controller) StopDrag() models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return models.OKMsg("no drag active")
	}
	c.finishDragLocked()
	return models.OK(1)
}

// HandleEvent dispatches one pointer event from the surface stream. Events
// are handled synchronously and in order.
func (c *Controller) HandleEvent(ctx context.Context, ev surface.PointerEvent) models.OpResult {
	switch ev.Type {
	case surface.PointerDown:
		return c.pointerDown(ctx, ev.Position)
	case surface.PointerMove:
		return c.pointerMove(ev.Position)
	case surface.PointerUp:
		return c.pointerUp(ev.Position)
	case surface.PointerLeave:
		return c.pointerLeave()
	default:
		return models.Fail("unknown pointer event %q", ev.Type)
	}
}

func (c *Controller) pointerDown(ctx context.Context, pt models.Point) models.OpResult {
	if c.mode == ModeClickSelect {
		return c.Click(ctx, pt)
	}

	// Direct-drag: hit-test and start dragging in one step.
	hits, err := c.hitTest(ctx, pt)
	if err != nil {
		return models.Fail("hit test failed: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range hits {
		e, ok := c.reg.Get(id)
		if !ok || !e.Scope.Equal(c.scope) {
			continue
		}
		c.selected = id
		return c.startDragLocked(pt)
	}
	return models.OKMsg("no label under pointer")
}

// pointerMove applies the drag delta to the live label. The vertical axis
// is inverted: pixel-space Y grows downward while the offset convention
// grows upward. The update is synchronous; no buffering.
func (c *Controller) pointerMove(pt models.Point) models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return models.OKMsg("no drag active")
	}

	dx := pt.X - c.drag.PointerStart.X
	dy := pt.Y - c.drag.PointerStart.Y
	off := c.drag.OffsetStart.Add(models.Offset{X: dx, Y: -dy})
	e, ok := c.reg.Mutate(c.drag.Label, func(l *models.Label) { l.Offset = off })
	if !ok {
		// The renderer rebuilt mid-drag; abandon the session.
		c.surf.SetNavigationEnabled(true)
		c.drag = nil
		return models.Fail("dragged label disappeared")
	}
	c.surf.UpdateLabel(e.Label)
	return models.OK(1)
}

func (c *Controller) pointerUp(pt models.Point) models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return models.OKMsg("no drag active")
	}
	// Apply the final position before persisting so the save observes it.
	dx := pt.X - c.drag.PointerStart.X
	dy := pt.Y - c.drag.PointerStart.Y
	off := c.drag.OffsetStart.Add(models.Offset{X: dx, Y: -dy})
	if e, ok := c.reg.Mutate(c.drag.Label, func(l *models.Label) { l.Offset = off }); ok {
		c.surf.UpdateLabel(e.Label)
	}
	c.finishDragLocked()
	return models.OK(1)
}

// pointerLeave is treated identically to pointer-up at the last known
// position: forced save and state reset, never a silent drop.
func (c *Controller) pointerLeave() models.OpResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return models.OKMsg("no drag active")
	}
	c.finishDragLocked()
	return models.OK(1)
}

// finishDragLocked restores navigation, marks the label dirty and forces a
// save. Must be called with the mutex held.
func (c *Controller) finishDragLocked() {
	id := c.drag.Label
	c.drag = nil
	c.surf.SetNavigationEnabled(true)
	c.reg.MarkDirty(id)
	metrics.DragSessions.Inc()

	if _, err := c.saveLocked(true); err != nil {
		logging.Err(err).Str("label", string(id)).Msg("save after drag failed")
	}
}

// Save flushes dirty records for the active scope. With force false and
// nothing dirty it is a successful no-op.
func (c *Controller) Save(force bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked(force)
}

func (c *Controller) saveLocked(force bool) (int, error) {
	records := c.reg.DirtyRecords(c.scope, c.now())
	n, err := c.pos.Save(c.scope, records, force)
	if err != nil {
		// Re-flag so the auto-save timer retries.
		ids := make([]models.LabelID, 0, len(records))
		for id := range records {
			ids = append(ids, id)
		}
		c.reg.MarkDirtyAll(ids)
		return 0, err
	}
	return n, nil
}

// Serve runs the periodic auto-save until the context is canceled. It
// implements suture.Service and flushes only when at least one record is
// dirty (a non-forced save of an empty batch is a no-op).
func (c *Controller) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.autoSaveInterval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", c.autoSaveInterval).Msg("auto-save service started")
	for {
		select {
		case <-ctx.Done():
			// Final flush so edits made just before shutdown survive.
			if _, err := c.Save(false); err != nil {
				logging.Err(err).Msg("final auto-save failed")
			}
			return ctx.Err()
		case <-ticker.C:
			if n, err := c.Save(false); err != nil {
				logging.Err(err).Msg("auto-save failed")
			} else if n > 0 {
				logging.Debug().Int("records", n).Msg("auto-save flushed")
			}
		}
	}
}

func (c *Controller) hitTest(ctx context.Context, pt models.Point) ([]models.LabelID, error) {
	start := time.Now()
	hits, err := c.surf.HitTest(ctx, pt)
	metrics.HitTestDuration.Observe(time.Since(start).Seconds())
	return hits, err
}
