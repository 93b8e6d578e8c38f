// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/marketmap/internal/engine"
	"github.com/tomtom215/marketmap/internal/models"
)

// Handler serves the label engine's REST operations.
type Handler struct {
	eng      *engine.Engine
	validate *validator.Validate
}

// NewHandler creates a Handler over the engine.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{
		eng:      eng,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// scopeRequest mirrors models.LabelScope on the wire.
type scopeRequest struct {
	ProjectID   string `json:"projectId" validate:"required,uuid4"`
	MapConfigID string `json:"mapConfigId" validate:"required"`
	MapType     string `json:"mapType" validate:"required"`
}

// SetScope activates a (project, configuration, type) scope.
// PUT /api/v1/scope
func (h *Handler) SetScope(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	res := h.eng.SetScope(models.LabelScope{
		ProjectID:   req.ProjectID,
		MapConfigID: req.MapConfigID,
		MapType:     req.MapType,
	})
	h.respondResult(w, r, res)
}

// IngestLayer registers a rendered layer's labels.
// POST /api/v1/layers
func (h *Handler) IngestLayer(w http.ResponseWriter, r *http.Request) {
	var layer models.Layer
	if err := decodeJSON(r, &layer); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if len(layer.Labels) == 0 {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "layer has no labels")
		return
	}

	h.respondResult(w, r, h.eng.IngestLayer(&layer))
}

// Optimize re-runs collision avoidance across the active scope.
// POST /api/v1/optimize
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	h.respondResult(w, r, h.eng.OptimizeAll())
}

// labelState is the wire representation of a tracked label.
type labelState struct {
	Label           *models.Label `json:"label"`
	PersistentStyle bool          `json:"persistentStyle"`
	Dirty           bool          `json:"dirty"`
}

// Labels lists the live labels of the active scope.
// GET /api/v1/labels
func (h *Handler) Labels(w http.ResponseWriter, r *http.Request) {
	entries := h.eng.Entries()
	out := make([]labelState, 0, len(entries))
	for _, e := range entries {
		out = append(out, labelState{
			Label:           e.Label,
			PersistentStyle: e.PersistentStyle,
			Dirty:           e.Dirty,
		})
	}
	respondJSON(w, r, http.StatusOK, out)
}

// Records returns the persisted records of the active scope.
// GET /api/v1/records
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.eng.Load())
}

type saveRequest struct {
	Force bool `json:"force"`
}

// Save flushes dirty records.
// POST /api/v1/labels/save
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
			return
		}
	}
	res := h.eng.Save(req.Force)
	if !res.Success {
		respondError(w, r, http.StatusInternalServerError, CodeStorage, res.Message)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// updateRequest carries optional style edits; absent fields are untouched.
type updateRequest struct {
	Offset   *models.Offset `json:"offset,omitempty"`
	FontSize *float64       `json:"fontSize,omitempty"`
	Text     *string        `json:"text,omitempty"`
}

// UpdateLabel applies style edits to one label.
// PATCH /api/v1/labels/{id}
func (h *Handler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	id := models.LabelID(chi.URLParam(r, "id"))

	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if req.Offset == nil && req.FontSize == nil && req.Text == nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, "no fields to update")
		return
	}

	if req.Offset != nil {
		if res := h.eng.UpdateOffset(id, *req.Offset); !res.Success {
			h.respondResult(w, r, res)
			return
		}
	}
	if req.FontSize != nil {
		if res := h.eng.UpdateFontSize(id, *req.FontSize); !res.Success {
			h.respondResult(w, r, res)
			return
		}
	}
	if req.Text != nil {
		if res := h.eng.UpdateText(id, *req.Text); !res.Success {
			h.respondResult(w, r, res)
			return
		}
	}
	respondJSON(w, r, http.StatusOK, models.OK(1))
}

// ResetOne removes one label's persisted record and restores defaults.
// DELETE /api/v1/labels/{id}
func (h *Handler) ResetOne(w http.ResponseWriter, r *http.Request) {
	id := models.LabelID(chi.URLParam(r, "id"))
	h.respondResult(w, r, h.eng.ResetOne(id))
}

// ResetAll clears every persisted record of the active scope.
// DELETE /api/v1/labels
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.respondResult(w, r, h.eng.ResetAll())
}

type editModeRequest struct {
	Enabled           bool `json:"enabled"`
	PreserveSelection bool `json:"preserveSelection"`
}

// EditMode toggles edit mode.
// POST /api/v1/edit-mode
func (h *Handler) EditMode(w http.ResponseWriter, r *http.Request) {
	var req editModeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if req.Enabled {
		h.eng.EnterEditMode()
	} else {
		h.eng.ExitEditMode(req.PreserveSelection)
	}
	respondJSON(w, r, http.StatusOK, models.OK(1))
}

type selectRequest struct {
	ID models.LabelID `json:"id" validate:"required"`
}

// Select programmatically selects a label.
// POST /api/v1/select
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	h.respondResult(w, r, h.eng.Select(req.ID))
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// respondResult maps an engine OpResult onto an HTTP response. Expected
// failures carry descriptive messages; the status code follows the message
// category.
func (h *Handler) respondResult(w http.ResponseWriter, r *http.Request, res models.OpResult) {
	if res.Success {
		respondJSON(w, r, http.StatusOK, res)
		return
	}

	msg := res.Message
	switch {
	case strings.Contains(msg, "not found"):
		respondError(w, r, http.StatusNotFound, CodeNotFound, msg)
	case strings.Contains(msg, "belongs to scope"):
		respondError(w, r, http.StatusConflict, CodeScopeMismatch, msg)
	case strings.Contains(msg, "already active") || strings.Contains(msg, "no active scope"):
		respondError(w, r, http.StatusConflict, CodeConflict, msg)
	case strings.Contains(msg, "invalid") || strings.Contains(msg, "must be"):
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, msg)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, msg)
	}
}
