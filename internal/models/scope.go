// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Map types mirror the product's market-area types. A map configuration
// renders exactly one of these.
const (
	MapTypeRadius     = "radius"
	MapTypeZip        = "zip"
	MapTypeCounty     = "county"
	MapTypePlace      = "place"
	MapTypeTract      = "tract"
	MapTypeBlock      = "block"
	MapTypeBlockGroup = "blockgroup"
	MapTypeCBSA       = "cbsa"
	MapTypeState      = "state"
	MapTypeUSA        = "usa"
	MapTypePipe       = "pipe"
)

// ErrIncompleteScope is returned when a scope is missing one of its three
// fields and partial scopes are not allowed.
var ErrIncompleteScope = errors.New("scope requires projectId, mapConfigId and mapType")

// LabelScope is the (project, map configuration, map type) triple that
// isolates one set of persisted label customizations from another. Records
// saved under one scope must never be applied to labels rendered under a
// different one.
type LabelScope struct {
	ProjectID   string `json:"projectId" validate:"required,uuid4"`
	MapConfigID string `json:"mapConfigId" validate:"required"`
	MapType     string `json:"mapType" validate:"required"`
}

// Validate checks that all three scope fields are present and that the
// project ID is a UUID, matching the backend's project keys. Earlier clients
// wrote records with missing scope fields; those are handled on the read path
// only (see Matches).
func (s LabelScope) Validate() error {
	if s.ProjectID == "" || s.MapConfigID == "" || s.MapType == "" {
		return ErrIncompleteScope
	}
	if _, err := uuid.Parse(s.ProjectID); err != nil {
		return fmt.Errorf("projectId %q is not a valid UUID: %w", s.ProjectID, err)
	}
	return nil
}

// Equal reports whether two scopes are identical in all three fields.
func (s LabelScope) Equal(other LabelScope) bool {
	return s.ProjectID == other.ProjectID &&
		s.MapConfigID == other.MapConfigID &&
		s.MapType == other.MapType
}

// Matches reports whether a record stored under scope s may be applied under
// the active scope. With allowPartial false (the default) this is strict
// equality. With allowPartial true, a field missing on either side matches
// anything, preserving compatibility with records written before scoping was
// mandatory.
func (s LabelScope) Matches(active LabelScope, allowPartial bool) bool {
	if !allowPartial {
		return s.Equal(active)
	}
	fieldMatch := func(a, b string) bool {
		return a == "" || b == "" || a == b
	}
	return fieldMatch(s.ProjectID, active.ProjectID) &&
		fieldMatch(s.MapConfigID, active.MapConfigID) &&
		fieldMatch(s.MapType, active.MapType)
}

// SameView reports whether two scopes render the same map view, i.e. share
// map configuration and type. A change in either invalidates the registry.
func (s LabelScope) SameView(other LabelScope) bool {
	return s.MapConfigID == other.MapConfigID && s.MapType == other.MapType
}

func (s LabelScope) String() string {
	return fmt.Sprintf("%s/%s/%s", s.ProjectID, s.MapConfigID, s.MapType)
}
