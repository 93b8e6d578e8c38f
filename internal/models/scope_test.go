// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package models

import (
	"errors"
	"testing"
)

const testProjectID = "5f0e8f9a-1b2c-4d3e-8f9a-0b1c2d3e4f5a"

func TestLabelScope_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scope   LabelScope
		wantErr bool
	}{
		{
			name:  "complete scope",
			scope: LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1", MapType: MapTypeRadius},
		},
		{
			name:    "missing project",
			scope:   LabelScope{MapConfigID: "cfg-1", MapType: MapTypeRadius},
			wantErr: true,
		},
		{
			name:    "missing map config",
			scope:   LabelScope{ProjectID: testProjectID, MapType: MapTypeRadius},
			wantErr: true,
		},
		{
			name:    "missing map type",
			scope:   LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1"},
			wantErr: true,
		},
		{
			name:    "project id not a uuid",
			scope:   LabelScope{ProjectID: "project-1", MapConfigID: "cfg-1", MapType: MapTypeRadius},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLabelScope_ValidateIncomplete(t *testing.T) {
	err := LabelScope{ProjectID: testProjectID}.Validate()
	if !errors.Is(err, ErrIncompleteScope) {
		t.Errorf("expected ErrIncompleteScope, got %v", err)
	}
}

func TestLabelScope_Matches(t *testing.T) {
	full := LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1", MapType: MapTypeZip}

	tests := []struct {
		name         string
		stored       LabelScope
		allowPartial bool
		want         bool
	}{
		{
			name:   "exact match",
			stored: full,
			want:   true,
		},
		{
			name:   "different map type",
			stored: LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1", MapType: MapTypeCounty},
			want:   false,
		},
		{
			name:   "missing map type strict",
			stored: LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1"},
			want:   false,
		},
		{
			name:         "missing map type legacy",
			stored:       LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1"},
			allowPartial: true,
			want:         true,
		},
		{
			name:         "different project never matches",
			stored:       LabelScope{ProjectID: "00000000-0000-4000-8000-000000000000", MapConfigID: "cfg-1", MapType: MapTypeZip},
			allowPartial: true,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stored.Matches(full, tt.allowPartial); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelScope_SameView(t *testing.T) {
	a := LabelScope{ProjectID: testProjectID, MapConfigID: "cfg-1", MapType: MapTypeRadius}

	sameViewOtherProject := a
	sameViewOtherProject.ProjectID = "00000000-0000-4000-8000-000000000000"
	if !a.SameView(sameViewOtherProject) {
		t.Error("scopes differing only in project should render the same view")
	}

	otherConfig := a
	otherConfig.MapConfigID = "cfg-2"
	if a.SameView(otherConfig) {
		t.Error("different map configuration is a different view")
	}

	otherType := a
	otherType.MapType = MapTypeZip
	if a.SameView(otherType) {
		t.Error("different map type is a different view")
	}
}
