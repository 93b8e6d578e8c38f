// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marketmap/internal/config"
	"github.com/tomtom215/marketmap/internal/engine"
	"github.com/tomtom215/marketmap/internal/kv"
	"github.com/tomtom215/marketmap/internal/models"
)

const testProjectID = "5f0e8f9a-1b2c-4d3e-8f9a-0b1c2d3e4f5a"

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		CORSOrigins:     []string{"http://localhost:5173"},
		RateLimit:       1000,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	bridge := NewSurfaceBridge(nil, nil)
	eng := engine.New(kv.NewMemoryStore(), bridge, engine.Options{})
	bridge.SetSink(eng)

	router := NewRouter(testServerConfig(), NewHandler(eng), bridge)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, eng
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, envelope
}

func setScope(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp, env := doJSON(t, http.MethodPut, ts.URL+"/api/v1/scope", map[string]string{
		"projectId":   testProjectID,
		"mapConfigId": "cfg-1",
		"mapType":     models.MapTypeRadius,
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("set scope: status=%d envelope=%+v", resp.StatusCode, env)
	}
}

func ingestLayer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	layer := models.Layer{
		Name: "market-areas",
		Labels: []*models.Label{
			{
				Text:        "Downtown",
				Visible:     true,
				AnchorPoint: models.Point{X: 100, Y: 100},
				Attributes:  models.LabelAttributes{FeatureID: 1},
			},
		},
	}
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/layers", layer)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("ingest layer: status=%d envelope=%+v", resp.StatusCode, env)
	}
}

func TestAPI_Health(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, env := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Errorf("healthz: status=%d envelope=%+v", resp.StatusCode, env)
	}
}

func TestAPI_SetScopeValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing fields", body: map[string]string{"projectId": testProjectID}},
		{name: "bad uuid", body: map[string]string{"projectId": "nope", "mapConfigId": "c", "mapType": "radius"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doJSON(t, http.MethodPut, ts.URL+"/api/v1/scope", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if env.Success || env.Error == nil || env.Error.Code != CodeBadRequest {
				t.Errorf("envelope = %+v, want bad_request error", env)
			}
		})
	}
}

func TestAPI_LayerLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	setScope(t, ts)
	ingestLayer(t, ts)

	resp, env := doJSON(t, http.MethodGet, ts.URL+"/api/v1/labels", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("labels: status=%d envelope=%+v", resp.StatusCode, env)
	}
	data, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var states []labelState
	if err := json.Unmarshal(data, &states); err != nil {
		t.Fatalf("decode label states: %v", err)
	}
	if len(states) != 1 || states[0].Label.ID != "f:1" {
		t.Fatalf("states = %+v, want one entry f:1", states)
	}
}

func TestAPI_IngestWithoutScope(t *testing.T) {
	ts, _ := newTestServer(t)

	layer := models.Layer{
		Name:   "market-areas",
		Labels: []*models.Label{{Text: "Downtown", Visible: true, Attributes: models.LabelAttributes{FeatureID: 1}}},
	}
	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/layers", layer)
	if resp.StatusCode == http.StatusOK || env.Success {
		t.Errorf("ingest without scope: status=%d envelope=%+v", resp.StatusCode, env)
	}
}

func TestAPI_IngestEmptyLayer(t *testing.T) {
	ts, _ := newTestServer(t)
	setScope(t, ts)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/v1/layers", models.Layer{Name: "empty"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPI_UpdateLabel(t *testing.T) {
	ts, eng := newTestServer(t)
	setScope(t, ts)
	ingestLayer(t, ts)

	resp, env := doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:1", map[string]any{
		"offset":   map[string]float64{"x": 12, "y": -8},
		"fontSize": 14,
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("patch: status=%d envelope=%+v", resp.StatusCode, env)
	}

	entries := eng.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	l := entries[0].Label
	if l.Offset != (models.Offset{X: 12, Y: -8}) || l.FontSize != 14 {
		t.Errorf("label after patch = %+v", l)
	}

	t.Run("empty patch rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:1", map[string]any{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown label is 404", func(t *testing.T) {
		resp, env := doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:999", map[string]any{
			"fontSize": 14,
		})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != CodeNotFound {
			t.Errorf("envelope = %+v", env)
		}
	})

	t.Run("bad font size is 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:1", map[string]any{
			"fontSize": -1,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestAPI_SaveAndRecords(t *testing.T) {
	ts, _ := newTestServer(t)
	setScope(t, ts)
	ingestLayer(t, ts)

	doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:1", map[string]any{
		"offset": map[string]float64{"x": 5, "y": 5},
	})

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/labels/save", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("save: status=%d envelope=%+v", resp.StatusCode, env)
	}

	resp, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("records: status=%d envelope=%+v", resp.StatusCode, env)
	}
	data, _ := json.Marshal(env.Data)
	var records map[models.LabelID]models.PersistedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if records["f:1"].Offset != (models.Offset{X: 5, Y: 5}) {
		t.Errorf("records = %+v", records)
	}
}

func TestAPI_ResetEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	setScope(t, ts)
	ingestLayer(t, ts)

	doJSON(t, http.MethodPatch, ts.URL+"/api/v1/labels/f:1", map[string]any{
		"offset": map[string]float64{"x": 5, "y": 5},
	})
	doJSON(t, http.MethodPost, ts.URL+"/api/v1/labels/save", nil)

	resp, env := doJSON(t, http.MethodDelete, ts.URL+"/api/v1/labels/f:1", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("reset one: status=%d envelope=%+v", resp.StatusCode, env)
	}

	resp, env = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/labels", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("reset all: status=%d envelope=%+v", resp.StatusCode, env)
	}

	_, env = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records", nil)
	data, _ := json.Marshal(env.Data)
	var records map[models.LabelID]models.PersistedRecord
	_ = json.Unmarshal(data, &records)
	if len(records) != 0 {
		t.Errorf("records after reset = %+v, want empty", records)
	}
}

func TestAPI_EditModeAndSelect(t *testing.T) {
	ts, _ := newTestServer(t)
	setScope(t, ts)
	ingestLayer(t, ts)

	resp, env := doJSON(t, http.MethodPost, ts.URL+"/api/v1/edit-mode", map[string]bool{"enabled": true})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("edit mode: status=%d envelope=%+v", resp.StatusCode, env)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/v1/select", map[string]string{"id": "f:1"})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("select: status=%d envelope=%+v", resp.StatusCode, env)
	}

	resp, env = doJSON(t, http.MethodPost, ts.URL+"/api/v1/select", map[string]string{"id": "f:999"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("select unknown: status=%d envelope=%+v", resp.StatusCode, env)
	}
}

func TestAPI_RequestIDEchoed(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get(requestIDHeader); got != "req-123" {
		t.Errorf("echoed request id = %q, want req-123", got)
	}
}

func TestAPI_UnknownFieldRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/api/v1/scope", map[string]string{
		"projectId":   testProjectID,
		"mapConfigId": "cfg-1",
		"mapType":     models.MapTypeRadius,
		"surprise":    "field",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown field", resp.StatusCode)
	}
}
