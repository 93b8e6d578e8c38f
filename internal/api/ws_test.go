// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/marketmap/internal/engine"
	"github.com/tomtom215/marketmap/internal/interaction"
	"github.com/tomtom215/marketmap/internal/kv"
	"github.com/tomtom215/marketmap/internal/models"
	"github.com/tomtom215/marketmap/internal/surface"
)

// recordingSink captures pointer events fed through the bridge.
type recordingSink struct {
	mu     sync.Mutex
	events []surface.PointerEvent
}

func (s *recordingSink) HandlePointer(_ context.Context, ev surface.PointerEvent) models.OpResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return models.OK(1)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func dialBridge(t *testing.T, bridge *SurfaceBridge) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(bridge.Handle))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSurfaceBridge_HitTestWithoutSurface(t *testing.T) {
	bridge := NewSurfaceBridge(nil, nil)

	_, err := bridge.HitTest(context.Background(), models.Point{X: 1, Y: 1})
	if !errors.Is(err, ErrNoSurface) {
		t.Errorf("HitTest() error = %v, want ErrNoSurface", err)
	}
}

func TestSurfaceBridge_HitTestRoundTrip(t *testing.T) {
	sink := &recordingSink{}
	bridge := NewSurfaceBridge(sink, nil)
	conn := dialBridge(t, bridge)

	// Play the surface: answer the first hit-test request.
	go func() {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != msgHitTest {
			return
		}
		_ = conn.WriteJSON(wsMessage{
			Type: msgHitTestResult,
			ID:   msg.ID,
			Hits: []models.LabelID{"f:1", "f:2"},
		})
	}()

	// The server registers the connection after the upgrade; allow it a
	// moment before issuing the hit-test.
	deadline := time.Now().Add(time.Second)
	var (
		hits []models.LabelID
		err  error
	)
	for {
		hits, err = bridge.HitTest(context.Background(), models.Point{X: 100, Y: 100})
		if !errors.Is(err, ErrNoSurface) || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("HitTest() error = %v", err)
	}
	if len(hits) != 2 || hits[0] != "f:1" {
		t.Errorf("HitTest() = %v, want [f:1 f:2]", hits)
	}
}

// TestSurfaceBridge_ClickSelectOverConnection drives the full click-select
// flow through one real websocket connection: the pointer-down rides the
// same connection that must carry the hit-test request out and its reply
// back. The reply can only be read while the pointer-down is still being
// handled, so selection works only if the read loop is not blocked on it.
func TestSurfaceBridge_ClickSelectOverConnection(t *testing.T) {
	bridge := NewSurfaceBridge(nil, nil)
	eng := engine.New(kv.NewMemoryStore(), bridge, engine.Options{Mode: interaction.ModeClickSelect})
	bridge.SetSink(eng)

	eng.SetScope(models.LabelScope{
		ProjectID:   "5f0e8f9a-1b2c-4d3e-8f9a-0b1c2d3e4f5a",
		MapConfigID: "cfg-1",
		MapType:     models.MapTypeRadius,
	})
	eng.IngestLayer(&models.Layer{
		Name: "market-areas",
		Labels: []*models.Label{{
			Text:        "Downtown",
			Visible:     true,
			AnchorPoint: models.Point{X: 100, Y: 100},
			Attributes:  models.LabelAttributes{FeatureID: 1},
		}},
	})
	eng.EnterEditMode()

	conn := dialBridge(t, bridge)

	// Play the surface: answer every hit-test on the connection the
	// pointer stream rides on.
	go func() {
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == msgHitTest {
				_ = conn.WriteJSON(wsMessage{
					Type: msgHitTestResult,
					ID:   msg.ID,
					Hits: []models.LabelID{"f:1"},
				})
			}
		}
	}()

	down := surface.PointerEvent{Type: surface.PointerDown, Position: models.Point{X: 100, Y: 100}}
	if err := conn.WriteJSON(wsMessage{Type: msgPointer, Event: &down}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Selection lands once the hit-test resolves; a drag can start as soon
	// as it does. Well inside the hit-test timeout, so a stalled reply
	// fails the test instead of degrading to a miss.
	deadline := time.Now().Add(time.Second)
	for {
		if res := eng.StartDrag(models.Point{X: 100, Y: 100}); res.Success {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("label never selected from the pointer-down hit-test")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// A displaced connection's teardown must not break pushes to its
// replacement, and senders holding the old queue must not panic.
func TestSurfaceBridge_ReplacedConnection(t *testing.T) {
	bridge := NewSurfaceBridge(&recordingSink{}, nil)
	conn1 := dialBridge(t, bridge)
	conn2 := dialBridge(t, bridge)

	// The bridge closes the displaced connection once the new one is
	// registered; wait for that handover.
	_ = conn1.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := conn1.ReadMessage(); err != nil {
			break
		}
	}

	bridge.SetNavigationEnabled(false)
	bridge.UpdateLabel(&models.Label{ID: "f:1", Text: "Downtown"})

	_ = conn2.SetReadDeadline(time.Now().Add(time.Second))
	for {
		var msg wsMessage
		if err := conn2.ReadJSON(&msg); err != nil {
			t.Fatalf("read on replacement connection: %v", err)
		}
		if msg.Type == msgLabelUpdate && msg.Label != nil && msg.Label.ID == "f:1" {
			return
		}
	}
}

func TestSurfaceBridge_PointerEventsReachSink(t *testing.T) {
	sink := &recordingSink{}
	bridge := NewSurfaceBridge(sink, nil)
	conn := dialBridge(t, bridge)

	ev := surface.PointerEvent{Type: surface.PointerDown, Position: models.Point{X: 10, Y: 20}}
	if err := conn.WriteJSON(wsMessage{Type: msgPointer, Event: &ev}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("pointer event never reached the sink")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sink.mu.Lock()
	got := sink.events[0]
	sink.mu.Unlock()
	if got.Type != surface.PointerDown || got.Position != (models.Point{X: 10, Y: 20}) {
		t.Errorf("event = %+v", got)
	}
}

func TestSurfaceBridge_LateHitTestResultDropped(t *testing.T) {
	bridge := NewSurfaceBridge(&recordingSink{}, nil)
	conn := dialBridge(t, bridge)

	// A result for an unknown correlation ID must not panic or block.
	if err := conn.WriteJSON(wsMessage{
		Type: msgHitTestResult,
		ID:   "stale",
		Hits: []models.LabelID{"f:1"},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
}

func TestSurfaceBridge_OriginCheck(t *testing.T) {
	bridge := NewSurfaceBridge(nil, []string{"http://localhost:5173"})

	ts := httptest.NewServer(http.HandlerFunc(bridge.Handle))
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	headers := http.Header{"Origin": []string{"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, headers); err == nil {
		t.Error("dial with disallowed origin succeeded")
	}

	headers = http.Header{"Origin": []string{"http://localhost:5173"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, headers)
	if err != nil {
		t.Fatalf("dial with allowed origin failed: %v", err)
	}
	conn.Close()
}

func TestSurfaceBridge_UpdateLabelWithoutSurface(t *testing.T) {
	bridge := NewSurfaceBridge(nil, nil)

	// Best effort: no surface connected means the update is dropped.
	bridge.UpdateLabel(&models.Label{ID: "f:1"})
	bridge.SetNavigationEnabled(false)
}
