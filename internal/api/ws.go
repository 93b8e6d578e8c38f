// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/marketmap/internal/logging"
	"github.com/tomtom215/marketmap/internal/metrics"
	"github.com/tomtom215/marketmap/internal/models"
	"github.com/tomtom215/marketmap/internal/surface"
)

// Websocket message types exchanged with the map surface.
const (
	msgPointer       = "pointer"        // client -> server: pointer event
	msgHitTest       = "hittest"        // server -> client: hit-test request
	msgHitTestResult = "hittest_result" // client -> server: hit-test response
	msgLabelUpdate   = "label_update"   // server -> client: live label state
	msgNavigation    = "navigation"     // server -> client: pan/zoom lock
)

// wsMessage is the wire format in both directions. Fields are populated
// according to Type.
type wsMessage struct {
	Type    string                `json:"type"`
	Event   *surface.PointerEvent `json:"event,omitempty"`
	ID      string                `json:"id,omitempty"`
	Point   *models.Point         `json:"point,omitempty"`
	Hits    []models.LabelID      `json:"hits,omitempty"`
	Label   *models.Label         `json:"label,omitempty"`
	Enabled *bool                 `json:"enabled,omitempty"`
}

// hitTestTimeout bounds how long a hit-test waits for the client before the
// engine treats it as a miss.
const hitTestTimeout = 2 * time.Second

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// ErrNoSurface is returned when an operation needs the map surface but no
// websocket client is connected.
var ErrNoSurface = errors.New("no map surface connected")

// PointerSink receives the inbound pointer stream. The engine implements it.
type PointerSink interface {
	HandlePointer(ctx context.Context, ev surface.PointerEvent) models.OpResult
}

// SurfaceBridge implements surface.Surface over a websocket connection to
// the browser map surface. At most one surface is active per map view; a
// new connection replaces the previous one.
type SurfaceBridge struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan wsMessage
	pending map[string]chan []models.LabelID

	sink PointerSink
}

// NewSurfaceBridge creates a bridge feeding pointer events into sink.
func NewSurfaceBridge(sink PointerSink, allowedOrigins []string) *SurfaceBridge {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = struct{}{}
	}
	return &SurfaceBridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := originSet[origin]
				return ok
			},
		},
		pending: make(map[string]chan []models.LabelID),
		sink:    sink,
	}
}

// SetSink replaces the pointer sink. Used when the engine is constructed
// after the bridge (the bridge is the engine's surface dependency).
func (b *SurfaceBridge) SetSink(sink PointerSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sink = sink
}

// Handle upgrades the request and serves the connection until it closes.
func (b *SurfaceBridge) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	send := make(chan wsMessage, 64)
	done := make(chan struct{})
	downs := make(chan surface.PointerEvent, 16)

	b.mu.Lock()
	if b.conn != nil {
		// Last connection wins; the stale surface is closed.
		_ = b.conn.Close()
	}
	b.conn = conn
	b.send = send
	b.mu.Unlock()

	metrics.SurfaceConnections.Inc()
	logging.Info().Str("remote", conn.RemoteAddr().String()).Msg("map surface connected")

	go b.writePump(conn, send, done)
	go b.downWorker(r.Context(), downs)
	b.readPump(r.Context(), conn, downs)

	// The send channel is never closed: a sender holding a stale reference
	// must not panic. The write pump exits via done instead.
	close(done)
	close(downs)

	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
		b.send = nil
	}
	b.mu.Unlock()

	metrics.SurfaceConnections.Dec()
	logging.Info().Str("remote", conn.RemoteAddr().String()).Msg("map surface disconnected")
}

// readPump dispatches inbound messages until the connection closes. Move,
// up and leave events are handled synchronously in arrival order, preserving
// the engine's event-order guarantee. Down events are queued to the
// per-connection worker instead: a down suspends on a hit-test whose reply
// arrives on this same loop, so handling it inline would stall the reply it
// is waiting for.
func (b *SurfaceBridge) readPump(ctx context.Context, conn *websocket.Conn, downs chan<- surface.PointerEvent) {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		switch msg.Type {
		case msgPointer:
			if msg.Event == nil {
				continue
			}
			if msg.Event.Type == surface.PointerDown {
				select {
				case downs <- *msg.Event:
				default:
					logging.Warn().Msg("pointer down queue full, dropping event")
				}
				continue
			}
			b.dispatchPointer(ctx, *msg.Event)
		case msgHitTestResult:
			b.resolveHitTest(msg.ID, msg.Hits)
		default:
			logging.Debug().Str("type", msg.Type).Msg("unknown websocket message")
		}
	}
}

// downWorker drains queued pointer-down events, keeping downs ordered among
// themselves while leaving the read loop free to resolve hit-test replies.
func (b *SurfaceBridge) downWorker(ctx context.Context, downs <-chan surface.PointerEvent) {
	for ev := range downs {
		b.dispatchPointer(ctx, ev)
	}
}

func (b *SurfaceBridge) dispatchPointer(ctx context.Context, ev surface.PointerEvent) {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()
	if sink == nil {
		return
	}
	if res := sink.HandlePointer(ctx, ev); !res.Success {
		logging.Debug().Str("reason", res.Message).Msg("pointer event rejected")
	}
}

func (b *SurfaceBridge) writePump(conn *websocket.Conn, send chan wsMessage, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(msg)
			if err != nil {
				logging.Error().Err(err).Msg("marshal websocket message failed")
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Warn().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}

// HitTest asks the connected surface which label graphics sit under pt and
// waits for the correlated response. This is the engine's only asynchronous
// suspension point.
func (b *SurfaceBridge) HitTest(ctx context.Context, pt models.Point) ([]models.LabelID, error) {
	id := uuid.New().String()
	result := make(chan []models.LabelID, 1)

	b.mu.Lock()
	if b.send == nil {
		b.mu.Unlock()
		return nil, ErrNoSurface
	}
	b.pending[id] = result
	send := b.send
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
	}()

	msg := wsMessage{Type: msgHitTest, ID: id, Point: &pt}
	select {
	case send <- msg:
	default:
		return nil, fmt.Errorf("surface send queue full")
	}

	timer := time.NewTimer(hitTestTimeout)
	defer timer.Stop()
	select {
	case hits := <-result:
		return hits, nil
	case <-timer.C:
		return nil, fmt.Errorf("hit test %s timed out", id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *SurfaceBridge) resolveHitTest(id string, hits []models.LabelID) {
	b.mu.Lock()
	result, ok := b.pending[id]
	b.mu.Unlock()
	if !ok {
		// Late response after timeout; drop it.
		return
	}
	select {
	case result <- hits:
	default:
	}
}

// UpdateLabel pushes a label's current state to the surface. Best effort:
// with no surface connected the update is dropped, and the next full layer
// render resynchronizes.
func (b *SurfaceBridge) UpdateLabel(l *models.Label) {
	b.trySend(wsMessage{Type: msgLabelUpdate, Label: l})
}

// SetNavigationEnabled toggles the surface's native pan/zoom handling.
func (b *SurfaceBridge) SetNavigationEnabled(enabled bool) {
	b.trySend(wsMessage{Type: msgNavigation, Enabled: &enabled})
}

func (b *SurfaceBridge) trySend(msg wsMessage) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return
	}
	select {
	case send <- msg:
	default:
		logging.Warn().Str("type", msg.Type).Msg("surface send queue full, dropping message")
	}
}
