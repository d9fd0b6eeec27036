package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/model"
)

// Event types sent to spectators.
const (
	EventConnected = "connected"
	EventTick      = "tick"
	EventError     = "error"
)

// Actions a spectator may request.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the spectator.
type ClientMessage struct {
	Action  string `json:"action"`
	MatchID string `json:"match_id"`
}

// WSConn wraps a spectator connection with its viewer and outbound queue.
// watching mirrors the hub's per-match sets and is guarded by the hub lock.
type WSConn struct {
	conn     *websocket.Conn
	viewer   string
	send     chan []byte
	watching map[string]struct{}
}

func newWSConn(conn *websocket.Conn, viewer string, buf int) *WSConn {
	return &WSConn{
		conn:     conn,
		viewer:   viewer,
		send:     make(chan []byte, buf),
		watching: make(map[string]struct{}),
	}
}

// Hub fans tick events out to the spectators of each match. It keeps the
// latest tick of every match so a spectator who subscribes mid-match sees
// the current board without waiting for the next turn.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*WSConn]struct{}
	watchers map[string]map[*WSConn]struct{}
	latest   map[string][]byte
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[*WSConn]struct{}),
		watchers: make(map[string]map[*WSConn]struct{}),
		latest:   make(map[string][]byte),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

// Unregister drops c and its subscriptions and closes its send queue.
// Repeated calls are no-ops.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)
	for matchID := range c.watching {
		h.unwatch(c, matchID)
	}
	close(c.send)
}

// Subscribe starts sending matchID's ticks to c and replays the latest one.
// Connections that are not registered are ignored.
func (h *Hub) Subscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	if _, ok := c.watching[matchID]; ok {
		return
	}
	set := h.watchers[matchID]
	if set == nil {
		set = make(map[*WSConn]struct{})
		h.watchers[matchID] = set
	}
	set[c] = struct{}{}
	c.watching[matchID] = struct{}{}
	if data, ok := h.latest[matchID]; ok {
		deliver(c, matchID, data)
	}
}

// Unsubscribe stops sending matchID's ticks to c.
func (h *Hub) Unsubscribe(c *WSConn, matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unwatch(c, matchID)
}

// unwatch must be called with h.mu held.
func (h *Hub) unwatch(c *WSConn, matchID string) {
	delete(c.watching, matchID)
	if set, ok := h.watchers[matchID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.watchers, matchID)
		}
	}
}

// BroadcastTick implements service.Broadcaster. The record is encoded once
// and remembered as the match's latest tick.
func (h *Hub) BroadcastTick(rec *model.TickRecord) {
	data, err := json.Marshal(WSEvent{Type: EventTick, MatchID: rec.MatchID, Data: rec})
	if err != nil {
		log.Error().Err(err).Str("matchId", rec.MatchID).Int("tick", rec.Tick).Msg("Failed to marshal tick event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[rec.MatchID] = data
	for c := range h.watchers[rec.MatchID] {
		deliver(c, rec.MatchID, data)
	}
}

// deliver queues data for c. Slow spectators lose ticks rather than stall
// the bot.
func deliver(c *WSConn, matchID string, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("viewer", c.viewer).Str("matchId", matchID).Msg("Dropping tick for slow spectator")
	}
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// MatchWatcherCount returns the number of connections watching a match.
func (h *Hub) MatchWatcherCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[matchID])
}
