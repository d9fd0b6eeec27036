package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/auth"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	maxMsgSize  = 512
	sendBufSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
	// Access is gated by the token, not the page origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler serves spectator WebSocket connections.
type WSHandler struct {
	hub    *Hub
	tokens *auth.TokenManager
}

func NewWSHandler(hub *Hub, tokens *auth.TokenManager) *WSHandler {
	return &WSHandler{hub: hub, tokens: tokens}
}

// ServeWS handles GET /ws. The token usually travels as ?token=; an optional
// ?match= subscribes immediately, defaulting to the token's own match.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		matchID = claims.MatchID
	}
	if matchID != "" && !claims.Allows(matchID) {
		writeError(w, http.StatusForbidden, "token does not cover this match")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("viewer", claims.Viewer).Msg("WebSocket upgrade failed")
		return
	}

	c := newWSConn(conn, claims.Viewer, sendBufSize)
	h.hub.Register(c)
	h.reply(c, WSEvent{Type: EventConnected, MatchID: matchID, Data: map[string]any{"viewer": claims.Viewer}})
	if matchID != "" {
		h.hub.Subscribe(c, matchID)
	}

	go h.writePump(c)
	go h.readPump(c, claims)

	log.Info().
		Str("viewer", claims.Viewer).
		Str("matchId", matchID).
		Int("total", h.hub.ConnectionCount()).
		Msg("Spectator connected")
}

// handleMessage applies one client request. Requests the token does not
// cover, and anything unparseable, are answered with an error event.
func (h *WSHandler) handleMessage(c *WSConn, claims *auth.Claims, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.MatchID == "" {
		h.reply(c, errorEvent("", "expected {\"action\":...,\"match_id\":...}"))
		return
	}
	switch msg.Action {
	case ActionSubscribe:
		if !claims.Allows(msg.MatchID) {
			h.reply(c, errorEvent(msg.MatchID, "token does not cover this match"))
			return
		}
		h.hub.Subscribe(c, msg.MatchID)
	case ActionUnsubscribe:
		h.hub.Unsubscribe(c, msg.MatchID)
	default:
		h.reply(c, errorEvent(msg.MatchID, "unknown action "+msg.Action))
	}
}

// reply queues an event for c alone, dropping it if c is backed up. Only
// the connection's own goroutines call it, before Unregister closes send.
func (h *WSHandler) reply(c *WSConn, ev WSEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func errorEvent(matchID, msg string) WSEvent {
	return WSEvent{Type: EventError, MatchID: matchID, Data: map[string]string{"error": msg}}
}

func (h *WSHandler) readPump(c *WSConn, claims *auth.Claims) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("viewer", c.viewer).Int("total", h.hub.ConnectionCount()).Msg("Spectator disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("viewer", c.viewer).Msg("Spectator connection dropped")
			}
			return
		}
		h.handleMessage(c, claims, raw)
	}
}

// writePump is the only writer on c.conn.
func (h *WSHandler) writePump(c *WSConn) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
