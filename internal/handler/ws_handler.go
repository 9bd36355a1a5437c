package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/brandonr49/board-game-engine/internal/auth"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// SeatChecker reports whether a user may follow a match.
type SeatChecker func(ctx context.Context, matchID, userID string) error

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub    *Hub
	jwtMgr *auth.JWTManager
	seated SeatChecker
}

// NewWSHandler creates a WSHandler. Subscriptions are refused when seated
// returns an error.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, seated SeatChecker) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, seated: seated}
}

// ServeWS handles GET /api/v1/ws. Browsers cannot set headers on the
// upgrade, so ?token= is accepted as well as a bearer header.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenStr, err := auth.TokenFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	claims, err := h.jwtMgr.ValidateToken(tokenStr, auth.TokenAccess)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &WSConn{
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufSize),
	}
	h.hub.Register(client)
	h.hub.sendTo(client, WSEvent{Type: EventConnected, Data: map[string]string{"user_id": claims.UserID}})

	go h.writePump(client)
	go h.readPump(client)

	log.Info().Str("userId", claims.UserID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
}

// handleMessage applies one client message to the hub.
func (h *WSHandler) handleMessage(ctx context.Context, c *WSConn, msg ClientMessage) {
	if msg.MatchID == "" {
		return
	}
	switch msg.Action {
	case "subscribe":
		if h.seated != nil {
			if err := h.seated(ctx, msg.MatchID, c.userID); err != nil {
				h.hub.sendTo(c, WSEvent{Type: EventError, MatchID: msg.MatchID, Data: map[string]string{"error": err.Error()}})
				return
			}
		}
		h.hub.Subscribe(c, msg.MatchID)
		h.hub.sendTo(c, WSEvent{Type: EventSubscribed, MatchID: msg.MatchID, Data: map[string]any{}})
	case "unsubscribe":
		h.hub.Unsubscribe(c, msg.MatchID)
	}
}

// readPump reads messages from the WebSocket connection.
func (h *WSHandler) readPump(c *WSConn) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		log.Info().Str("userId", c.userID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("userId", c.userID).Msg("WebSocket unexpected close")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		h.handleMessage(ctx, c, msg)
		cancel()
	}
}

// writePump writes messages to the WebSocket connection.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Debug().Err(err).Str("userId", c.userID).Msg("WebSocket ping failed")
				}
				return
			}
		}
	}
}
