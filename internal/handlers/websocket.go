package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"photo-points-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsReadLimit = 4096

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// mobile clients send no Origin
		return true
	},
}

// TokenValidator resolves a realtime channel token to a user email
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// WebSocketHandler handles realtime channel connections
type WebSocketHandler struct {
	hub    *services.WSHub
	tokens TokenValidator
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, tokens TokenValidator) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		tokens: tokens,
	}
}

// HandleWebSocket handles GET /ws?token=<ws_token>
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	email, err := h.tokens.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	conn.SetReadLimit(wsReadLimit)

	h.hub.Register(email, conn)
	defer h.hub.Unregister(email, conn)

	if err := h.hub.SendToUser(email, services.WSMessage{Type: services.WSTypeConnected, Timestamp: time.Now().UnixMilli()}); err != nil {
		log.Error().Err(err).Str("user_email", email).Msg("Failed to send connected message")
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_email", email).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(email, services.WSMessage{Type: services.WSTypeError, Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(email, services.WSMessage{Type: services.WSTypePong, Timestamp: time.Now().UnixMilli()})
		default:
			h.reply(email, services.WSMessage{Type: services.WSTypeError, Message: "Unknown message type"})
		}
	}
}

func (h *WebSocketHandler) reply(email string, msg services.WSMessage) {
	if err := h.hub.SendToUser(email, msg); err != nil {
		log.Warn().Err(err).Str("user_email", email).Str("type", msg.Type).Msg("Failed to send WebSocket reply")
	}
}
