package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Realtime message types
const (
	WSTypeConnected  = "connected"
	WSTypePhotoLiked = "photo_liked"
	WSTypePong       = "pong"
	WSTypeError      = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	PhotoID   string `json:"photo_id,omitempty"`
	Likes     *int   `json:"photo_likes,omitempty"`
	Message   string `json:"message,omitempty"`
}

// WSHub manages WebSocket connections keyed by user email
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	writeMu     map[*websocket.Conn]*sync.Mutex
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
		writeMu:     make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register registers a new WebSocket connection for a user, replacing any previous one
func (h *WSHub) Register(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[email]; ok && existing != conn {
		existing.Close()
		delete(h.writeMu, existing)
	}

	h.connections[email] = conn
	h.writeMu[conn] = &sync.Mutex{}

	log.Info().Str("user_email", email).Msg("WebSocket connection registered")
}

// Unregister removes conn if it is still the user's current connection
func (h *WSHub) Unregister(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[email]; ok && current == conn {
		delete(h.connections, email)
		delete(h.writeMu, conn)
		conn.Close()
		log.Info().Str("user_email", email).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(email string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[email]
	mu := h.writeMu[conn]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", email)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	mu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	mu.Unlock()
	if err != nil {
		h.Unregister(email, conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(email string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[email]
	return ok
}

// Close closes every connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for email, conn := range h.connections {
		conn.Close()
		delete(h.connections, email)
	}
	h.writeMu = make(map[*websocket.Conn]*sync.Mutex)
}
