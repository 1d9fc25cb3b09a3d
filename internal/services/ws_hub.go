package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"photo-gallery/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// writeWait bounds a single write so a client that stops reading cannot
// hold up the uploader
const writeWait = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string        `json:"type"`
	Photo   *models.Photo `json:"photo,omitempty"`
	Message string        `json:"message,omitempty"`
}

// WSConn is the part of a websocket connection the hub writes to
type WSConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsClient struct {
	mu   sync.Mutex
	conn WSConn
}

// WSHub tracks open gallery connections and fans out upload events
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register adds a connection and returns its id
func (h *WSHub) Register(conn WSConn) string {
	id := uuid.New().String()

	h.mu.Lock()
	h.connections[id] = &wsClient{conn: conn}
	h.mu.Unlock()

	log.Debug().Str("conn_id", id).Msg("WebSocket connection registered")
	return id
}

// Unregister removes and closes a connection
func (h *WSHub) Unregister(id string) {
	h.mu.Lock()
	client, exists := h.connections[id]
	delete(h.connections, id)
	h.mu.Unlock()

	if exists {
		client.conn.Close()
		log.Debug().Str("conn_id", id).Msg("WebSocket connection unregistered")
	}
}

// Count returns the number of open connections
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Send writes a message to one connection
func (h *WSHub) Send(id string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[id]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", id)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	client.mu.Lock()
	err = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err == nil {
		err = client.conn.WriteMessage(websocket.TextMessage, data)
	}
	client.mu.Unlock()
	if err != nil {
		h.Unregister(id)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Broadcast sends a message to every connection, dropping the ones that fail
func (h *WSHub) Broadcast(message WSMessage) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.connections))
	for id := range h.connections {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		if err := h.Send(id, message); err != nil {
			log.Warn().Err(err).Str("conn_id", id).Msg("Failed to deliver gallery event")
		}
	}
}

// NotifyPhotoUploaded tells every open gallery about a new photo
func (h *WSHub) NotifyPhotoUploaded(photo *models.Photo) {
	h.Broadcast(WSMessage{Type: "photo_uploaded", Photo: photo})
}

// Close closes all connections
func (h *WSHub) Close() {
	h.mu.Lock()
	clients := h.connections
	h.connections = make(map[string]*wsClient)
	h.mu.Unlock()

	for _, client := range clients {
		client.conn.Close()
	}
}
