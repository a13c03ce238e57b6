package websocket

import (
	"context"
	"sync"
	"time"
)

const sendBufferSize = 256

// Message is one frame exchanged with realtime clients
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time
func NewMessage(msgType string, data map[string]interface{}) *Message {
	return &Message{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Client is one connected websocket peer. UserID is empty until the peer
// authenticates.
type Client struct {
	ID     string
	UserID string
	Send   chan *Message
	conn   *Conn
}

// NewClient creates a client around an upgraded connection
func NewClient(id string, conn *Conn) *Client {
	return &Client{
		ID:   id,
		Send: make(chan *Message, sendBufferSize),
		conn: conn,
	}
}

// Hub fans messages out to connected clients. Channels are named groups a
// client can join; membership is torn down on unregister.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	channels map[string]map[*Client]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		channels: make(map[string]map[*Client]bool),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister removes a client, its channel memberships and closes its
// send channel. Safe to call once per client.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for name, members := range h.channels {
		delete(members, client)
		if len(members) == 0 {
			delete(h.channels, name)
		}
	}
	close(client.Send)
}

// Subscribe joins a client to a named channel
func (h *Hub) Subscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]bool)
		h.channels[channel] = members
	}
	members[client] = true
}

// Unsubscribe removes a client from a named channel
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}

// Broadcast sends a message to every connected client, the sender
// included. Slow clients have the message dropped rather than blocking
// the hub.
func (h *Hub) Broadcast(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		h.trySend(client, msg)
	}
}

// BroadcastToChannel sends a message to every member of a channel
func (h *Hub) BroadcastToChannel(channel string, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.channels[channel] {
		h.trySend(client, msg)
	}
}

// SendToClient delivers a message to a single client
func (h *Hub) SendToClient(client *Client, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	h.trySend(client, msg)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ChannelSize returns the number of members in a channel
func (h *Hub) ChannelSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

func (h *Hub) trySend(client *Client, msg *Message) {
	select {
	case client.Send <- msg:
	default:
		// Drop rather than block the whole fan-out on one slow peer
	}
}

// Run keeps the hub alive until the context is cancelled, then closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
	h.channels = make(map[string]map[*Client]bool)
}
