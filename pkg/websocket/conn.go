package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single outbound write
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the peer
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames
	maxMessageSize = 64 * 1024
)

// Conn wraps a gorilla websocket connection with deadline management.
// Writes are serialized by a mutex; reads are single-goroutine by contract
// (only readPump reads) and take no lock.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

// NewConn wraps an upgraded websocket connection
func NewConn(ws *websocket.Conn) *Conn {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &Conn{ws: ws}
}

// ReadJSON reads the next inbound frame into v
func (c *Conn) ReadJSON(v interface{}) error {
	return c.ws.ReadJSON(v)
}

// WriteJSON writes v as a single frame
func (c *Conn) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// Ping sends a ping control frame
func (c *Conn) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Close sends a close frame and tears down the connection
func (c *Conn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.ws.Close()
}
