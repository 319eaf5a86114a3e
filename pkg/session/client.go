package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/hrilab/go-duo/pkg/negotiation"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum inbound message size allowed
	maxMessageSize = 4 * 1024
)

// Client is one connected operator or spectator on the negotiation
// channel. Writes go through a buffered send channel consumed by a single
// write pump, so concurrent broadcasts never race on the connection.
type Client struct {
	ID   uuid.UUID
	Role negotiation.Role

	registry *Registry
	conn     *websocket.Conn
	send     chan []byte

	sendMu sync.Mutex
	closed bool
}

func newClient(registry *Registry, conn *websocket.Conn, role negotiation.Role) *Client {
	client := &Client{
		ID:       uuid.New(),
		Role:     role,
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, 64),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	return client
}

// Send queues a JSON message for this client only. A client whose buffer
// is full is dropped rather than allowed to stall the callers.
func (c *Client) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !c.trySend(data) {
		c.registry.drop(c)
	}
	return nil
}

// trySend queues data without blocking. Returns false when the client is
// closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// NextMessage blocks until the next inbound message or a read error.
// The read also refreshes the liveness deadline.
func (c *Client) NextMessage() ([]byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// close shuts the send channel exactly once; the write pump then sends a
// close frame and tears down the connection.
func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump writes queued messages and periodic pings to the connection.
// Only this goroutine writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
