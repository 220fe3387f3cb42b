package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Client is one live WebSocket connection. Outgoing frames go through the
// buffered send channel drained by WritePump; inbound frames are decoded by
// ReadLoop on the connection's own goroutine.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection with a fresh connection identity.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// SendChan exposes the outgoing frame channel; used by the hub and by tests.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// Send queues a private event for this connection. Delivery is best-effort:
// a full buffer drops the frame rather than blocking the caller.
func (c *Client) Send(event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	if !c.enqueue(frame) {
		log.Printf("[WebSocket] Dropping %s frame for slow client %s", event, c.ID)
	}
	return nil
}

// enqueue pushes a frame without blocking. Recovers the send-on-closed-channel
// race against hub removal.
func (c *Client) enqueue(frame []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// ReadLoop decodes inbound frames and hands them to handle until the
// connection errors or closes. It blocks; run it on the connection goroutine.
func (c *Client) ReadLoop(handle func(event string, data json.RawMessage)) {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[WebSocket] Failed to set read deadline for %s: %v", c.ID, err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("[WebSocket] Read error from %s: %v", c.ID, err)
			}
			return
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("[WebSocket] Invalid frame from %s: %v", c.ID, err)
			continue
		}
		handle(evt.Event, evt.Data)
	}
}

// WritePump drains the send channel onto the connection and keeps it alive
// with periodic pings. It exits when the channel closes or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close shuts the underlying connection down at most once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}
