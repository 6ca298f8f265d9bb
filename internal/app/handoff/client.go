package handoff

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"warmtransfer/internal/pkg/logx"
)

const (
	// timeout for writing one frame.
	writeWait = 10 * time.Second

	// time allowed between pongs from the subscriber.
	pongWait = 60 * time.Second

	// ping interval, shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// subscribers only send control frames; anything larger is a protocol error.
	maxMessageSize = 512

	sendBuffer = 16
)

// Client is one subscriber connection.
type Client struct {
	room     *Room
	conn     *websocket.Conn
	identity string

	// send is closed by the Room goroutine, or by Serve when registration fails.
	send chan []byte

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection for identity in room.
func NewClient(room *Room, conn *websocket.Conn, identity string) *Client {
	return &Client{
		room:     room,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendBuffer),
		logger: logx.Logger().With().
			Str("component", "handoff").
			Str("room", room.Name).
			Str("identity", identity).
			Logger(),
	}
}

// Serve queues the INIT message, registers the client, and blocks until the
// connection ends.
func (c *Client) Serve(initial InitPayload) {
	msg, err := NewMessage(TypeInit, c.room.Name, initial)
	if err == nil {
		if raw, err := json.Marshal(msg); err == nil {
			c.send <- raw
		}
	}

	if !c.room.Register(c) {
		c.logger.Warn().Msg("Room stopped before subscriber could register")
		close(c.send)
		c.WritePump()
		return
	}

	go c.WritePump()
	c.ReadPump()
}

// ReadPump consumes inbound frames so pong handlers run, and unregisters on disconnect.
func (c *Client) ReadPump() {
	defer func() {
		c.room.unregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Subscriber connection closed unexpectedly")
			}
			return
		}
	}
}

// WritePump writes queued messages and heartbeats until send is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing handoff message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Ping failed")
				return
			}
		}
	}
}
