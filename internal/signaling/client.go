package signaling

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. 64 KB is enough for WebRTC SDP
	// payloads.
	maxMessageSize = 64 * 1024

	// Outbound queue depth per connection. When the queue is full the
	// participant is skipped, never waited on.
	sendQueueSize = 256
)

// Client wraps a single websocket connection. Outbound frames go through a
// buffered queue drained by writePump, so broadcasts never block on a slow
// peer; inbound frames are read by readLoop on the connection's own
// goroutine.
type Client struct {
	// ID correlates this connection across log lines.
	ID uuid.UUID

	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

func newClient(conn *websocket.Conn, logger zerolog.Logger) *Client {
	id := uuid.New()
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger.With().Str("conn_id", id.String()).Logger(),
	}
}

// Send queues data for delivery and reports whether it was accepted. It
// never blocks: a shut-down client or a full queue means false, and the
// frame is dropped.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// shutdown signals writePump to flush what is queued, say goodbye and close
// the connection. Safe to call more than once.
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}

// writePump pumps queued frames to the websocket connection. It is the only
// writer on the connection, and keeps the peer alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.done:
			// Flush anything queued before the shutdown (e.g. a rejection
			// envelope), then close cleanly.
			for {
				select {
				case data := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop reads frames from the connection and hands them to handle until
// the peer goes away. It returns when the connection errors or closes.
func (c *Client) readLoop(handle func(raw []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		handle(data)
	}
}
