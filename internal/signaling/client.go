package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"
)

const (
	// writeWait is the time allowed to write a message to the peer, mirrored from the teacher's gateway client.
	writeWait = 10 * time.Second

	// sendBufferSize is the per-client outbound queue depth. A slow peer that fills this buffer is disconnected
	// rather than allowed to stall fan-out to every other session (spec's suspension-points requirement).
	sendBufferSize = 256
)

// Client is one live WebSocket connection: the Session actor of the specification. It owns a readPump goroutine that
// decodes inbound frames and a writePump goroutine that drains the outbound queue, modeled directly on the teacher's
// gateway.Client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	// done is closed to signal shutdown; writePump and enqueue both select on it so a race between unregister and a
	// concurrent dispatch send never panics on a send to a closed channel.
	done      chan struct{}
	closeOnce sync.Once

	// Identity is fixed for the lifetime of the connection, asserted once at connect.
	userUUID string
	username string

	// room is mutated by the dispatch loop (join/leave) and read by the hub during teardown; both happen under the
	// hub's lock, so no separate mutex is needed here.
	room string
}

func newClient(hub *Hub, conn *websocket.Conn, userUUID, username string, logger zerolog.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		log:      logger,
		userUUID: userUUID,
		username: username,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue places msg on the client's outbound queue. Messages are dropped silently once the client is shutting down,
// and the connection is closed if the queue is saturated — matching spec.md §5's per-session drop-on-overflow
// backpressure policy.
func (c *Client) enqueue(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.log.Warn().Str("user_uuid", c.userUUID).Msg("client send buffer full, closing connection")
		c.closeSend()
		_ = c.conn.Close()
	}
}

// writePump drains the outbound queue to the WebSocket connection until done is closed, then flushes whatever
// remains buffered so the client receives its final frames (e.g. a reconnect-triggering close) before the socket
// closes.
func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug().Err(err).Msg("websocket write error")
				return
			}
		case <-c.done:
			for {
				select {
				case msg := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// readPump reads frames from the WebSocket connection and dispatches them to the hub. It runs until the connection
// errors or a malformed frame is received, per spec.md §4.1: "Malformed frames terminate the session."
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Str("user_uuid", c.userUUID).Msg("websocket read error")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debug().Err(err).Msg("malformed frame, closing session")
			return
		}

		// pong is a no-op reply to the liveness pinger; original_source/server.py special-cases it before logging.
		if frame.Type == framePong {
			continue
		}

		c.hub.dispatch(c, frame)
	}
}
