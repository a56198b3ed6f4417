package wsbroker

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/pezzottify/catalog-server/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // client sends are tiny (pong only)
)

// Client is one device's WebSocket connection within a user's hub.
type Client struct {
	userID   string
	deviceID string
	conn     *websocket.Conn
	send     chan ServerMessage
	broker   *Broker
}

// NewClient wraps an upgraded connection and registers it with broker.
func NewClient(broker *Broker, conn *websocket.Conn, userID, deviceID string) *Client {
	return &Client{
		userID:   userID,
		deviceID: deviceID,
		conn:     conn,
		send:     make(chan ServerMessage, 16),
		broker:   broker,
	}
}

// Start registers the client, sends the initial hello frame, and begins
// the read/write pumps. currentSeq is the user's seq at connect time, sent
// in the {type:"hello", current_seq} handshake.
func (c *Client) Start(currentSeq int64) {
	c.broker.Register(c.userID, c)
	select {
	case c.send <- ServerMessage{Type: TypeHello, CurrentSeq: currentSeq}:
	default:
	}
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.broker.Unregister(c.userID, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("user_id", c.userID).Str("device_id", c.deviceID).Msg("sync websocket closed unexpectedly")
			}
			return
		}
		// Client messages today are pong acknowledgements only; nothing
		// further to dispatch.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
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
