package hub

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/config"
	"github.com/123hpcomsetup-j/StreamVibe-sub000/internal/domain"
	pkglog "github.com/123hpcomsetup-j/StreamVibe-sub000/pkg/log"
)

// DisconnectHandler is called once when the read pump exits.
type DisconnectHandler func(*Client)

// Client is one WebSocket connection.
type Client struct {
	ID      string
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session *domain.Session

	config            config.WebSocketConfig
	disconnectHandler DisconnectHandler
}

// NewClient wraps conn. Zero timing fields in cfg fall back to defaults.
func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		ID:      id,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, cfg.SendBuffer),
		Session: domain.NewSession(id),
		config:  cfg,
	}
}

// SetDisconnectHandler sets the handler to be called on disconnect.
func (c *Client) SetDisconnectHandler(handler DisconnectHandler) {
	c.disconnectHandler = handler
}

// ReadPump feeds every inbound frame to handler until the peer goes away,
// then tears the connection down. Room cleanup runs before the hub forgets
// the client so departure notices can still reach other sockets.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		if c.disconnectHandler != nil {
			c.disconnectHandler(c)
		}
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.extendReadDeadline()
	c.Conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := pkglog.L()
				l.Warn().Err(err).Str(pkglog.FieldConnID, c.ID).Msg("websocket read error")
			}
			return
		}

		c.Session.UpdateActivity()
		handler(c, message)
	}
}

func (c *Client) extendReadDeadline() {
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
}

// WritePump drains Send to the socket and pings the peer on an interval.
// A closed Send channel means the hub dropped the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	return c.Conn.WriteMessage(messageType, data)
}
