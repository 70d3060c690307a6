package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = 50 * time.Second // below idleTimeout so a healthy peer never idles out
	readLimit    = 512
	sendBuffer   = 16
)

// Client is one dashboard page. The hub writes into Send; writePump owns the
// connection's write side.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	ID   uuid.UUID
	Send chan []byte
}

func (c *Client) extendDeadline(string) error {
	return c.Conn.SetReadDeadline(time.Now().Add(idleTimeout))
}

// readPump only drains control frames. Dashboards never send data; when the read
// fails the peer is gone and the client is unregistered.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	_ = c.extendDeadline("")
	c.Conn.SetPongHandler(c.extendDeadline)

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.Hub.logger.Warn("Hub", "Dashboard connection dropped", map[string]interface{}{"conn_id": c.ID.String(), "error": err.Error()})
		}
		return
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Client) writePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.Conn.Close()

	for {
		select {
		case msg, open := <-c.Send:
			if !open {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
