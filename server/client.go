package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/graphstyle/logger"
)

// WebSocket timeouts following the gorilla chat example
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket connection of the rendering surface
type Client struct {
	server *Server
	conn   *websocket.Conn
	id     string

	send  chan []byte // style maps, written only by the hub
	reply chan []byte // label answers, written only by readPump

	closeOnce sync.Once
}

// close closes the hub's queue. Only the hub goroutine calls it.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump reads client messages until the connection fails
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.server.logger.Warnw("JSON unmarshal error",
				logger.FieldClientID, c.id,
				logger.FieldError, err)
			continue
		}
		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes are ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		c.server.logger.Warnw("WebSocket read error",
			logger.FieldClientID, c.id,
			logger.FieldError, err)
	}
}

func (c *Client) routeMessage(msg *ClientMessage) {
	switch msg.Type {
	case "label":
		c.handleLabel(msg)
	case "ping":
		// deadline is extended by the pong handler
	default:
		c.server.logger.Debugw("Unknown message type",
			logger.FieldType, msg.Type,
			logger.FieldClientID, c.id)
	}
}

// handleLabel evaluates a deferred edge label against the live registry
func (c *Client) handleLabel(msg *ClientMessage) {
	resp := c.server.resolveLabel(msg.Edge, msg.EdgeType)
	data, err := json.Marshal(LabelMessage{
		Type:     "label",
		Edge:     resp.Edge,
		EdgeType: resp.EdgeType,
		Label:    resp.Label,
	})
	if err != nil {
		return
	}
	select {
	case c.reply <- data:
	default:
		c.server.logger.Debugw("Label reply dropped, queue full", logger.FieldClientID, c.id)
	}
}

// writePump writes queued messages and keepalive pings to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.server.ctx.Done():
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.server.logger.Warnw("Style map write error",
					logger.FieldClientID, c.id,
					logger.FieldError, err)
				return
			}
		case msg := <-c.reply:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.server.logger.Debugw("Label write error",
					logger.FieldClientID, c.id,
					logger.FieldError, err)
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
