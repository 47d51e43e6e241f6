package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	ID   string // User ID
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte

	// rooms joined, guarded by Hub.mu
	groups map[string]struct{}
	events map[string]struct{}

	closeOnce sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan []byte, 256),
		groups: make(map[string]struct{}),
		events: make(map[string]struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *Client) enqueue(data []byte) bool {
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// ReadPump handles incoming messages from the client
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read", zap.String("user_id", c.ID), zap.Error(err))
			}
			break
		}

		var incoming IncomingMessage
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.Hub.log.Debug("unparseable ws message", zap.String("user_id", c.ID), zap.Error(err))
			continue
		}

		c.handleIncomingMessage(ctx, incoming)
	}
}

// WritePump handles outgoing messages to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.log.Debug("websocket write", zap.String("user_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleIncomingMessage processes different types of incoming messages
func (c *Client) handleIncomingMessage(ctx context.Context, msg IncomingMessage) {
	switch msg.Type {
	case EventSubscribe:
		c.handleSubscribe(ctx, msg.Payload)
	case EventUnsubscribe:
		if msg.Payload.EventID != "" {
			c.Hub.UnwatchEvent(c, msg.Payload.EventID)
		} else {
			c.Hub.Unsubscribe(c, msg.Payload.GroupID)
		}
	case EventTypingStart:
		c.handleTyping(msg.Payload, true)
	case EventTypingStop:
		c.handleTyping(msg.Payload, false)
	default:
		c.Hub.log.Debug("unknown ws message type", zap.String("type", string(msg.Type)))
	}
}

// handleSubscribe joins a wish list room when eventId is set, a group room otherwise
func (c *Client) handleSubscribe(ctx context.Context, p IncomingFields) {
	if p.EventID != "" {
		if c.Hub.WatchEvent(ctx, c, p.EventID) {
			c.reply(newMessage(EventSubscribed, RoomPayload{EventID: p.EventID}))
			return
		}
		c.reply(newMessage(EventError, ErrorPayload{Code: "forbidden", Message: "Open the wish list before watching it"}))
		return
	}
	if c.Hub.Subscribe(ctx, c, p.GroupID) {
		c.reply(newMessage(EventSubscribed, RoomPayload{GroupID: p.GroupID}))
		return
	}
	c.reply(newMessage(EventError, ErrorPayload{Code: "forbidden", Message: "Cannot join this group"}))
}

// handleTyping records the typing state and relays it to the room
func (c *Client) handleTyping(p IncomingFields, typing bool) {
	if p.GroupID == "" || !c.Hub.IsSubscribed(c.ID, p.GroupID) {
		return
	}
	if tr := c.Hub.Typing(); tr != nil {
		tr.Set(p.GroupID, c.ID, p.UserName, typing)
	}
	c.Hub.NotifyTyping(p.GroupID, c.ID, p.UserName, typing)
}

func (c *Client) reply(msg WSMessage) {
	c.Hub.BroadcastToUser(c.ID, msg)
}
