package websocket

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"pasarmobil/pkg/logger"
)

// Client is one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ReadPump consumes frames from the connection until it closes, then tears the
// client down. Join requests go through the manager's Authorizer so a caller
// can only subscribe to conversations they may read.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.sendError(m, "Invalid frame format")
			continue
		}

		switch frame.Type {
		case FramePing:
			event := NewEvent(EventPong, map[string]string{"status": "alive"})
			m.push(c, event.Encode())

		case FrameJoin:
			if frame.ConversationID == "" {
				c.sendError(m, "Missing conversation_id")
				continue
			}
			if m.authorizer != nil {
				if err := m.authorizer.CanSubscribe(context.Background(), c.UserID, frame.ConversationID); err != nil {
					logger.Debug("Join denied for %s on %s: %v", c.UserID, frame.ConversationID, err)
					c.sendError(m, "Cannot join this conversation")
					continue
				}
			}
			m.JoinConversation(frame.ConversationID, c.UserID)

		case FrameLeave:
			if frame.ConversationID == "" {
				c.sendError(m, "Missing conversation_id")
				continue
			}
			m.LeaveConversation(frame.ConversationID, c.UserID)
			m.SetTyping(frame.ConversationID, c.UserID, false)

		case FrameTyping:
			if frame.ConversationID == "" {
				c.sendError(m, "Missing conversation_id")
				continue
			}
			m.mu.RLock()
			isMember := m.members[frame.ConversationID][c.UserID]
			m.mu.RUnlock()
			if !isMember {
				c.sendError(m, "Join the conversation before typing")
				continue
			}
			m.BroadcastTyping(frame.ConversationID, c.UserID, frame.IsTyping)

		default:
			c.sendError(m, "Unknown frame type")
		}
	}
}

// WritePump drains the Send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for payload := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}

	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) sendError(m *Manager, message string) {
	event := NewEvent(EventError, map[string]string{"error": message})
	m.push(c, event.Encode())
}
