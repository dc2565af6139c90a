package websocket

import (
	"encoding/json"
	"time"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/pkg/logger"
)

// Event kinds published to subscribers. Conversation-scoped events go to the
// conversation channel, unread deltas to the recipient's personal channel.
const (
	EventNewMessage       = "new_message"
	EventTyping           = "typing"
	EventUnreadCountDelta = "unread_count_delta"
	EventError            = "error"
	EventPong             = "pong"
)

// Inbound frame types accepted from connected clients.
const (
	FrameJoin   = "join"
	FrameLeave  = "leave"
	FrameTyping = "typing"
	FramePing   = "ping"
)

type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type NewMessagePayload struct {
	ConversationID string          `json:"conversation_id"`
	Message        *entity.Message `json:"message"`
	Sender         *entity.User    `json:"sender,omitempty"`
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
}

type UnreadCountDeltaPayload struct {
	UserID string `json:"user_id"`
	Delta  int    `json:"delta"`
}

// NewEvent stamps the event with the server clock.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Encode marshals the event for the wire. A marshal failure returns nil and is
// logged; publishing is best-effort and must never fail the caller.
func (e Event) Encode() []byte {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error("Failed to encode %s event: %v", e.Type, err)
		return nil
	}
	return payload
}

// inboundFrame is a message received from a connected client.
type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	IsTyping       bool   `json:"is_typing,omitempty"`
}
