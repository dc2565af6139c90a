package entity

import "time"

// Message types.
const (
	MessageTypeText        = "text"
	MessageTypeItemDetails = "item_details"
)

// Attachment is a reference to an externally hosted file. Upload and hosting
// are outside this service; only the reference travels with the message.
type Attachment struct {
	URL  string `json:"url" firestore:"url"`
	Name string `json:"name,omitempty" firestore:"name,omitempty"`
	Kind string `json:"kind,omitempty" firestore:"kind,omitempty"` // "image", "document", ...
}

// Message belongs to exactly one conversation and never outlives it.
// Item-details messages use the deterministic ID ItemMessageID(itemID) so the
// store rejects a second item_details row for the same (conversation, item).
type Message struct {
	ID             string                 `json:"id" firestore:"id"`
	ConversationID string                 `json:"conversation_id" firestore:"conversationId"`
	SenderID       string                 `json:"sender_id" firestore:"senderId"`
	SenderRole     string                 `json:"sender_role" firestore:"senderRole"`
	Body           string                 `json:"body,omitempty" firestore:"body,omitempty"`
	Attachment     *Attachment            `json:"attachment,omitempty" firestore:"attachment,omitempty"`
	Type           string                 `json:"type" firestore:"type"`
	ItemID         string                 `json:"item_id,omitempty" firestore:"itemId,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" firestore:"metadata,omitempty"`
	ReadBy         []string               `json:"read_by" firestore:"readBy"`
	CreatedAt      time.Time              `json:"created_at" firestore:"createdAt"`
}

// ItemMessageID builds the deterministic message ID for an item-details
// message, scoping the at-most-once rule to the parent conversation.
func ItemMessageID(itemID string) string {
	return "item_" + itemID
}

// IsReadBy reports whether userID has marked this message read.
func (m *Message) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
