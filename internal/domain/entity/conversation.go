package entity

import "time"

// Conversation is the unique messaging thread between a buyer and a room.
// Its document ID is derived from (RoomID, BuyerID), which is what enforces
// the one-conversation-per-pair invariant at the store layer.
type Conversation struct {
	ID            string         `json:"id" firestore:"id"`
	RoomID        string         `json:"room_id" firestore:"roomId"`
	BuyerID       string         `json:"buyer_id" firestore:"buyerId"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCount   map[string]int `json:"unread_count" firestore:"unreadCount"` // userID -> unread messages
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// ConversationID builds the deterministic document ID for a (room, buyer) pair.
func ConversationID(roomID, buyerID string) string {
	return roomID + "_" + buyerID
}

// UnreadFor returns the stored unread counter for a viewer.
func (c *Conversation) UnreadFor(userID string) int {
	if c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID]
}
