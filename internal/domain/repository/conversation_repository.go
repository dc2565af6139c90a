package repository

import (
	"context"

	"pasarmobil/internal/domain/entity"
)

// ConversationRepository owns conversation rows and their messages.
//
// Create and CreateMessage must fail with a CONFLICT error when a row with the
// same ID already exists; get-or-create and item-details dedup rely on that
// instead of a lookup-then-insert, which would race under concurrent first
// contact.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	GetByRoomAndBuyer(ctx context.Context, roomID, buyerID string) (*entity.Conversation, error)
	Update(ctx context.Context, conversation *entity.Conversation) error
	// Delete removes a conversation and all of its messages.
	Delete(ctx context.Context, id string) error

	ListByBuyerID(ctx context.Context, buyerID string) ([]*entity.Conversation, error)
	ListByRoomIDs(ctx context.Context, roomIDs []string) ([]*entity.Conversation, error)
	ListAll(ctx context.Context) ([]*entity.Conversation, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	MarkMessagesRead(ctx context.Context, conversationID, userID string) error
}
