package usecase

import (
	"context"
	"time"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/domain/repository"
	"pasarmobil/internal/infrastructure/ratelimit"
	ws "pasarmobil/internal/infrastructure/websocket"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/logger"
)

// ChatUseCase is the message ledger plus its realtime side effects: appending
// durable messages, the idempotent item-details insert, unread accounting,
// typing signals, and the fan-out glue. Persistence is the success criterion;
// every publish after it is best-effort.
type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	roomRepo         repository.RoomRepository
	itemRepo         repository.ItemRepository
	userRepo         repository.UserRepository
	access           *ChatAccess
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	roomRepo repository.RoomRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	access *ChatAccess,
	wsManager *ws.Manager,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		conversationRepo: conversationRepo,
		roomRepo:         roomRepo,
		itemRepo:         itemRepo,
		userRepo:         userRepo,
		access:           access,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
	}
}

type SendMessageInput struct {
	ConversationID string
	Body           string
	Attachment     *entity.Attachment
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// SendMessage appends a text message. The sender's role is frozen onto the row
// at send time; id and timestamp are server-assigned, never taken from the
// client.
func (uc *ChatUseCase) SendMessage(ctx context.Context, identity entity.Identity, input SendMessageInput) (*MessageResponse, error) {
	allowed, wait := uc.rateLimiter.Allow(identity.UserID, ratelimit.ActionSendMessage)
	if !allowed {
		return nil, errors.TooManyRequests("Please slow down before sending another message", wait)
	}

	if input.Body == "" && input.Attachment == nil {
		return nil, errors.BadRequest("Message requires a body or an attachment", nil)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CanWrite(ctx, identity, conversation); err != nil {
		return nil, err
	}

	room, err := uc.roomRepo.GetByID(ctx, conversation.RoomID)
	if err != nil {
		return nil, errors.Internal("Failed to resolve conversation room", err)
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       identity.UserID,
		SenderRole:     identity.Role,
		Body:           input.Body,
		Attachment:     input.Attachment,
		Type:           entity.MessageTypeText,
		ReadBy:         []string{identity.UserID},
		CreatedAt:      time.Now(),
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	recipients := uc.notifyTargets(identity, conversation, room)

	conversation.LastMessage = messagePreview(message)
	conversation.LastMessageAt = message.CreatedAt
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	for _, recipient := range recipients {
		conversation.UnreadCount[recipient]++
	}
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		// The message itself is durable; the recency bump will catch up on
		// the next append.
		logger.Error("Failed to update conversation %s after append: %v", conversation.ID, err)
	}

	sender := uc.lookupUser(ctx, identity.UserID)
	uc.publishMessage(conversation, message, sender, recipients)

	return &MessageResponse{Message: message, Sender: sender}, nil
}

// SendItemDetails appends the system message shown when a buyer first shows
// interest in a listing inside the conversation. Exactly one such message ever
// exists per (conversation, item): an existing row is returned unchanged with
// no fan-out, and a lost insert race falls back to re-reading the winner.
func (uc *ChatUseCase) SendItemDetails(ctx context.Context, identity entity.Identity, conversationID, itemID string) (*MessageResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CanWrite(ctx, identity, conversation); err != nil {
		return nil, err
	}

	messageID := entity.ItemMessageID(itemID)

	existing, err := uc.conversationRepo.GetMessageByID(ctx, conversationID, messageID)
	if err == nil {
		return &MessageResponse{Message: existing}, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.RoomID != conversation.RoomID {
		return nil, errors.BadRequest("Item does not belong to this conversation's room", nil)
	}

	message := &entity.Message{
		ID:             messageID,
		ConversationID: conversation.ID,
		SenderID:       conversation.BuyerID,
		SenderRole:     entity.RoleBuyer,
		Body:           item.Title,
		Type:           entity.MessageTypeItemDetails,
		ItemID:         item.ID,
		Metadata: map[string]interface{}{
			"item_snapshot": map[string]interface{}{
				"id":        item.ID,
				"title":     item.Title,
				"price":     item.Price,
				"image_url": item.ImageURL,
				"status":    item.Status,
			},
		},
		ReadBy:    []string{conversation.BuyerID},
		CreatedAt: time.Now(),
	}

	err = uc.conversationRepo.CreateMessage(ctx, message)
	if errors.Is(err, "CONFLICT") {
		// A concurrent revisit inserted first; its row is the one and only.
		existing, readErr := uc.conversationRepo.GetMessageByID(ctx, conversationID, messageID)
		if readErr != nil {
			return nil, errors.Internal("Failed to resolve item message after insert conflict", readErr)
		}
		return &MessageResponse{Message: existing}, nil
	}
	if err != nil {
		return nil, err
	}

	// Bumps recency but not unread counters; the interest card is context for
	// the message that follows it, not a notification in its own right.
	conversation.LastMessage = messagePreview(message)
	conversation.LastMessageAt = message.CreatedAt
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		logger.Error("Failed to update conversation %s after item message: %v", conversation.ID, err)
	}

	sender := uc.lookupUser(ctx, conversation.BuyerID)
	uc.publishMessage(conversation, message, sender, nil)

	return &MessageResponse{Message: message, Sender: sender}, nil
}

// GetMessages returns conversation history, newest first, for an eligible
// viewer.
func (uc *ChatUseCase) GetMessages(ctx context.Context, identity entity.Identity, conversationID string, limit, offset int) ([]*MessageResponse, int64, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if err := uc.access.CanRead(ctx, identity, conversation); err != nil {
		return nil, 0, err
	}

	messages, total, err := uc.conversationRepo.ListMessages(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	senders := make(map[string]*entity.User)
	responses := make([]*MessageResponse, 0, len(messages))
	for _, message := range messages {
		sender, cached := senders[message.SenderID]
		if !cached {
			sender = uc.lookupUser(ctx, message.SenderID)
			senders[message.SenderID] = sender
		}
		responses = append(responses, &MessageResponse{Message: message, Sender: sender})
	}

	return responses, total, nil
}

// MarkAsRead zeroes the viewer's unread counter and stamps their read marks on
// the history, then pushes a compensating counter delta to their own channel.
func (uc *ChatUseCase) MarkAsRead(ctx context.Context, identity entity.Identity, conversationID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := uc.access.CanRead(ctx, identity, conversation); err != nil {
		return err
	}

	previous := conversation.UnreadFor(identity.UserID)
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	conversation.UnreadCount[identity.UserID] = 0

	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		return err
	}
	if err := uc.conversationRepo.MarkMessagesRead(ctx, conversationID, identity.UserID); err != nil {
		logger.Warn("Failed to stamp read marks in conversation %s: %v", conversationID, err)
	}

	if previous > 0 {
		event := ws.NewEvent(ws.EventUnreadCountDelta, ws.UnreadCountDeltaPayload{
			UserID: identity.UserID,
			Delta:  -previous,
		})
		uc.wsManager.SendToUser(identity.UserID, event.Encode())
	}

	return nil
}

// SetTyping broadcasts an ephemeral typing signal to the other participants.
// Over-budget signals are dropped silently; they carry no consequence.
func (uc *ChatUseCase) SetTyping(ctx context.Context, identity entity.Identity, conversationID string, isTyping bool) error {
	if allowed, _ := uc.rateLimiter.Allow(identity.UserID, ratelimit.ActionTyping); !allowed {
		return nil
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := uc.access.CanRead(ctx, identity, conversation); err != nil {
		return err
	}

	uc.wsManager.BroadcastTyping(conversationID, identity.UserID, isTyping)
	return nil
}

// TypingUsers answers who is typing in the conversation right now.
func (uc *ChatUseCase) TypingUsers(ctx context.Context, identity entity.Identity, conversationID string) ([]string, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CanRead(ctx, identity, conversation); err != nil {
		return nil, err
	}

	return uc.wsManager.TypingUsers(conversationID), nil
}

// CanSubscribe implements the websocket Authorizer: read-eligibility decides
// whether a connected user may join a conversation channel.
func (uc *ChatUseCase) CanSubscribe(ctx context.Context, userID, conversationID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.Forbidden("Unknown subscriber", err)
	}

	identity := entity.Identity{UserID: user.ID, Role: user.Role}
	return uc.access.CanRead(ctx, identity, conversation)
}

// notifyTargets picks who gets the unread bump and the personal notification.
// Buyer messages notify the room admin; admin messages notify the buyer. A
// superadmin stepping into the thread notifies the buyer only, so the room
// admin is not pinged about an exchange they are not part of.
func (uc *ChatUseCase) notifyTargets(sender entity.Identity, conversation *entity.Conversation, room *entity.Room) []string {
	switch sender.Role {
	case entity.RoleBuyer:
		return []string{room.AdminID}
	case entity.RoleAdmin, entity.RoleSuperadmin:
		return []string{conversation.BuyerID}
	}
	return nil
}

// publishMessage fans the appended message out to the conversation channel and
// pushes an unread delta to each recipient's personal channel. Fire-and-forget
// on every path.
func (uc *ChatUseCase) publishMessage(conversation *entity.Conversation, message *entity.Message, sender *entity.User, recipients []string) {
	event := ws.NewEvent(ws.EventNewMessage, ws.NewMessagePayload{
		ConversationID: conversation.ID,
		Message:        message,
		Sender:         sender,
	})
	uc.wsManager.SendToConversation(conversation.ID, event.Encode(), message.SenderID)

	for _, recipient := range recipients {
		delta := ws.NewEvent(ws.EventUnreadCountDelta, ws.UnreadCountDeltaPayload{
			UserID: recipient,
			Delta:  1,
		})
		uc.wsManager.SendToUser(recipient, delta.Encode())
	}
}

func (uc *ChatUseCase) lookupUser(ctx context.Context, userID string) *entity.User {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Sender %s not found: %v", userID, err)
		return nil
	}
	return user
}

func messagePreview(message *entity.Message) string {
	if message.Body != "" {
		return message.Body
	}
	if message.Attachment != nil && message.Attachment.Name != "" {
		return message.Attachment.Name
	}
	return "[attachment]"
}
