package usecase

import (
	"context"
	"sort"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/domain/repository"
	"pasarmobil/internal/infrastructure/ratelimit"
	"pasarmobil/pkg/errors"
	"pasarmobil/pkg/logger"
)

// ConversationUseCase owns the conversation lifecycle: race-safe get-or-create,
// the per-viewer directory, and the superadmin purge.
type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	roomRepo         repository.RoomRepository
	userRepo         repository.UserRepository
	access           *ChatAccess
	rateLimiter      *ratelimit.RateLimiter
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	access *ChatAccess,
	rateLimiter *ratelimit.RateLimiter,
) *ConversationUseCase {
	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		roomRepo:         roomRepo,
		userRepo:         userRepo,
		access:           access,
		rateLimiter:      rateLimiter,
	}
}

type OpenConversationInput struct {
	RoomID  string
	BuyerID string // superadmin only; buyers always open as themselves
}

// ConversationResponse is a conversation enriched for one viewer.
type ConversationResponse struct {
	*entity.Conversation
	Room      *entity.Room `json:"room,omitempty"`
	OtherUser *entity.User `json:"other_user,omitempty"`
	Unread    int          `json:"unread"`
}

// Open resolves the conversation for (room, buyer), creating it on first
// contact. Concurrent callers converge on one row: lookup, then insert, then
// on a lost race re-read the winner. A second failure after the conflict is
// an internal error, never a Conflict surfaced to the caller.
func (uc *ConversationUseCase) Open(ctx context.Context, identity entity.Identity, input OpenConversationInput) (*ConversationResponse, error) {
	allowed, wait := uc.rateLimiter.Allow(identity.UserID, ratelimit.ActionOpenConversation)
	if !allowed {
		return nil, errors.TooManyRequests("Please wait before opening another conversation", wait)
	}

	room, err := uc.roomRepo.GetByID(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, errors.NotFound("Room", nil)
	}

	buyerID := identity.UserID
	switch identity.Role {
	case entity.RoleBuyer:
		if input.BuyerID != "" && input.BuyerID != identity.UserID {
			return nil, errors.Forbidden("Buyers open conversations as themselves", nil)
		}
	case entity.RoleSuperadmin:
		if input.BuyerID != "" {
			buyerID = input.BuyerID
		}
	default:
		return nil, errors.Forbidden("Room admins reply within existing conversations", nil)
	}

	if buyerID == room.AdminID {
		return nil, errors.BadRequest("You cannot open a conversation in your own room", nil)
	}

	conversation, err := uc.getOrCreate(ctx, input.RoomID, buyerID)
	if err != nil {
		return nil, err
	}

	return uc.buildResponse(ctx, identity, conversation, room), nil
}

func (uc *ConversationUseCase) getOrCreate(ctx context.Context, roomID, buyerID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByRoomAndBuyer(ctx, roomID, buyerID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	conversation = &entity.Conversation{
		RoomID:      roomID,
		BuyerID:     buyerID,
		UnreadCount: make(map[string]int),
	}

	err = uc.conversationRepo.Create(ctx, conversation)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, "CONFLICT") {
		return nil, err
	}

	// A concurrent first-contact won the insert; its row is ours too.
	conversation, err = uc.conversationRepo.GetByRoomAndBuyer(ctx, roomID, buyerID)
	if err != nil {
		return nil, errors.Internal("Failed to resolve conversation after insert conflict", err)
	}

	return conversation, nil
}

// Get returns one conversation for an eligible viewer.
func (uc *ConversationUseCase) Get(ctx context.Context, identity entity.Identity, conversationID string) (*ConversationResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := uc.access.CanRead(ctx, identity, conversation); err != nil {
		return nil, err
	}

	return uc.buildResponse(ctx, identity, conversation, nil), nil
}

// List is the conversation directory: buyers see their own threads, admins
// every thread in rooms they administer, superadmins everything. Threads with
// unread messages for the viewer sort first, then recency. That dual sort is
// a UX contract, not an implementation detail.
func (uc *ConversationUseCase) List(ctx context.Context, identity entity.Identity, limit, offset int) ([]*ConversationResponse, int64, error) {
	var conversations []*entity.Conversation
	var err error

	switch identity.Role {
	case entity.RoleBuyer:
		conversations, err = uc.conversationRepo.ListByBuyerID(ctx, identity.UserID)
	case entity.RoleAdmin:
		var rooms []*entity.Room
		rooms, err = uc.roomRepo.ListByAdminID(ctx, identity.UserID)
		if err == nil {
			roomIDs := make([]string, 0, len(rooms))
			for _, room := range rooms {
				roomIDs = append(roomIDs, room.ID)
			}
			conversations, err = uc.conversationRepo.ListByRoomIDs(ctx, roomIDs)
		}
	case entity.RoleSuperadmin:
		conversations, err = uc.conversationRepo.ListAll(ctx)
	default:
		return nil, 0, errors.Forbidden("Unknown role", nil)
	}
	if err != nil {
		return nil, 0, err
	}

	viewerID := identity.UserID
	sort.SliceStable(conversations, func(i, j int) bool {
		iUnread := conversations[i].UnreadFor(viewerID) > 0
		jUnread := conversations[j].UnreadFor(viewerID) > 0
		if iUnread != jUnread {
			return iUnread
		}
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})

	total := int64(len(conversations))

	start := offset
	if start > len(conversations) {
		start = len(conversations)
	}
	end := len(conversations)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	responses := make([]*ConversationResponse, 0, end-start)
	for _, conversation := range conversations[start:end] {
		responses = append(responses, uc.buildResponse(ctx, identity, conversation, nil))
	}

	return responses, total, nil
}

// Purge deletes a conversation and all of its messages. Superadmin only;
// nothing else ever deletes a conversation.
func (uc *ConversationUseCase) Purge(ctx context.Context, identity entity.Identity, conversationID string) error {
	if !identity.IsSuperadmin() {
		return errors.Forbidden("Superadmin privileges required", nil)
	}

	if _, err := uc.conversationRepo.GetByID(ctx, conversationID); err != nil {
		return err
	}

	logger.Info("Superadmin %s purging conversation %s", identity.UserID, conversationID)
	return uc.conversationRepo.Delete(ctx, conversationID)
}

// buildResponse embeds the room and the "other participant" for the viewer: a
// buyer sees the room's admin, everyone else sees the buyer. Embed lookups are
// best-effort; a missing user never fails the listing.
func (uc *ConversationUseCase) buildResponse(ctx context.Context, identity entity.Identity, conversation *entity.Conversation, room *entity.Room) *ConversationResponse {
	response := &ConversationResponse{
		Conversation: conversation,
		Room:         room,
		Unread:       conversation.UnreadFor(identity.UserID),
	}

	if response.Room == nil {
		if r, err := uc.roomRepo.GetByID(ctx, conversation.RoomID); err == nil {
			response.Room = r
		} else {
			logger.Warn("Room %s not found for conversation %s: %v", conversation.RoomID, conversation.ID, err)
		}
	}

	otherID := conversation.BuyerID
	if identity.Role == entity.RoleBuyer && response.Room != nil {
		otherID = response.Room.AdminID
	}
	if user, err := uc.userRepo.GetByID(ctx, otherID); err == nil {
		response.OtherUser = user
	} else {
		logger.Warn("User %s not found for conversation %s: %v", otherID, conversation.ID, err)
	}

	return response
}
