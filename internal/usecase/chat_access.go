package usecase

import (
	"context"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/domain/repository"
	"pasarmobil/pkg/errors"
)

// ChatAccess is the single authorization matrix for conversations. Every
// role/ownership decision in the messaging core goes through CanRead or
// CanWrite; nothing else inspects roles.
//
// Matrix: superadmin always passes; a buyer passes only for their own
// conversation; a room admin passes only for conversations in rooms they
// administer. Visibility follows the room's current admin, so reassigning a
// room's admin transfers its conversations with it.
type ChatAccess struct {
	roomRepo repository.RoomRepository
}

func NewChatAccess(roomRepo repository.RoomRepository) *ChatAccess {
	return &ChatAccess{
		roomRepo: roomRepo,
	}
}

// CanRead returns nil when identity may view the conversation. A denial is
// reported as NotFound, indistinguishable from a conversation that does not
// exist, so callers cannot probe for other buyers' threads.
func (g *ChatAccess) CanRead(ctx context.Context, identity entity.Identity, conversation *entity.Conversation) error {
	if g.isParticipant(ctx, identity, conversation) {
		return nil
	}
	return errors.NotFound("Conversation", nil)
}

// CanWrite returns nil when identity may send into the conversation. Write
// rights are stricter than read rights: the room must still be active, so a
// participant can keep reading history in a deactivated room without being
// able to post. Superadmins are exempt from the active check.
func (g *ChatAccess) CanWrite(ctx context.Context, identity entity.Identity, conversation *entity.Conversation) error {
	if identity.IsSuperadmin() {
		return nil
	}
	if !g.isParticipant(ctx, identity, conversation) {
		return errors.Forbidden("You cannot send in this conversation", nil)
	}

	room, err := g.roomRepo.GetByID(ctx, conversation.RoomID)
	if err != nil || !room.IsActive {
		return errors.Forbidden("You cannot send in this conversation", err)
	}

	return nil
}

func (g *ChatAccess) isParticipant(ctx context.Context, identity entity.Identity, conversation *entity.Conversation) bool {
	switch identity.Role {
	case entity.RoleSuperadmin:
		return true
	case entity.RoleBuyer:
		return identity.UserID == conversation.BuyerID
	case entity.RoleAdmin:
		room, err := g.roomRepo.GetByID(ctx, conversation.RoomID)
		return err == nil && room.AdminID == identity.UserID
	}
	return false
}
