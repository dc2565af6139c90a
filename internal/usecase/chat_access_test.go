package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/pkg/errors"
)

func TestChatAccessMatrix(t *testing.T) {
	roomRepo := newMemRoomRepo(
		&entity.Room{ID: "room-1", AdminID: "admin-1", IsActive: true},
		&entity.Room{ID: "room-2", AdminID: "admin-2", IsActive: true},
	)
	access := NewChatAccess(roomRepo)
	conversation := &entity.Conversation{ID: "room-1_buyer-1", RoomID: "room-1", BuyerID: "buyer-1"}
	ctx := context.Background()

	tests := []struct {
		name      string
		identity  entity.Identity
		canRead   bool
		canWrite  bool
	}{
		{"owning buyer", buyer("buyer-1"), true, true},
		{"other buyer", buyer("buyer-2"), false, false},
		{"room admin", admin("admin-1"), true, true},
		{"admin of another room", admin("admin-2"), false, false},
		{"superadmin", superadmin("sa-1"), true, true},
		{"unknown role", entity.Identity{UserID: "x", Role: "support"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readErr := access.CanRead(ctx, tt.identity, conversation)
			writeErr := access.CanWrite(ctx, tt.identity, conversation)

			if tt.canRead {
				assert.NoError(t, readErr)
			} else {
				assert.True(t, errors.Is(readErr, "NOT_FOUND"), "read denial must look like a missing conversation")
			}
			if tt.canWrite {
				assert.NoError(t, writeErr)
			} else {
				assert.True(t, errors.Is(writeErr, "FORBIDDEN"))
			}
		})
	}
}

func TestChatAccessDeactivatedRoom(t *testing.T) {
	roomRepo := newMemRoomRepo(&entity.Room{ID: "room-1", AdminID: "admin-1", IsActive: false})
	access := NewChatAccess(roomRepo)
	conversation := &entity.Conversation{ID: "room-1_buyer-1", RoomID: "room-1", BuyerID: "buyer-1"}
	ctx := context.Background()

	// Participants keep read access to history.
	assert.NoError(t, access.CanRead(ctx, buyer("buyer-1"), conversation))
	assert.NoError(t, access.CanRead(ctx, admin("admin-1"), conversation))

	// Nobody but a superadmin can still write.
	assert.True(t, errors.Is(access.CanWrite(ctx, buyer("buyer-1"), conversation), "FORBIDDEN"))
	assert.True(t, errors.Is(access.CanWrite(ctx, admin("admin-1"), conversation), "FORBIDDEN"))
	assert.NoError(t, access.CanWrite(ctx, superadmin("sa-1"), conversation))
}

func TestChatAccessFollowsAdminReassignment(t *testing.T) {
	roomRepo := newMemRoomRepo(&entity.Room{ID: "room-1", AdminID: "admin-1", IsActive: true})
	access := NewChatAccess(roomRepo)
	conversation := &entity.Conversation{ID: "room-1_buyer-1", RoomID: "room-1", BuyerID: "buyer-1"}
	ctx := context.Background()

	assert.NoError(t, access.CanRead(ctx, admin("admin-1"), conversation))

	// Reassigning the room hands its conversations to the new admin.
	roomRepo.rooms["room-1"].AdminID = "admin-2"

	assert.True(t, errors.Is(access.CanRead(ctx, admin("admin-1"), conversation), "NOT_FOUND"))
	assert.NoError(t, access.CanRead(ctx, admin("admin-2"), conversation))
}
