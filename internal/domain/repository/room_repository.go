package repository

import (
	"context"

	"pasarmobil/internal/domain/entity"
)

// RoomRepository is a read-only view of externally managed rooms.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	ListByAdminID(ctx context.Context, adminID string) ([]*entity.Room, error)
}
