package repository

import (
	"context"

	"pasarmobil/internal/domain/entity"
)

// UserRepository is a read-only view of externally managed accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
