package repository

import (
	"context"

	"pasarmobil/internal/domain/entity"
)

// ItemRepository is a read-only view of externally managed listings.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
}
