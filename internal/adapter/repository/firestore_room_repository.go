package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pasarmobil/internal/domain/entity"
	"pasarmobil/internal/domain/repository"
	"pasarmobil/pkg/errors"
)

type firestoreRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &firestoreRoomRepository{
		client: client,
	}
}

func (r *firestoreRoomRepository) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	doc, err := r.client.Collection("rooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", nil)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.Room
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreRoomRepository) ListByAdminID(ctx context.Context, adminID string) ([]*entity.Room, error) {
	iter := r.client.Collection("rooms").Where("adminId", "==", adminID).Documents(ctx)

	var rooms []*entity.Room
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate rooms", err)
		}

		var room entity.Room
		if err := doc.DataTo(&room); err != nil {
			return nil, errors.Internal("Failed to parse room data", err)
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}
