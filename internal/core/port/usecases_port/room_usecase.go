package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type CreateRoomUseCasePort interface {
	Execute(ctx context.Context, actorID, propertyID uuid.UUID, in domain.RoomInput) (*domain.Room, error)
}

type ListRoomsUseCasePort interface {
	Execute(ctx context.Context, propertyID uuid.UUID) ([]domain.Room, error)
}

type GetRoomUseCasePort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.Room, error)
}

type UpdateRoomUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID, in domain.RoomInput) (*domain.Room, error)
}

type DeleteRoomUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) error
}
