package usecase

import (
	"context"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

type CreateRoomUseCase struct {
	rooms      port.RoomRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewCreateRoomUseCase(rooms port.RoomRepositoryPort, properties port.PropertyRepositoryPort) *CreateRoomUseCase {
	return &CreateRoomUseCase{rooms: rooms, properties: properties}
}

func (uc *CreateRoomUseCase) Execute(ctx context.Context, actorID, propertyID uuid.UUID, in domain.RoomInput) (*domain.Room, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CreateRoom", "property_id": propertyID})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(true); err != nil {
		return nil, err
	}

	property, err := loadOwnedProperty(ctx, uc.properties, actorID, propertyID)
	if err != nil {
		return nil, err
	}

	room := domain.NewRoom(property, in)
	if err := uc.rooms.Create(ctx, room); err != nil {
		ucLogger.Error("Repository failed to create room", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"room_id": room.ID})
	return room, nil
}

type ListRoomsUseCase struct {
	rooms      port.RoomRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewListRoomsUseCase(rooms port.RoomRepositoryPort, properties port.PropertyRepositoryPort) *ListRoomsUseCase {
	return &ListRoomsUseCase{rooms: rooms, properties: properties}
}

func (uc *ListRoomsUseCase) Execute(ctx context.Context, propertyID uuid.UUID) ([]domain.Room, error) {
	if _, err := uc.properties.FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	return uc.rooms.FindByProperty(ctx, propertyID)
}

type GetRoomUseCase struct {
	rooms port.RoomRepositoryPort
}

func NewGetRoomUseCase(rooms port.RoomRepositoryPort) *GetRoomUseCase {
	return &GetRoomUseCase{rooms: rooms}
}

func (uc *GetRoomUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	return uc.rooms.FindByID(ctx, id)
}

type UpdateRoomUseCase struct {
	rooms      port.RoomRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewUpdateRoomUseCase(rooms port.RoomRepositoryPort, properties port.PropertyRepositoryPort) *UpdateRoomUseCase {
	return &UpdateRoomUseCase{rooms: rooms, properties: properties}
}

func (uc *UpdateRoomUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, in domain.RoomInput) (*domain.Room, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateRoom", "room_id": id})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(false); err != nil {
		return nil, err
	}

	room, err := uc.rooms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadOwnedProperty(ctx, uc.properties, actorID, room.PropertyID); err != nil {
		return nil, err
	}

	in.Apply(room)
	if err := uc.rooms.Update(ctx, room); err != nil {
		ucLogger.Error("Repository failed to update room", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return room, nil
}

type DeleteRoomUseCase struct {
	rooms      port.RoomRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewDeleteRoomUseCase(rooms port.RoomRepositoryPort, properties port.PropertyRepositoryPort) *DeleteRoomUseCase {
	return &DeleteRoomUseCase{rooms: rooms, properties: properties}
}

func (uc *DeleteRoomUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeleteRoom", "room_id": id})
	ucLogger.Info("Use case started", nil)

	room, err := uc.rooms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := loadOwnedProperty(ctx, uc.properties, actorID, room.PropertyID); err != nil {
		return err
	}

	if err := uc.rooms.SoftDelete(ctx, id); err != nil {
		ucLogger.Error("Repository failed to delete room", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
