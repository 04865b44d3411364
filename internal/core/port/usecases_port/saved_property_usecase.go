package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type SavePropertyUseCasePort interface {
	Execute(ctx context.Context, profileID, propertyID uuid.UUID, notes string) error
}

type UnsavePropertyUseCasePort interface {
	Execute(ctx context.Context, profileID, propertyID uuid.UUID) error
}

type ListSavedPropertiesUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, page domain.Page) (*domain.Paginated[domain.Property], error)
}

type RecordPropertyViewUseCasePort interface {
	// profileID == nil для анонимного просмотра
	Execute(ctx context.Context, profileID *uuid.UUID, propertyID uuid.UUID) error
}

type ListRecentlyViewedUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID) ([]domain.Property, error)
}
