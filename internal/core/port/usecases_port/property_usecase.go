package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type CreatePropertyUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID, in domain.PropertyInput) (*domain.Property, error)
}

type GetPropertyUseCasePort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

type ListPropertiesUseCasePort interface {
	Execute(ctx context.Context, filter domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error)
}

type ListOwnerPropertiesUseCasePort interface {
	Execute(ctx context.Context, ownerID uuid.UUID, page domain.Page) (*domain.Paginated[domain.Property], error)
}

type UpdatePropertyUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID, in domain.PropertyInput) (*domain.Property, error)
}

type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) error
}

type GetPropertyPricingUseCasePort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.EthicalPrice, error)
}
