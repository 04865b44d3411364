package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type ResolveProfileUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity) (*domain.Profile, error)
}

type ListProfilesUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity) ([]domain.Profile, error)
}

type GetProfileUseCasePort interface {
	Execute(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

type CreateProfileUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity, in domain.ProfileInput) (*domain.Profile, error)
}

type UpdateProfileUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID, in domain.ProfileInput) (*domain.Profile, error)
}

type ActivateProfileUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Profile, error)
}

type DeleteProfileUseCasePort interface {
	Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID) error
}
