package usecases_port

import (
	"context"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type CreateViewingRequestUseCasePort interface {
	Execute(ctx context.Context, requesterID, propertyID uuid.UUID, scheduledAt time.Time, message string) (*domain.ViewingRequest, error)
}

type ListMyViewingRequestsUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error)
}

type ListPropertyViewingRequestsUseCasePort interface {
	Execute(ctx context.Context, actorID, propertyID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error)
}

type GetViewingRequestUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ViewingRequest, error)
}

// DecideViewingRequestUseCasePort - одобрение или отклонение заявки владельцем.
type DecideViewingRequestUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID, note string) (*domain.ViewingRequest, error)
}

type CancelViewingRequestUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ViewingRequest, error)
}

type ExpireStaleViewingsUseCasePort interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}
