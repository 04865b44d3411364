package usecases_port

import (
	"context"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type CreateLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID uuid.UUID, in domain.LeaseInput) (*domain.Lease, error)
}

type GetLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error)
}

type ListLeasesUseCasePort interface {
	Execute(ctx context.Context, actorID uuid.UUID, filter domain.LeaseFilter, page domain.Page) (*domain.Paginated[domain.Lease], error)
}

type UpdateLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID, in domain.LeaseInput) (*domain.Lease, error)
}

type SubmitLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error)
}

type SignLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error)
}

type TerminateLeaseUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID, reason string) (*domain.Lease, error)
}

type RefreshLeaseStatusesUseCasePort interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}
