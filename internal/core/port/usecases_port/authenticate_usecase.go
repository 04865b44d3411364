package usecases_port

import (
	"context"

	"homiio/internal/core/domain"
)

type AuthenticateUseCasePort interface {
	Execute(ctx context.Context, token string) (*domain.Identity, error)
}
