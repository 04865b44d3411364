package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type CreateCheckoutSessionUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, email string, product domain.BillingProduct) (*domain.CheckoutSession, error)
}

type ConfirmCheckoutSessionUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, sessionID string) (*domain.Entitlements, error)
}

type HandleBillingWebhookUseCasePort interface {
	Execute(ctx context.Context, payload []byte, signature string) error
}

type GetBillingStatusUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID) (*domain.Entitlements, error)
}
