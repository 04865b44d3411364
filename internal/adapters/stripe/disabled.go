package stripe_adapter

import (
	"context"
	"errors"

	"homiio/internal/core/domain"
)

var errPaymentsDisabled = errors.New("payments are not configured")

// DisabledProvider подставляется, когда STRIPE_SECRET_KEY не задан:
// остальные маршруты работают, оплата отвечает ошибкой.
type DisabledProvider struct{}

func (DisabledProvider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	return nil, domain.NewUpstreamError("stripe", errPaymentsDisabled)
}

func (DisabledProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	return nil, domain.NewUpstreamError("stripe", errPaymentsDisabled)
}

func (DisabledProvider) ParseWebhook(payload []byte, signature string) (*domain.BillingEvent, error) {
	return nil, domain.NewUpstreamError("stripe", errPaymentsDisabled)
}
