package port

import (
	"context"
	"time"

	"homiio/internal/core/domain"
)

// PaymentProviderPort - контракт платежного провайдера (Stripe Checkout).
type PaymentProviderPort interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	// ParseWebhook проверяет подпись и разбирает событие.
	ParseWebhook(payload []byte, signature string) (*domain.BillingEvent, error)
}

// IdempotencyPort - однократное выполнение операции по ключу.
type IdempotencyPort interface {
	// Acquire возвращает false, если ключ уже занят.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
