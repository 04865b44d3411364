package port

import (
	"context"
	"time"

	"homiio/internal/core/domain"
)

// IdentityProviderPort - проверка bearer-токена у провайдера сессий (Oxy).
type IdentityProviderPort interface {
	Validate(ctx context.Context, token string) (*domain.Identity, error)
}

// SessionCachePort - кэш проверенных токенов. Ключ - хэш токена.
type SessionCachePort interface {
	Get(ctx context.Context, key string) (*domain.Identity, bool, error)
	Set(ctx context.Context, key string, identity *domain.Identity, ttl time.Duration) error
}
