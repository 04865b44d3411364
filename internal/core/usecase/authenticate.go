package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
)

type AuthenticateUseCase struct {
	provider port.IdentityProviderPort
	cache    port.SessionCachePort
	ttl      time.Duration
}

// NewAuthenticateUseCase - cache может быть nil, тогда каждый запрос идет к провайдеру.
func NewAuthenticateUseCase(provider port.IdentityProviderPort, cache port.SessionCachePort, ttl time.Duration) *AuthenticateUseCase {
	return &AuthenticateUseCase{provider: provider, cache: cache, ttl: ttl}
}

func (uc *AuthenticateUseCase) Execute(ctx context.Context, token string) (*domain.Identity, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "Authenticate"})

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.NewUnauthorized("missing bearer token")
	}

	key := SessionCacheKey(token)
	if uc.cache != nil {
		identity, found, err := uc.cache.Get(ctx, key)
		if err != nil {
			// кэш недоступен - идем к провайдеру
			logger.Warn("Session cache lookup failed, falling back to provider", port.Fields{"error": err.Error()})
		} else if found {
			logger.Debug("Session found in cache", port.Fields{"user_id": identity.UserID})
			return identity, nil
		}
	}

	identity, err := uc.provider.Validate(ctx, token)
	if err != nil {
		logger.Warn("Token validation failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	if ttl := uc.cacheTTL(identity, time.Now()); uc.cache != nil && ttl > 0 {
		if err := uc.cache.Set(ctx, key, identity, ttl); err != nil {
			logger.Warn("Failed to cache session", port.Fields{"error": err.Error()})
		}
	}

	logger.Debug("Token validated by provider", port.Fields{"user_id": identity.UserID})
	return identity, nil
}

// cacheTTL не дает кэшу пережить сам токен.
func (uc *AuthenticateUseCase) cacheTTL(identity *domain.Identity, now time.Time) time.Duration {
	ttl := uc.ttl
	if identity.ExpiresAt != nil {
		if left := identity.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
	}
	return ttl
}

// SessionCacheKey - ключ кэша сессии. Сам токен в кэш не попадает.
func SessionCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}
