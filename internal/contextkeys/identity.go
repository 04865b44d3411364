package contextkeys

import (
	"context"
	"homiio/internal/core/domain"
)

type identityKeyType struct{}
type profileKeyType struct{}

var (
	identityKey = identityKeyType{}
	profileKey  = profileKeyType{}
)

// ContextWithIdentity кладет в контекст пользователя, подтвержденного Oxy.
func ContextWithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

// ContextWithProfile кладет в контекст активный профиль пользователя.
func ContextWithProfile(ctx context.Context, profile *domain.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

func ProfileFromContext(ctx context.Context) (*domain.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*domain.Profile)
	return profile, ok && profile != nil
}
