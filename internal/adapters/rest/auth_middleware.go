package rest

import (
	"net/http"
	"strings"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"
)

// AuthMiddleware проверяет bearer-токен и кладет в контекст пользователя и его активный профиль.
type AuthMiddleware struct {
	authUC    usecases_port.AuthenticateUseCasePort
	resolveUC usecases_port.ResolveProfileUseCasePort
}

func NewAuthMiddleware(authUC usecases_port.AuthenticateUseCasePort, resolveUC usecases_port.ResolveProfileUseCasePort) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC, resolveUC: resolveUC}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Authenticate - обязательная аутентификация.
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteJSONError(w, domain.NewUnauthorized("authorization header with bearer token required"))
			return
		}

		r, err := am.attach(r, token)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuthenticate пропускает анонимные запросы. Невалидный токен
// на публичных маршрутах тоже дает анонимный доступ.
func (am *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		authed, err := am.attach(r, token)
		if err != nil {
			contextkeys.LoggerFromContext(r.Context()).Debug("Optional authentication failed, continuing anonymously", port.Fields{
				"reason": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, authed)
	})
}

func (am *AuthMiddleware) attach(r *http.Request, token string) (*http.Request, error) {
	ctx := r.Context()
	identity, err := am.authUC.Execute(ctx, token)
	if err != nil {
		return r, err
	}

	profile, err := am.resolveUC.Execute(ctx, identity)
	if err != nil {
		return r, err
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"user_id":    identity.UserID,
		"profile_id": profile.ID.String(),
	})
	ctx = contextkeys.ContextWithIdentity(ctx, identity)
	ctx = contextkeys.ContextWithProfile(ctx, profile)
	ctx = contextkeys.ContextWithLogger(ctx, logger)
	return r.WithContext(ctx), nil
}

// currentProfile достает профиль, положенный Authenticate.
func currentProfile(r *http.Request) (*domain.Profile, *domain.Identity, error) {
	profile, ok := contextkeys.ProfileFromContext(r.Context())
	if !ok {
		return nil, nil, domain.NewUnauthorized("authentication required")
	}
	identity, _ := contextkeys.IdentityFromContext(r.Context())
	return profile, identity, nil
}
