package oxy_adapter

import (
	"errors"
	"fmt"

	"homiio/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotLocalToken - токен не похож на JWT, его надо проверять удаленно.
var ErrNotLocalToken = errors.New("token is not a locally verifiable JWT")

// TokenVerifier проверяет access-токены Oxy, подписанные HS256.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret cannot be empty")
	}
	return &TokenVerifier{secret: []byte(secret)}, nil
}

type accessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func (v *TokenVerifier) Verify(tokenString string) (*domain.Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrNotLocalToken
		}
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token claims are invalid")
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("token has no user id")
	}

	identity := &domain.Identity{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		identity.ExpiresAt = &exp
	}
	return identity, nil
}
