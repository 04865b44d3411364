package domain

import "time"

// Identity - пользователь, подтвержденный провайдером сессий Oxy.
// Сами пользователи у нас не хранятся, только их профили.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`

	// ExpiresAt - срок действия токена, если провайдер его сообщил.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
