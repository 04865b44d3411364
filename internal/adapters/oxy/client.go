package oxy_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
)

// Client - клиент сервиса сессий Oxy. Реализует port.IdentityProviderPort.
type Client struct {
	baseURL    string
	httpClient *http.Client
	verifier   *TokenVerifier
}

// NewClient - конструктор. verifier может быть nil, тогда каждый токен
// проверяется удаленно.
func NewClient(baseURL string, timeout time.Duration, verifier *TokenVerifier) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		verifier:   verifier,
	}
}

func (c *Client) Validate(ctx context.Context, token string) (*domain.Identity, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "OxyClient",
		"method":    "Validate",
	})

	if c.verifier != nil {
		identity, err := c.verifier.Verify(token)
		switch {
		case err == nil:
			clientLogger.Debug("Token verified locally.", port.Fields{"user_id": identity.UserID})
			return identity, nil
		case errors.Is(err, ErrNotLocalToken):
			clientLogger.Debug("Token is not a local JWT, asking session service.", nil)
		default:
			clientLogger.Warn("Local token verification failed", port.Fields{"error": err.Error()})
			return nil, domain.NewUnauthorized("invalid or expired token")
		}
	}

	return c.validateRemote(ctx, token, clientLogger)
}

func (c *Client) validateRemote(ctx context.Context, token string, clientLogger port.LoggerPort) (*domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/validate", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to reach session service", err, nil)
		return nil, domain.NewUpstreamError("session service", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		clientLogger.Info("Session service rejected token.", port.Fields{"status_code": resp.StatusCode})
		return nil, domain.NewUnauthorized("invalid or expired token")
	case resp.StatusCode != http.StatusOK:
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("session service returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
		clientLogger.Error("Received non-OK response from session service", err, port.Fields{"status_code": resp.StatusCode})
		return nil, domain.NewUpstreamError("session service", err)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		clientLogger.Error("Failed to decode session service response", err, nil)
		return nil, domain.NewUpstreamError("session service", fmt.Errorf("failed to decode validation response: %w", err))
	}
	if !body.Valid || body.User == nil || body.User.id() == "" {
		return nil, domain.NewUnauthorized("invalid or expired token")
	}

	return &domain.Identity{
		UserID:   body.User.id(),
		Username: body.User.Username,
		Email:    body.User.Email,
		Name:     body.User.Name.display(),
		Avatar:   body.User.Avatar,
	}, nil
}
