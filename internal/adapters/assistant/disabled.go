package assistant_adapter

import (
	"context"
	"errors"

	"homiio/internal/core/domain"
)

// DisabledAssistant используется без AI_API_KEY.
type DisabledAssistant struct{}

func (DisabledAssistant) Complete(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return "", domain.NewUpstreamError("assistant", errors.New("assistant is not configured"))
}
