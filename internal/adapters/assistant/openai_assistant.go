package assistant_adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// OpenAIAssistant отвечает от имени Sindi через OpenAI-совместимый API.
// Реализует port.AssistantPort.
type OpenAIAssistant struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewOpenAIAssistant(cfg Config) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant API key cannot be empty")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIAssistant{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        model,
		systemPrompt: domain.SindiSystemPrompt,
	}, nil
}

func (a *OpenAIAssistant) Complete(ctx context.Context, history []domain.ChatMessage) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	assistantLogger := logger.WithFields(port.Fields{
		"component": "OpenAIAssistant",
		"method":    "Complete",
		"model":     a.model,
		"messages":  len(history),
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    a.buildMessages(history),
		Temperature: 0.4,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			assistantLogger.Error("Assistant API returned error", err, port.Fields{"status_code": apiErr.HTTPStatusCode})
		} else {
			assistantLogger.Error("Failed to call assistant API", err, nil)
		}
		return "", domain.NewUpstreamError("assistant", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.NewUpstreamError("assistant", fmt.Errorf("empty completion"))
	}

	assistantLogger.Debug("Completion received.", port.Fields{"total_tokens": resp.Usage.TotalTokens})
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (a *OpenAIAssistant) buildMessages(history []domain.ChatMessage) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: a.systemPrompt})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case domain.ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case domain.ChatRoleSystem:
			// системные сообщения из истории не передаются
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}
