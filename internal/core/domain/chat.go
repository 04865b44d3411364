package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

const (
	// ChatHistoryWindow - сколько последних сообщений уходит в модель.
	ChatHistoryWindow = 20
	MaxChatMessageLen = 4000
	chatTitleLen      = 60
)

// SindiSystemPrompt - системная инструкция ассистента.
const SindiSystemPrompt = `You are Sindi, the Homiio housing assistant. You help tenants understand their rights, ` +
	`rental contracts, fair pricing and the renting process. Be concise, practical and neutral. ` +
	`When a question depends on local law, say so and suggest contacting a local tenant union or legal advisor. ` +
	`Never invent legal citations.`

type ChatConversation struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []ChatMessage
}

type ChatMessage struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           ChatRole
	Content        string
	CreatedAt      time.Time
}

// NewConversation создает диалог, заголовок берется из первого сообщения.
func NewConversation(profileID uuid.UUID, firstMessage string) *ChatConversation {
	now := time.Now().UTC()
	title := strings.TrimSpace(firstMessage)
	if utf8.RuneCountInString(title) > chatTitleLen {
		title = string([]rune(title)[:chatTitleLen]) + "..."
	}
	return &ChatConversation{
		ID:        uuid.New(),
		ProfileID: profileID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewChatMessage(conversationID uuid.UUID, role ChatRole, content string) *ChatMessage {
	return &ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
}

func ValidateChatMessage(text string) error {
	errs := ValidationErrors{}
	if strings.TrimSpace(text) == "" {
		errs.Add("message", "is required")
	} else if utf8.RuneCountInString(text) > MaxChatMessageLen {
		errs.Add("message", "is too long")
	}
	return errs.Err()
}

// LastMessages возвращает хвост истории длиной не больше n.
func LastMessages(history []ChatMessage, n int) []ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
