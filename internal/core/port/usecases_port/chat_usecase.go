package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

// ChatReply - результат отправки сообщения ассистенту.
type ChatReply struct {
	Conversation *domain.ChatConversation
	UserMessage  *domain.ChatMessage
	Reply        *domain.ChatMessage
}

type SendChatMessageUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, conversationID *uuid.UUID, text string) (*ChatReply, error)
}

type ListConversationsUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID) ([]domain.ChatConversation, error)
}

type GetConversationUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ChatConversation, error)
}

type DeleteConversationUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) error
}
