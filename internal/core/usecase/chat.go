package usecase

import (
	"context"
	"fmt"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type SendChatMessageUseCase struct {
	repo      port.ChatRepositoryPort
	assistant port.AssistantPort
	limiter   port.RateLimiterPort
}

func NewSendChatMessageUseCase(repo port.ChatRepositoryPort, assistant port.AssistantPort, limiter port.RateLimiterPort) *SendChatMessageUseCase {
	return &SendChatMessageUseCase{repo: repo, assistant: assistant, limiter: limiter}
}

func (uc *SendChatMessageUseCase) Execute(ctx context.Context, profileID uuid.UUID, conversationID *uuid.UUID, text string) (*usecases_port.ChatReply, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SendChatMessage", "profile_id": profileID})
	ucLogger.Info("Use case started", nil)

	if err := domain.ValidateChatMessage(text); err != nil {
		return nil, err
	}
	if uc.limiter != nil && !uc.limiter.Allow("chat:"+profileID.String()) {
		ucLogger.Warn("Chat rate limit exceeded", nil)
		return nil, domain.ErrRateLimited
	}

	var conversation *domain.ChatConversation
	if conversationID != nil {
		c, err := loadOwnConversation(ctx, uc.repo, profileID, *conversationID)
		if err != nil {
			return nil, err
		}
		conversation = c
	} else {
		conversation = domain.NewConversation(profileID, text)
		if err := uc.repo.CreateConversation(ctx, conversation); err != nil {
			ucLogger.Error("Failed to create conversation", err, nil)
			return nil, err
		}
	}
	ucLogger = ucLogger.WithFields(port.Fields{"conversation_id": conversation.ID})

	userMsg := domain.NewChatMessage(conversation.ID, domain.ChatRoleUser, text)
	if err := uc.repo.AddMessage(ctx, userMsg); err != nil {
		ucLogger.Error("Failed to save user message", err, nil)
		return nil, err
	}

	history, err := uc.repo.FindMessages(ctx, conversation.ID, domain.ChatHistoryWindow)
	if err != nil {
		ucLogger.Error("Failed to load conversation history", err, nil)
		return nil, err
	}

	answer, err := uc.assistant.Complete(ctx, domain.LastMessages(history, domain.ChatHistoryWindow))
	if err != nil {
		ucLogger.Error("Assistant failed to answer", err, nil)
		return nil, err
	}

	reply := domain.NewChatMessage(conversation.ID, domain.ChatRoleAssistant, answer)
	if err := uc.repo.AddMessage(ctx, reply); err != nil {
		ucLogger.Error("Failed to save assistant reply", err, nil)
		return nil, fmt.Errorf("failed to save assistant reply: %w", err)
	}
	conversation.UpdatedAt = reply.CreatedAt

	ucLogger.Info("Use case finished successfully", nil)
	return &usecases_port.ChatReply{Conversation: conversation, UserMessage: userMsg, Reply: reply}, nil
}

type ListConversationsUseCase struct {
	repo port.ChatRepositoryPort
}

func NewListConversationsUseCase(repo port.ChatRepositoryPort) *ListConversationsUseCase {
	return &ListConversationsUseCase{repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, profileID uuid.UUID) ([]domain.ChatConversation, error) {
	return uc.repo.FindConversations(ctx, profileID)
}

type GetConversationUseCase struct {
	repo port.ChatRepositoryPort
}

func NewGetConversationUseCase(repo port.ChatRepositoryPort) *GetConversationUseCase {
	return &GetConversationUseCase{repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ChatConversation, error) {
	conversation, err := loadOwnConversation(ctx, uc.repo, actorID, id)
	if err != nil {
		return nil, err
	}
	messages, err := uc.repo.FindMessages(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	conversation.Messages = messages
	return conversation, nil
}

type DeleteConversationUseCase struct {
	repo port.ChatRepositoryPort
}

func NewDeleteConversationUseCase(repo port.ChatRepositoryPort) *DeleteConversationUseCase {
	return &DeleteConversationUseCase{repo: repo}
}

func (uc *DeleteConversationUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := loadOwnConversation(ctx, uc.repo, actorID, id); err != nil {
		return err
	}
	return uc.repo.DeleteConversation(ctx, id)
}

func loadOwnConversation(ctx context.Context, repo port.ChatRepositoryPort, actorID, id uuid.UUID) (*domain.ChatConversation, error) {
	c, err := repo.FindConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ProfileID != actorID {
		return nil, domain.NewForbidden("conversation belongs to another profile")
	}
	return c, nil
}
