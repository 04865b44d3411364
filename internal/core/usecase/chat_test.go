package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSendChatMessage_NewConversation(t *testing.T) {
	profileID := uuid.New()
	repo := new(mockChatRepo)
	assistant := new(mockAssistant)
	limiter := new(mockLimiter)

	limiter.On("Allow", "chat:"+profileID.String()).Return(true)
	repo.On("CreateConversation", mock.Anything, mock.AnythingOfType("*domain.ChatConversation")).Return(nil)
	repo.On("AddMessage", mock.Anything, mock.AnythingOfType("*domain.ChatMessage")).Return(nil)
	repo.On("FindMessages", mock.Anything, mock.AnythingOfType("uuid.UUID"), domain.ChatHistoryWindow).
		Return([]domain.ChatMessage{{Role: domain.ChatRoleUser, Content: "Can my landlord keep my deposit?"}}, nil)
	assistant.On("Complete", mock.Anything, mock.Anything).Return("Only for documented damage.", nil)

	uc := NewSendChatMessageUseCase(repo, assistant, limiter)
	reply, err := uc.Execute(context.Background(), profileID, nil, "Can my landlord keep my deposit?")

	require.NoError(t, err)
	assert.Equal(t, "Can my landlord keep my deposit?", reply.Conversation.Title)
	assert.Equal(t, domain.ChatRoleAssistant, reply.Reply.Role)
	assert.Equal(t, "Only for documented damage.", reply.Reply.Content)
	repo.AssertNumberOfCalls(t, "AddMessage", 2)
}

func TestSendChatMessage_RateLimited(t *testing.T) {
	profileID := uuid.New()
	repo := new(mockChatRepo)
	limiter := new(mockLimiter)
	limiter.On("Allow", mock.Anything).Return(false)

	_, err := NewSendChatMessageUseCase(repo, new(mockAssistant), limiter).Execute(context.Background(), profileID, nil, "hello")

	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	repo.AssertNotCalled(t, "CreateConversation", mock.Anything, mock.Anything)
}

func TestSendChatMessage_Validation(t *testing.T) {
	uc := NewSendChatMessageUseCase(new(mockChatRepo), new(mockAssistant), nil)

	_, err := uc.Execute(context.Background(), uuid.New(), nil, "   ")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = uc.Execute(context.Background(), uuid.New(), nil, strings.Repeat("a", domain.MaxChatMessageLen+1))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSendChatMessage_ForeignConversation(t *testing.T) {
	convID := uuid.New()
	repo := new(mockChatRepo)
	repo.On("FindConversation", mock.Anything, convID).Return(&domain.ChatConversation{ID: convID, ProfileID: uuid.New()}, nil)

	_, err := NewSendChatMessageUseCase(repo, new(mockAssistant), nil).Execute(context.Background(), uuid.New(), &convID, "hi")

	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestSendChatMessage_AssistantDown(t *testing.T) {
	profileID := uuid.New()
	repo := new(mockChatRepo)
	assistant := new(mockAssistant)
	repo.On("CreateConversation", mock.Anything, mock.Anything).Return(nil)
	repo.On("AddMessage", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindMessages", mock.Anything, mock.Anything, domain.ChatHistoryWindow).Return([]domain.ChatMessage{}, nil)
	assistant.On("Complete", mock.Anything, mock.Anything).Return("", domain.NewUpstreamError("assistant", errors.New("timeout")))

	_, err := NewSendChatMessageUseCase(repo, assistant, nil).Execute(context.Background(), profileID, nil, "hi")

	assert.Equal(t, domain.CodeUpstreamError, domain.AsAppError(err).Code)
	repo.AssertNumberOfCalls(t, "AddMessage", 1)
}

func TestGetConversation_LoadsAllMessages(t *testing.T) {
	profileID := uuid.New()
	convID := uuid.New()
	repo := new(mockChatRepo)
	repo.On("FindConversation", mock.Anything, convID).Return(&domain.ChatConversation{ID: convID, ProfileID: profileID}, nil)
	repo.On("FindMessages", mock.Anything, convID, 0).Return([]domain.ChatMessage{{}, {}, {}}, nil)

	c, err := NewGetConversationUseCase(repo).Execute(context.Background(), profileID, convID)

	require.NoError(t, err)
	assert.Len(t, c.Messages, 3)
}
