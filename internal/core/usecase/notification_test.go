package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListNotifications_Degraded(t *testing.T) {
	profileID := uuid.New()
	page := domain.NewPage(2, 10)
	repo := new(mockNotificationRepo)
	repo.On("FindByRecipient", mock.Anything, profileID, false, page).Return(nil, errors.New("pool closed"))

	list, err := NewListNotificationsUseCase(repo).Execute(context.Background(), profileID, false, page)

	require.NoError(t, err)
	assert.True(t, list.Degraded)
	assert.Empty(t, list.Items)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 10, list.PerPage)
}

func TestListNotifications_WithUnreadCount(t *testing.T) {
	profileID := uuid.New()
	page := domain.NewPage(1, 20)
	repo := new(mockNotificationRepo)
	repo.On("FindByRecipient", mock.Anything, profileID, true, page).Return(&domain.Paginated[domain.Notification]{
		Items:      []domain.Notification{{ID: uuid.New(), RecipientProfileID: profileID}},
		TotalCount: 1,
		Page:       1,
		PerPage:    20,
	}, nil)
	repo.On("CountUnread", mock.Anything, profileID).Return(int64(3), nil)

	list, err := NewListNotificationsUseCase(repo).Execute(context.Background(), profileID, true, page)

	require.NoError(t, err)
	assert.False(t, list.Degraded)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, int64(3), list.UnreadCount)
}

func TestMarkNotificationRead_OtherRecipient(t *testing.T) {
	n := &domain.Notification{ID: uuid.New(), RecipientProfileID: uuid.New()}
	repo := new(mockNotificationRepo)
	repo.On("FindByID", mock.Anything, n.ID).Return(n, nil)

	err := NewMarkNotificationReadUseCase(repo).Execute(context.Background(), uuid.New(), n.ID)

	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestHandleDomainEvent_ViewingRequested(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	event := domain.ViewingStatusChanged{
		EventID:            uuid.New(),
		Action:             domain.ViewingActionRequested,
		ViewingID:          uuid.New(),
		PropertyID:         uuid.New(),
		PropertyTitle:      "Sunny studio",
		RequesterProfileID: requester,
		OwnerProfileID:     owner,
		Status:             domain.ViewingPending,
		ScheduledAt:        time.Date(2026, 11, 3, 17, 30, 0, 0, time.UTC),
		OccurredAt:         time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	repo := new(mockNotificationRepo)
	notifier := new(mockNotifier)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientProfileID == owner && n.Type == domain.NotificationViewingRequest
	})).Return(nil)
	notifier.On("Notify", mock.Anything, owner, mock.AnythingOfType("*domain.Notification")).Return()

	err = NewHandleDomainEventUseCase(repo, notifier).Execute(context.Background(), domain.EventViewingStatusChanged, body)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 1)
	notifier.AssertExpectations(t)
}

func TestHandleDomainEvent_LeaseFullySignedNotifiesBoth(t *testing.T) {
	landlord := uuid.New()
	tenant := uuid.New()
	body, err := json.Marshal(domain.LeaseStatusChanged{
		EventID:           uuid.New(),
		Action:            domain.LeaseActionSigned,
		LeaseID:           uuid.New(),
		PropertyID:        uuid.New(),
		LandlordProfileID: landlord,
		TenantProfileID:   tenant,
		ActorProfileID:    &tenant,
		Status:            domain.LeaseActive,
	})
	require.NoError(t, err)

	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err = NewHandleDomainEventUseCase(repo, nil).Execute(context.Background(), domain.EventLeaseStatusChanged, body)

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestHandleDomainEvent_LeaseTerminatedNotifiesCounterpart(t *testing.T) {
	landlord := uuid.New()
	tenant := uuid.New()
	body, _ := json.Marshal(domain.LeaseStatusChanged{
		Action:            domain.LeaseActionTerminated,
		LandlordProfileID: landlord,
		TenantProfileID:   tenant,
		ActorProfileID:    &tenant,
		Status:            domain.LeaseTerminated,
		Reason:            "relocation",
	})

	repo := new(mockNotificationRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.RecipientProfileID == landlord && n.Message == "The lease has been terminated: relocation"
	})).Return(nil)

	err := NewHandleDomainEventUseCase(repo, nil).Execute(context.Background(), domain.EventLeaseStatusChanged, body)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHandleDomainEvent_Unsupported(t *testing.T) {
	err := NewHandleDomainEventUseCase(new(mockNotificationRepo), nil).Execute(context.Background(), "UnknownEvent", []byte(`{}`))
	assert.Error(t, err)
}
