package rest

import (
	"context"
	"time"

	"homiio/internal/adapters/notifier"
	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthUC struct{ mock.Mock }

func (m *mockAuthUC) Execute(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	id, _ := args.Get(0).(*domain.Identity)
	return id, args.Error(1)
}

type mockResolveUC struct{ mock.Mock }

func (m *mockResolveUC) Execute(ctx context.Context, identity *domain.Identity) (*domain.Profile, error) {
	args := m.Called(ctx, identity)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}

type mockListPropertiesUC struct{ mock.Mock }

func (m *mockListPropertiesUC) Execute(ctx context.Context, f domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error) {
	args := m.Called(ctx, f, page)
	p, _ := args.Get(0).(*domain.Paginated[domain.Property])
	return p, args.Error(1)
}

type mockGetPropertyUC struct{ mock.Mock }

func (m *mockGetPropertyUC) Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}

type mockRecordViewUC struct{ mock.Mock }

func (m *mockRecordViewUC) Execute(ctx context.Context, profileID *uuid.UUID, propertyID uuid.UUID) error {
	return m.Called(ctx, profileID, propertyID).Error(0)
}

type mockCreateViewingUC struct{ mock.Mock }

func (m *mockCreateViewingUC) Execute(ctx context.Context, requesterID, propertyID uuid.UUID, scheduledAt time.Time, message string) (*domain.ViewingRequest, error) {
	args := m.Called(ctx, requesterID, propertyID, scheduledAt, message)
	v, _ := args.Get(0).(*domain.ViewingRequest)
	return v, args.Error(1)
}

type mockDecideViewingUC struct{ mock.Mock }

func (m *mockDecideViewingUC) Execute(ctx context.Context, actorID, id uuid.UUID, note string) (*domain.ViewingRequest, error) {
	args := m.Called(ctx, actorID, id, note)
	v, _ := args.Get(0).(*domain.ViewingRequest)
	return v, args.Error(1)
}

type mockListNotificationsUC struct{ mock.Mock }

func (m *mockListNotificationsUC) Execute(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page domain.Page) (*domain.NotificationList, error) {
	args := m.Called(ctx, profileID, unreadOnly, page)
	l, _ := args.Get(0).(*domain.NotificationList)
	return l, args.Error(1)
}

type mockWebhookUC struct{ mock.Mock }

func (m *mockWebhookUC) Execute(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

type mockTerminateLeaseUC struct{ mock.Mock }

func (m *mockTerminateLeaseUC) Execute(ctx context.Context, actorID, id uuid.UUID, reason string) (*domain.Lease, error) {
	args := m.Called(ctx, actorID, id, reason)
	l, _ := args.Get(0).(*domain.Lease)
	return l, args.Error(1)
}

type mockLimiter struct{ allow bool }

func (l *mockLimiter) Allow(key string) bool { return l.allow }

// fakeStream отдает заранее подготовленный канал и сообщает об отключении.
type fakeStream struct {
	ch      notifier.ClientChannel
	removed chan uuid.UUID
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(notifier.ClientChannel, 4), removed: make(chan uuid.UUID, 1)}
}

func (s *fakeStream) AddClient(profileID uuid.UUID) notifier.ClientChannel { return s.ch }

func (s *fakeStream) RemoveClient(profileID uuid.UUID, ch notifier.ClientChannel) {
	s.removed <- profileID
}
