package usecase

import (
	"context"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}
func (m *mockProfileRepo) FindByUser(ctx context.Context, oxyUserID string) ([]domain.Profile, error) {
	args := m.Called(ctx, oxyUserID)
	p, _ := args.Get(0).([]domain.Profile)
	return p, args.Error(1)
}
func (m *mockProfileRepo) FindActiveByUser(ctx context.Context, oxyUserID string) (*domain.Profile, error) {
	args := m.Called(ctx, oxyUserID)
	p, _ := args.Get(0).(*domain.Profile)
	return p, args.Error(1)
}
func (m *mockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProfileRepo) SetActive(ctx context.Context, oxyUserID string, profileID uuid.UUID) error {
	return m.Called(ctx, oxyUserID, profileID).Error(0)
}
func (m *mockProfileRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockPropertyRepo struct{ mock.Mock }

func (m *mockPropertyRepo) Create(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Property)
	return p, args.Error(1)
}
func (m *mockPropertyRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]domain.Property)
	return p, args.Error(1)
}
func (m *mockPropertyRepo) List(ctx context.Context, f domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error) {
	args := m.Called(ctx, f, page)
	p, _ := args.Get(0).(*domain.Paginated[domain.Property])
	return p, args.Error(1)
}
func (m *mockPropertyRepo) Update(ctx context.Context, p *domain.Property) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPropertyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, s domain.PropertyStatus) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockPropertyRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockPropertyRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSavedRepo struct{ mock.Mock }

func (m *mockSavedRepo) Save(ctx context.Context, profileID, propertyID uuid.UUID, notes string) error {
	return m.Called(ctx, profileID, propertyID, notes).Error(0)
}
func (m *mockSavedRepo) Remove(ctx context.Context, profileID, propertyID uuid.UUID) error {
	return m.Called(ctx, profileID, propertyID).Error(0)
}
func (m *mockSavedRepo) FindSavedIDs(ctx context.Context, profileID uuid.UUID, page domain.Page) ([]uuid.UUID, int64, error) {
	args := m.Called(ctx, profileID, page)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Get(1).(int64), args.Error(2)
}
func (m *mockSavedRepo) RecordView(ctx context.Context, profileID, propertyID uuid.UUID) error {
	return m.Called(ctx, profileID, propertyID).Error(0)
}
func (m *mockSavedRepo) FindRecentIDs(ctx context.Context, profileID uuid.UUID, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, profileID, limit)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockLeaseRepo struct{ mock.Mock }

func (m *mockLeaseRepo) Create(ctx context.Context, l *domain.Lease) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockLeaseRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Lease)
	return l, args.Error(1)
}
func (m *mockLeaseRepo) FindByProfile(ctx context.Context, profileID uuid.UUID, f domain.LeaseFilter, page domain.Page) (*domain.Paginated[domain.Lease], error) {
	args := m.Called(ctx, profileID, f, page)
	l, _ := args.Get(0).(*domain.Paginated[domain.Lease])
	return l, args.Error(1)
}
func (m *mockLeaseRepo) Update(ctx context.Context, l *domain.Lease, prev domain.LeaseVersion) error {
	return m.Called(ctx, l, prev).Error(0)
}
func (m *mockLeaseRepo) HasActiveLease(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, propertyID)
	return args.Bool(0), args.Error(1)
}
func (m *mockLeaseRepo) HasOccupyingLease(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, propertyID)
	return args.Bool(0), args.Error(1)
}
func (m *mockLeaseRepo) FindRefreshable(ctx context.Context) ([]domain.Lease, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).([]domain.Lease)
	return l, args.Error(1)
}

type mockRoomRepo struct{ mock.Mock }

func (m *mockRoomRepo) Create(ctx context.Context, r *domain.Room) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*domain.Room)
	return r, args.Error(1)
}
func (m *mockRoomRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Room, error) {
	args := m.Called(ctx, propertyID)
	r, _ := args.Get(0).([]domain.Room)
	return r, args.Error(1)
}
func (m *mockRoomRepo) Update(ctx context.Context, r *domain.Room) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRoomRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockViewingRepo struct{ mock.Mock }

func (m *mockViewingRepo) Create(ctx context.Context, v *domain.ViewingRequest) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockViewingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ViewingRequest, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ViewingRequest)
	return v, args.Error(1)
}
func (m *mockViewingRepo) HasPending(ctx context.Context, propertyID, requesterID uuid.UUID) (bool, error) {
	args := m.Called(ctx, propertyID, requesterID)
	return args.Bool(0), args.Error(1)
}
func (m *mockViewingRepo) IsSlotTaken(ctx context.Context, propertyID uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, at)
	return args.Bool(0), args.Error(1)
}
func (m *mockViewingRepo) FindByRequester(ctx context.Context, profileID uuid.UUID, f domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	args := m.Called(ctx, profileID, f, page)
	v, _ := args.Get(0).(*domain.Paginated[domain.ViewingRequest])
	return v, args.Error(1)
}
func (m *mockViewingRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID, f domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	args := m.Called(ctx, propertyID, f, page)
	v, _ := args.Get(0).(*domain.Paginated[domain.ViewingRequest])
	return v, args.Error(1)
}
func (m *mockViewingRepo) Approve(ctx context.Context, v *domain.ViewingRequest) ([]domain.ViewingRequest, error) {
	args := m.Called(ctx, v)
	d, _ := args.Get(0).([]domain.ViewingRequest)
	return d, args.Error(1)
}
func (m *mockViewingRepo) UpdateStatus(ctx context.Context, v *domain.ViewingRequest, from domain.ViewingStatus) error {
	return m.Called(ctx, v, from).Error(0)
}
func (m *mockViewingRepo) CancelStale(ctx context.Context, now time.Time) ([]domain.ViewingRequest, error) {
	args := m.Called(ctx, now)
	d, _ := args.Get(0).([]domain.ViewingRequest)
	return d, args.Error(1)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationRepo) FindByRecipient(ctx context.Context, id uuid.UUID, unreadOnly bool, page domain.Page) (*domain.Paginated[domain.Notification], error) {
	args := m.Called(ctx, id, unreadOnly, page)
	n, _ := args.Get(0).(*domain.Paginated[domain.Notification])
	return n, args.Error(1)
}
func (m *mockNotificationRepo) CountUnread(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(*domain.Notification)
	return n, args.Error(1)
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockNotificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockBillingRepo struct{ mock.Mock }

func (m *mockBillingRepo) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockBillingRepo) FindPaymentBySession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	args := m.Called(ctx, sessionID)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}
func (m *mockBillingRepo) ConfirmPayment(ctx context.Context, sessionID string, paidAt time.Time) (*domain.Payment, bool, error) {
	args := m.Called(ctx, sessionID, paidAt)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Bool(1), args.Error(2)
}
func (m *mockBillingRepo) MarkPaymentExpired(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockBillingRepo) FindEntitlements(ctx context.Context, profileID uuid.UUID) (*domain.Entitlements, error) {
	args := m.Called(ctx, profileID)
	e, _ := args.Get(0).(*domain.Entitlements)
	return e, args.Error(1)
}

type mockPaymentProvider struct{ mock.Mock }

func (m *mockPaymentProvider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*domain.CheckoutSession)
	return s, args.Error(1)
}
func (m *mockPaymentProvider) GetCheckoutSession(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*domain.CheckoutSession)
	return s, args.Error(1)
}
func (m *mockPaymentProvider) ParseWebhook(payload []byte, signature string) (*domain.BillingEvent, error) {
	args := m.Called(payload, signature)
	e, _ := args.Get(0).(*domain.BillingEvent)
	return e, args.Error(1)
}

type mockIdempotency struct{ mock.Mock }

func (m *mockIdempotency) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}
func (m *mockIdempotency) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, e domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

type mockIdentityProvider struct{ mock.Mock }

func (m *mockIdentityProvider) Validate(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	i, _ := args.Get(0).(*domain.Identity)
	return i, args.Error(1)
}

type mockSessionCache struct{ mock.Mock }

func (m *mockSessionCache) Get(ctx context.Context, key string) (*domain.Identity, bool, error) {
	args := m.Called(ctx, key)
	i, _ := args.Get(0).(*domain.Identity)
	return i, args.Bool(1), args.Error(2)
}
func (m *mockSessionCache) Set(ctx context.Context, key string, identity *domain.Identity, ttl time.Duration) error {
	return m.Called(ctx, key, identity, ttl).Error(0)
}

type mockChatRepo struct{ mock.Mock }

func (m *mockChatRepo) CreateConversation(ctx context.Context, c *domain.ChatConversation) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockChatRepo) FindConversation(ctx context.Context, id uuid.UUID) (*domain.ChatConversation, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.ChatConversation)
	return c, args.Error(1)
}
func (m *mockChatRepo) FindConversations(ctx context.Context, profileID uuid.UUID) ([]domain.ChatConversation, error) {
	args := m.Called(ctx, profileID)
	c, _ := args.Get(0).([]domain.ChatConversation)
	return c, args.Error(1)
}
func (m *mockChatRepo) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockChatRepo) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockChatRepo) FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.ChatMessage, error) {
	args := m.Called(ctx, conversationID, limit)
	c, _ := args.Get(0).([]domain.ChatMessage)
	return c, args.Error(1)
}

type mockAssistant struct{ mock.Mock }

func (m *mockAssistant) Complete(ctx context.Context, history []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(key string) bool {
	return m.Called(key).Bool(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, recipientID uuid.UUID, n *domain.Notification) {
	m.Called(ctx, recipientID, n)
}

type mockMetrics struct{ mock.Mock }

func (m *mockMetrics) ViewingTransition(status domain.ViewingStatus) {
	m.Called(status)
}
