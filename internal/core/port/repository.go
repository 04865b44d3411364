package port

import (
	"context"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

// ProfileRepositoryPort - контракт для хранилища профилей.
type ProfileRepositoryPort interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	FindByUser(ctx context.Context, oxyUserID string) ([]domain.Profile, error)
	FindActiveByUser(ctx context.Context, oxyUserID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// SetActive делает профиль активным и снимает флаг с остальных профилей пользователя.
	SetActive(ctx context.Context, oxyUserID string, profileID uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// SavedPropertyRepositoryPort - избранное и недавно просмотренные объекты профиля.
type SavedPropertyRepositoryPort interface {
	Save(ctx context.Context, profileID, propertyID uuid.UUID, notes string) error
	Remove(ctx context.Context, profileID, propertyID uuid.UUID) error
	FindSavedIDs(ctx context.Context, profileID uuid.UUID, page domain.Page) ([]uuid.UUID, int64, error)
	RecordView(ctx context.Context, profileID, propertyID uuid.UUID) error
	FindRecentIDs(ctx context.Context, profileID uuid.UUID, limit int) ([]uuid.UUID, error)
}

type PropertyRepositoryPort interface {
	Create(ctx context.Context, property *domain.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	// FindByIDs возвращает объекты в порядке ids, удаленные пропускаются.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)
	List(ctx context.Context, filter domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error)
	Update(ctx context.Context, property *domain.Property) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type RoomRepositoryPort interface {
	Create(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type LeaseRepositoryPort interface {
	Create(ctx context.Context, lease *domain.Lease) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Lease, error)
	FindByProfile(ctx context.Context, profileID uuid.UUID, filter domain.LeaseFilter, page domain.Page) (*domain.Paginated[domain.Lease], error)
	// Update возвращает CONFLICT, если договор изменился после чтения prev.
	Update(ctx context.Context, lease *domain.Lease, prev domain.LeaseVersion) error
	// HasActiveLease учитывает active и upcoming: такой объект нельзя удалить.
	HasActiveLease(ctx context.Context, propertyID uuid.UUID) (bool, error)
	// HasOccupyingLease - есть ли договор, который действует прямо сейчас.
	HasOccupyingLease(ctx context.Context, propertyID uuid.UUID) (bool, error)
	// FindRefreshable возвращает договоры в статусах upcoming и active.
	FindRefreshable(ctx context.Context) ([]domain.Lease, error)
}

type ViewingRepositoryPort interface {
	// Create сохраняет новую заявку. Вторая pending-заявка того же профиля
	// на тот же объект отклоняется с CONFLICT.
	Create(ctx context.Context, viewing *domain.ViewingRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ViewingRequest, error)
	HasPending(ctx context.Context, propertyID, requesterID uuid.UUID) (bool, error)
	IsSlotTaken(ctx context.Context, propertyID uuid.UUID, scheduledAt time.Time) (bool, error)
	FindByRequester(ctx context.Context, profileID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error)
	// Approve одобряет заявку в транзакции с блокировкой слота и отклоняет
	// остальные pending-заявки на тот же слот. Возвращает отклоненные.
	Approve(ctx context.Context, viewing *domain.ViewingRequest) ([]domain.ViewingRequest, error)
	// UpdateStatus сохраняет переход, если в БД все еще статус from.
	UpdateStatus(ctx context.Context, viewing *domain.ViewingRequest, from domain.ViewingStatus) error
	// CancelStale отменяет pending-заявки, время которых уже прошло.
	CancelStale(ctx context.Context, now time.Time) ([]domain.ViewingRequest, error)
}

type NotificationRepositoryPort interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page domain.Page) (*domain.Paginated[domain.Notification], error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BillingRepositoryPort interface {
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	FindPaymentBySession(ctx context.Context, sessionID string) (*domain.Payment, error)
	// ConfirmPayment переводит платеж pending -> paid и выдает права в одной
	// транзакции. applied=false, если платеж уже был подтвержден.
	ConfirmPayment(ctx context.Context, sessionID string, paidAt time.Time) (payment *domain.Payment, applied bool, err error)
	MarkPaymentExpired(ctx context.Context, sessionID string) error
	FindEntitlements(ctx context.Context, profileID uuid.UUID) (*domain.Entitlements, error)
}

type ChatRepositoryPort interface {
	CreateConversation(ctx context.Context, c *domain.ChatConversation) error
	FindConversation(ctx context.Context, id uuid.UUID) (*domain.ChatConversation, error)
	FindConversations(ctx context.Context, profileID uuid.UUID) ([]domain.ChatConversation, error)
	DeleteConversation(ctx context.Context, id uuid.UUID) error
	// AddMessage сохраняет сообщение и обновляет updated_at диалога.
	AddMessage(ctx context.Context, m *domain.ChatMessage) error
	// FindMessages возвращает последние limit сообщений в хронологическом порядке.
	// limit <= 0 означает все.
	FindMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.ChatMessage, error)
}
