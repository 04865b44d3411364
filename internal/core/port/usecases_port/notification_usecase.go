package usecases_port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

type ListNotificationsUseCasePort interface {
	Execute(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page domain.Page) (*domain.NotificationList, error)
}

type MarkNotificationReadUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) error
}

type MarkAllNotificationsReadUseCasePort interface {
	Execute(ctx context.Context, actorID uuid.UUID) (int64, error)
}

type DeleteNotificationUseCasePort interface {
	Execute(ctx context.Context, actorID, id uuid.UUID) error
}

// HandleDomainEventUseCasePort - превращает доменное событие из брокера в уведомления.
type HandleDomainEventUseCasePort interface {
	Execute(ctx context.Context, eventType string, body []byte) error
}
