package port

import (
	"context"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
)

// GeocoderPort - преобразование адреса в координаты.
type GeocoderPort interface {
	Geocode(ctx context.Context, address string) (*domain.Location, error)
}

// AssistantPort - модель, которая отвечает за Sindi.
type AssistantPort interface {
	Complete(ctx context.Context, history []domain.ChatMessage) (string, error)
}

// EventPublisherPort - публикация доменных событий в брокер.
type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NotifierPort - доставка уведомлений подключенным клиентам в реальном времени.
type NotifierPort interface {
	Notify(ctx context.Context, recipientID uuid.UUID, notification *domain.Notification)
}

// RateLimiterPort - ограничение частоты по ключу.
type RateLimiterPort interface {
	Allow(key string) bool
}

// MetricsPort - бизнес-метрики, которые пишут use cases.
type MetricsPort interface {
	ViewingTransition(status domain.ViewingStatus)
}
