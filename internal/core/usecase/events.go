package usecase

import (
	"context"

	"homiio/internal/core/domain"
	"homiio/internal/core/port"
)

// publishEvent отправляет событие в брокер. Ошибка публикации не отменяет
// уже сохраненное изменение, поэтому только логируется.
func publishEvent(ctx context.Context, publisher port.EventPublisherPort, event domain.Event, logger port.LoggerPort) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish domain event", err, port.Fields{
			"event_type":  event.EventType(),
			"routing_key": event.RoutingKey(),
		})
		return
	}
	logger.Debug("Domain event published", port.Fields{"routing_key": event.RoutingKey()})
}
