package rabbitmq_adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homiio/internal/constants"
	"homiio/internal/contextkeys"
	"homiio/internal/contracts"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type publishMetrics interface {
	EventPublished(routingKey string, err error)
}

// EventPublisherAdapter публикует доменные события в homiio.events.
// Реализует port.EventPublisherPort.
type EventPublisherAdapter struct {
	producer amqpPublisher
	metrics  publishMetrics
	timeout  time.Duration
}

// NewEventPublisherAdapter - metrics может быть nil.
func NewEventPublisherAdapter(producer amqpPublisher, metrics publishMetrics) (*EventPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	return &EventPublisherAdapter{producer: producer, metrics: metrics, timeout: 10 * time.Second}, nil
}

func (a *EventPublisherAdapter) Publish(ctx context.Context, event domain.Event) error {
	err := a.publish(ctx, event)
	if a.metrics != nil {
		a.metrics.EventPublished(event.RoutingKey(), err)
	}
	return err
}

func (a *EventPublisherAdapter) publish(ctx context.Context, event domain.Event) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "EventPublisherAdapter",
		"event_type":  event.EventType(),
		"routing_key": event.RoutingKey(),
	})

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal domain event", err, nil)
		return fmt.Errorf("failed to marshal %s: %w", event.EventType(), err)
	}
	// событие, не прошедшее схему, не уходит в брокер
	if err := contracts.ValidateEvent(event.EventType(), domain.EventVersionV1, body); err != nil {
		adapterLogger.Error("Domain event does not match its contract", err, nil)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    event.EventType(),
			constants.HeaderEventVersion: domain.EventVersionV1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, event.RoutingKey(), msg); err != nil {
		adapterLogger.Error("Failed to publish domain event", err, nil)
		return err
	}

	adapterLogger.Debug("Domain event published", nil)
	return nil
}
