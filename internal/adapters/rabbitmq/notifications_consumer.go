package rabbitmq_adapter

import (
	"context"
	"fmt"

	logger_adapter "homiio/internal/adapters/logger"
	"homiio/internal/constants"
	"homiio/internal/contextkeys"
	"homiio/internal/contracts"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"
	"homiio/pkg/rabbitmq/rabbitmq_common"
	"homiio/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type consumeMetrics interface {
	EventConsumed(eventType string, err error)
}

// NotificationsConsumerAdapter превращает события из брокера в уведомления.
type NotificationsConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.HandleDomainEventUseCasePort
	logger   port.LoggerPort
	metrics  consumeMetrics
}

func NewNotificationsConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	uc usecases_port.HandleDomainEventUseCasePort,
	logger port.LoggerPort,
	metrics consumeMetrics,
	connManager *rabbitmq_common.ConnectionManager,
) (*NotificationsConsumerAdapter, error) {
	adapter := &NotificationsConsumerAdapter{useCase: uc, logger: logger, metrics: metrics}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_distributing_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = logger_adapter.NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(cfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, err
	}
	adapter.consumer = consumer
	return adapter, nil
}

func headerString(h amqp.Table, key string) string {
	v, _ := h[key].(string)
	return v
}

func (a *NotificationsConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID := headerString(d.Headers, constants.HeaderTraceID)
	if traceID == "" {
		traceID = uuid.New().String()
	}
	eventType := headerString(d.Headers, constants.HeaderEventType)
	eventVersion := headerString(d.Headers, constants.HeaderEventVersion)

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
		"routing_key":  d.RoutingKey,
		"event_type":   eventType,
	})
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	err := a.handle(ctx, eventType, eventVersion, d.Body, msgLogger)
	if a.metrics != nil {
		a.metrics.EventConsumed(eventType, err)
	}
	return err
}

func (a *NotificationsConsumerAdapter) handle(ctx context.Context, eventType, eventVersion string, body []byte, msgLogger port.LoggerPort) error {
	// Битые сообщения повторять бесполезно, сразу в DLQ.
	if err := contracts.ValidateEvent(eventType, eventVersion, body); err != nil {
		msgLogger.Error("Event failed contract validation, sending to DLQ.", err, nil)
		return fmt.Errorf("%w: %v", rabbitmq_consumer.ErrPermanent, err)
	}

	msgLogger.Info("Processing domain event.", nil)
	if err := a.useCase.Execute(ctx, eventType, body); err != nil {
		msgLogger.Error("Failed to handle domain event, message will be retried.", err, nil)
		return err
	}

	msgLogger.Info("Domain event handled.", nil)
	return nil
}

// Start блокируется до отмены ctx.
func (a *NotificationsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *NotificationsConsumerAdapter) Close() error { return a.consumer.Close() }
