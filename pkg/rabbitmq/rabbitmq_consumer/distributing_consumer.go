package rabbitmq_consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homiio/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Пакет сам решает про ack/nack/retry.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// ErrPermanent - обработчик сообщает, что повтор не поможет (битое сообщение).
// Такие сообщения сразу уходят в финальную DLQ.
var ErrPermanent = errors.New("permanent message failure")

// DistributingConsumer обрабатывает каждое сообщение в своей горутине.
// Одновременно работает не больше PrefetchCount обработчиков.
type DistributingConsumer struct {
	baseConsumer *baseConsumer
	handler      MessageHandler
	slots        chan struct{}
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	workers := cfg.PrefetchCount
	if workers <= 0 {
		workers = 1
	}
	return &DistributingConsumer{
		baseConsumer: bc,
		handler:      handler,
		slots:        make(chan struct{}, workers),
	}, nil
}

// StartConsuming блокируется, пока не отменен ctx или не закрыто соединение.
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	bc := c.baseConsumer
	if bc.channel == nil || bc.connection == nil || bc.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := bc.channel.Consume(
		bc.actualQueueName,
		bc.config.ConsumerTag,
		false, // auto-ack
		bc.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from '%s': %w", bc.actualQueueName, err)
	}

	bc.Logger.Info("Waiting for messages", "queue", bc.actualQueueName)

	notifyClose := make(chan *amqp.Error, 1)
	bc.connection.NotifyClose(notifyClose)

	for {
		select {
		case <-ctx.Done():
			bc.Logger.Info("Context cancelled, stopping consumer", "queue", bc.actualQueueName)
			return nil
		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			bc.Logger.Error(amqpErr, "Connection closed for consumer", "queue", bc.actualQueueName)
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				bc.Logger.Info("Deliveries channel closed", "queue", bc.actualQueueName)
				return nil
			}

			select {
			case c.slots <- struct{}{}:
			case <-ctx.Done():
				// не взяли в работу - брокер передоставит
				_ = d.Nack(false, true)
				return nil
			}

			// обработчик доводит сообщение до конца даже при остановке
			handlerCtx := context.WithoutCancel(ctx)
			bc.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer bc.wg.Done()
				defer func() { <-c.slots }()
				c.process(handlerCtx, delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(ctx context.Context, d amqp.Delivery) {
	bc := c.baseConsumer

	err := c.handler(ctx, d)
	if err == nil {
		_ = d.Ack(false)
		bc.Logger.Debug("Message acked", "delivery_tag", d.DeliveryTag, "routing_key", d.RoutingKey)
		return
	}

	bc.Logger.Error(err, "Handler error", "delivery_tag", d.DeliveryTag, "routing_key", d.RoutingKey)

	if !bc.config.EnableRetryMechanism {
		_ = d.Nack(false, false)
		return
	}

	deaths := deathCount(d, bc.actualQueueName)
	if !errors.Is(err, ErrPermanent) && deaths < int64(bc.config.MaxRetries) {
		bc.Logger.Info("Retrying message", "delivery_tag", d.DeliveryTag, "death_count", deaths)
		_ = d.Nack(false, false)
		return
	}

	bc.Logger.Warn("Sending message to final DLQ", "delivery_tag", d.DeliveryTag, "death_count", deaths)
	pubErr := bc.finalDlxPublisher.Publish(context.Background(), bc.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if pubErr != nil {
		// не смогли положить в DLQ - пусть идет на еще один круг
		bc.Logger.Error(pubErr, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *DistributingConsumer) Close() error {
	return c.baseConsumer.Close()
}
