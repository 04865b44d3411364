package rabbitmq_adapter

import (
	"homiio/internal/constants"
	"homiio/pkg/rabbitmq/rabbitmq_common"
	"homiio/pkg/rabbitmq/rabbitmq_consumer"
	"homiio/pkg/rabbitmq/rabbitmq_producer"
)

// EventsPublisherConfig - издатель в обменник доменных событий.
func EventsPublisherConfig(url string) rabbitmq_producer.PublisherConfig {
	return rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: url},
		ExchangeName:             constants.EventsExchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
	}
}

// NotificationsConsumerConfig - очередь уведомлений, привязанная ко всем событиям,
// с ретраями через wait-очередь и финальной DLQ.
func NotificationsConsumerConfig(url string) rabbitmq_consumer.ConsumerConfig {
	return rabbitmq_consumer.ConsumerConfig{
		Config: rabbitmq_common.Config{URL: url},

		QueueName:    constants.QueueNotifications,
		DeclareQueue: true,
		DurableQueue: true,

		ExchangeNameForBind:    constants.EventsExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.EventsExchangeType,
		DurableExchangeForBind: true,
		RoutingKeysForBind:     []string{constants.RoutingKeyAllEvents},

		PrefetchCount: 8,
		ConsumerTag:   constants.NotificationsConsumerTag,

		EnableRetryMechanism: true,
		RetryExchange:        constants.RetryExchange,
		RetryQueue:           constants.WaitQueue,
		RetryTTL:             constants.RetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchange,
		FinalDLQ:             constants.FinalDLQ,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
		MaxRetries:           constants.MaxRetries,
	}
}
