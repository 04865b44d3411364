package constants

// Основной обменник доменных событий
const (
	EventsExchange     = "homiio.events"
	EventsExchangeType = "topic"
)

// Очередь уведомлений получает все события
const (
	QueueNotifications       = "homiio.notifications"
	RoutingKeyAllEvents      = "#"
	NotificationsConsumerTag = "homiio-notifications"
)

// Ретраи: отвергнутое сообщение ждет RetryTTL в wait-очереди и возвращается в EventsExchange
const (
	RetryExchange = "homiio.notifications.retry"
	WaitQueue     = "homiio.notifications.wait_10s"
	RetryTTL      = 10000 // 10 секунд
	MaxRetries    = 3
)

const (
	FinalDLXExchange   = "homiio.notifications.final_dlx"
	FinalDLQ           = "homiio.notifications.final_dlq"
	FinalDLQRoutingKey = "homiio.notifications.dlq.key"
)

// Заголовки сообщений
const (
	HeaderEventType    = "event_type"
	HeaderEventVersion = "event_version"
	HeaderTraceID      = "x-trace-id"
)
