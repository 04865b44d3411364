package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

const (
	eventBufferSize  = 256
	clientBufferSize = 64

	// SSEEventNotification - имя SSE-события для нового уведомления.
	SSEEventNotification = "notification"
)

// ClientChannel - поток готовых SSE-сообщений для одного подключения.
type ClientChannel chan []byte

type eventWithContext struct {
	ctx          context.Context
	recipientID  uuid.UUID
	notification *domain.Notification
}

// SSENotifier реализует port.NotifierPort: доставляет уведомления
// открытым SSE-подключениям профиля (несколько вкладок и устройств).
type SSENotifier struct {
	clients map[uuid.UUID][]ClientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	closeOnce sync.Once

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[uuid.UUID][]ClientChannel),
		eventChan: make(chan eventWithContext, eventBufferSize),
		done:      make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

func (n *SSENotifier) dispatcher() {
	n.logger.Debug("Notifier dispatcher started", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped", nil)
			return
		case ev := <-n.eventChan:
			n.dispatch(ev)
		}
	}
}

func (n *SSENotifier) dispatch(ev eventWithContext) {
	eventLogger := contextkeys.LoggerFromContext(ev.ctx).WithFields(port.Fields{
		"component":       "SSENotifier.dispatcher",
		"recipient_id":    ev.recipientID.String(),
		"notification_id": ev.notification.ID.String(),
	})

	msg, err := FormatSSE(SSEEventNotification, ev.notification)
	if err != nil {
		eventLogger.Error("Failed to marshal notification", err, nil)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels := n.clients[ev.recipientID]
	if len(channels) == 0 {
		eventLogger.Debug("No active clients for profile, event dropped", nil)
		return
	}
	for _, ch := range channels {
		// медленный клиент не должен тормозить остальных
		select {
		case ch <- msg:
		default:
			eventLogger.Warn("Client channel is full, skipping", nil)
		}
	}
}

// Notify кладет уведомление в очередь диспетчера. Не блокируется:
// при переполнении уведомление останется только в БД.
func (n *SSENotifier) Notify(ctx context.Context, recipientID uuid.UUID, notification *domain.Notification) {
	if notification == nil {
		return
	}
	select {
	case n.eventChan <- eventWithContext{ctx: ctx, recipientID: recipientID, notification: notification}:
	case <-n.done:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("Notifier queue is full, live push skipped", port.Fields{
			"recipient_id": recipientID.String(),
		})
	}
}

// AddClient регистрирует новое SSE-подключение профиля.
func (n *SSENotifier) AddClient(profileID uuid.UUID) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, clientBufferSize)
	n.clients[profileID] = append(n.clients[profileID], ch)

	n.logger.Info("Client connected", port.Fields{
		"profile_id":        profileID.String(),
		"connections_count": len(n.clients[profileID]),
	})
	return ch
}

// RemoveClient убирает подключение, когда клиент закрыл соединение.
func (n *SSENotifier) RemoveClient(profileID uuid.UUID, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels := n.clients[profileID]
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, profileID)
	} else {
		n.clients[profileID] = remaining
	}
	n.logger.Info("Client disconnected", port.Fields{
		"profile_id":            profileID.String(),
		"remaining_connections": len(remaining),
	})
}

// ConnectionsCount - число открытых подключений профиля.
func (n *SSENotifier) ConnectionsCount(profileID uuid.UUID) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[profileID])
}

// Close останавливает диспетчер. Каналы клиентов закрывают их хендлеры.
func (n *SSENotifier) Close() {
	n.closeOnce.Do(func() { close(n.done) })
}

// FormatSSE собирает сообщение в формате text/event-stream.
func FormatSSE(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)), nil
}
