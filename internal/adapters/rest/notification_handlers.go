package rest

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"homiio/internal/adapters/notifier"
	"homiio/internal/contextkeys"
	"homiio/internal/core/port"
	"homiio/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

const sseKeepAliveInterval = 15 * time.Second

// NotificationStream - источник SSE-подписок, реализуется notifier.SSENotifier.
type NotificationStream interface {
	AddClient(profileID uuid.UUID) notifier.ClientChannel
	RemoveClient(profileID uuid.UUID, ch notifier.ClientChannel)
}

type NotificationHandler struct {
	listUC        usecases_port.ListNotificationsUseCasePort
	markReadUC    usecases_port.MarkNotificationReadUseCasePort
	markAllReadUC usecases_port.MarkAllNotificationsReadUseCasePort
	deleteUC      usecases_port.DeleteNotificationUseCasePort
	stream        NotificationStream

	// closing закрывается при остановке сервера: Shutdown не отменяет контексты запросов
	closing   chan struct{}
	closeOnce sync.Once
}

func NewNotificationHandler(
	listUC usecases_port.ListNotificationsUseCasePort,
	markReadUC usecases_port.MarkNotificationReadUseCasePort,
	markAllReadUC usecases_port.MarkAllNotificationsReadUseCasePort,
	deleteUC usecases_port.DeleteNotificationUseCasePort,
	stream NotificationStream,
) *NotificationHandler {
	return &NotificationHandler{
		listUC:        listUC,
		markReadUC:    markReadUC,
		markAllReadUC: markAllReadUC,
		deleteUC:      deleteUC,
		stream:        stream,
		closing:       make(chan struct{}),
	}
}

// ListNotifications обрабатывает GET /api/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	q := newQueryParser(r)
	unreadOnly := false
	if v := q.Bool("unread"); v != nil {
		unreadOnly = *v
	}
	page := q.Page()
	if err := q.Err(); err != nil {
		WriteError(w, r, err)
		return
	}

	list, err := h.listUC.Execute(r.Context(), profile.ID, unreadOnly, page)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, NotificationListResponse{
		PaginatedResponse: toPaginated(&list.Paginated, identityNotification),
		UnreadCount:       list.UnreadCount,
		Degraded:          list.Degraded,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "notificationID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.markReadUC.Execute(r.Context(), profile.ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	updated, err := h.markAllReadUC.Execute(r.Context(), profile.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	id, err := uuidParam(r, "notificationID")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), profile.ID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	RespondWithMessage(w, http.StatusOK, "Notification deleted")
}

// Subscribe - обработчик для GET /api/notifications/stream
// CloseStreams завершает все открытые SSE-подключения.
func (h *NotificationHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	profile, _, err := currentProfile(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "Subscribe",
		"profile_id": profile.ID.String(),
	})
	handlerLogger.Info("New client subscribing to SSE events", nil)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientChan := h.stream.AddClient(profile.ID)
	defer h.stream.RemoveClient(profile.ID, clientChan)

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flush()

	ticker := time.NewTicker(sseKeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := w.Write(data); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flush()
			handlerLogger.Debug("Sent SSE event to client", nil)

		case <-h.closing:
			handlerLogger.Info("Server is shutting down, closing SSE connection", nil)
			return

		case <-ticker.C:
			// строки с двоеточием - комментарии SSE, клиент их игнорирует
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flush()

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected.", nil)
			return
		}
	}
}
