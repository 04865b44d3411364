package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationViewingRequest NotificationType = "viewing_request"
	NotificationViewingUpdate  NotificationType = "viewing_update"
	NotificationLeaseUpdate    NotificationType = "lease_update"
	NotificationPayment        NotificationType = "payment"
	NotificationMessage        NotificationType = "message"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID                 uuid.UUID              `json:"id"`
	RecipientProfileID uuid.UUID              `json:"recipient_profile_id"`
	Type               NotificationType       `json:"type"`
	Title              string                 `json:"title"`
	Message            string                 `json:"message"`
	Data               map[string]interface{} `json:"data,omitempty"`
	IsRead             bool                   `json:"is_read"`
	ReadAt             *time.Time             `json:"read_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

func NewNotification(recipient uuid.UUID, typ NotificationType, title, message string, data map[string]interface{}) *Notification {
	return &Notification{
		ID:                 uuid.New(),
		RecipientProfileID: recipient,
		Type:               typ,
		Title:              title,
		Message:            message,
		Data:               data,
		CreatedAt:          time.Now().UTC(),
	}
}

// NotificationList - страница уведомлений и число непрочитанных.
// Degraded выставляется, когда хранилище недоступно и список пуст вынужденно.
type NotificationList struct {
	Paginated[Notification]
	UnreadCount int64
	Degraded    bool
}
