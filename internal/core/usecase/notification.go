package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

type ListNotificationsUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewListNotificationsUseCase(repo port.NotificationRepositoryPort) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{repo: repo}
}

// Execute при недоступном хранилище отдает пустой список с Degraded=true.
func (uc *ListNotificationsUseCase) Execute(ctx context.Context, profileID uuid.UUID, unreadOnly bool, page domain.Page) (*domain.NotificationList, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListNotifications", "profile_id": profileID})

	degraded := func(err error) *domain.NotificationList {
		ucLogger.Error("Notification store unavailable, returning degraded list", err, nil)
		return &domain.NotificationList{
			Paginated: domain.Paginated[domain.Notification]{
				Items:   []domain.Notification{},
				Page:    page.Number(),
				PerPage: page.Limit,
			},
			Degraded: true,
		}
	}

	items, err := uc.repo.FindByRecipient(ctx, profileID, unreadOnly, page)
	if err != nil {
		return degraded(err), nil
	}
	unread, err := uc.repo.CountUnread(ctx, profileID)
	if err != nil {
		return degraded(err), nil
	}

	return &domain.NotificationList{Paginated: *items, UnreadCount: unread}, nil
}

type MarkNotificationReadUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewMarkNotificationReadUseCase(repo port.NotificationRepositoryPort) *MarkNotificationReadUseCase {
	return &MarkNotificationReadUseCase{repo: repo}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) error {
	n, err := loadOwnNotification(ctx, uc.repo, actorID, id)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return uc.repo.MarkRead(ctx, id)
}

type MarkAllNotificationsReadUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewMarkAllNotificationsReadUseCase(repo port.NotificationRepositoryPort) *MarkAllNotificationsReadUseCase {
	return &MarkAllNotificationsReadUseCase{repo: repo}
}

func (uc *MarkAllNotificationsReadUseCase) Execute(ctx context.Context, actorID uuid.UUID) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "MarkAllNotificationsRead", "profile_id": actorID})

	updated, err := uc.repo.MarkAllRead(ctx, actorID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return 0, err
	}
	ucLogger.Info("Notifications marked as read", port.Fields{"updated": updated})
	return updated, nil
}

type DeleteNotificationUseCase struct {
	repo port.NotificationRepositoryPort
}

func NewDeleteNotificationUseCase(repo port.NotificationRepositoryPort) *DeleteNotificationUseCase {
	return &DeleteNotificationUseCase{repo: repo}
}

func (uc *DeleteNotificationUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := loadOwnNotification(ctx, uc.repo, actorID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func loadOwnNotification(ctx context.Context, repo port.NotificationRepositoryPort, actorID, id uuid.UUID) (*domain.Notification, error) {
	n, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.RecipientProfileID != actorID {
		return nil, domain.NewForbidden("notification belongs to another profile")
	}
	return n, nil
}

// HandleDomainEventUseCase создает уведомления по событиям из брокера
// и отправляет их подключенным клиентам.
type HandleDomainEventUseCase struct {
	repo     port.NotificationRepositoryPort
	notifier port.NotifierPort
}

func NewHandleDomainEventUseCase(repo port.NotificationRepositoryPort, notifier port.NotifierPort) *HandleDomainEventUseCase {
	return &HandleDomainEventUseCase{repo: repo, notifier: notifier}
}

func (uc *HandleDomainEventUseCase) Execute(ctx context.Context, eventType string, body []byte) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "HandleDomainEvent", "event_type": eventType})
	ucLogger.Info("Use case started", nil)

	notifications, err := notificationsFromEvent(eventType, body)
	if err != nil {
		ucLogger.Error("Failed to build notifications from event", err, nil)
		return err
	}

	for _, n := range notifications {
		if err := uc.repo.Create(ctx, n); err != nil {
			ucLogger.Error("Failed to save notification", err, port.Fields{"recipient_id": n.RecipientProfileID})
			return err
		}
		if uc.notifier != nil {
			uc.notifier.Notify(ctx, n.RecipientProfileID, n)
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"created": len(notifications)})
	return nil
}

func notificationsFromEvent(eventType string, body []byte) ([]*domain.Notification, error) {
	switch eventType {
	case domain.EventViewingStatusChanged:
		var e domain.ViewingStatusChanged
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal viewing event: %w", err)
		}
		return viewingNotifications(e), nil
	case domain.EventLeaseStatusChanged:
		var e domain.LeaseStatusChanged
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lease event: %w", err)
		}
		return leaseNotifications(e), nil
	case domain.EventPaymentSucceeded:
		var e domain.PaymentSucceeded
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment event: %w", err)
		}
		return []*domain.Notification{domain.NewNotification(e.ProfileID, domain.NotificationPayment,
			"Payment received",
			fmt.Sprintf("Your %s purchase is now active.", productName(e.Product)),
			map[string]interface{}{"payment_id": e.PaymentID.String(), "product": string(e.Product)},
		)}, nil
	default:
		return nil, fmt.Errorf("unsupported event type '%s'", eventType)
	}
}

func viewingNotifications(e domain.ViewingStatusChanged) []*domain.Notification {
	data := map[string]interface{}{
		"viewing_id":   e.ViewingID.String(),
		"property_id":  e.PropertyID.String(),
		"scheduled_at": e.ScheduledAt,
		"status":       string(e.Status),
	}
	when := e.ScheduledAt.UTC().Format("Jan 2, 15:04 UTC")
	title := e.PropertyTitle
	if title == "" {
		title = "your property"
	}

	switch e.Action {
	case domain.ViewingActionRequested:
		return []*domain.Notification{domain.NewNotification(e.OwnerProfileID, domain.NotificationViewingRequest,
			"New viewing request", fmt.Sprintf("Someone wants to view %s on %s.", title, when), data)}
	case domain.ViewingActionApproved:
		return []*domain.Notification{domain.NewNotification(e.RequesterProfileID, domain.NotificationViewingUpdate,
			"Viewing approved", fmt.Sprintf("Your viewing of %s on %s was approved.", title, when), data)}
	case domain.ViewingActionDeclined:
		return []*domain.Notification{domain.NewNotification(e.RequesterProfileID, domain.NotificationViewingUpdate,
			"Viewing declined", fmt.Sprintf("Your viewing of %s on %s was declined.", title, when), data)}
	case domain.ViewingActionCancelled:
		return []*domain.Notification{domain.NewNotification(e.OwnerProfileID, domain.NotificationViewingUpdate,
			"Viewing cancelled", fmt.Sprintf("The viewing of %s on %s was cancelled.", title, when), data)}
	case domain.ViewingActionExpired:
		return []*domain.Notification{domain.NewNotification(e.RequesterProfileID, domain.NotificationViewingUpdate,
			"Viewing request expired", fmt.Sprintf("Your request to view %s on %s expired without an answer.", title, when), data)}
	}
	return nil
}

func leaseNotifications(e domain.LeaseStatusChanged) []*domain.Notification {
	data := map[string]interface{}{
		"lease_id":    e.LeaseID.String(),
		"property_id": e.PropertyID.String(),
		"status":      string(e.Status),
	}
	both := func(title, msg string) []*domain.Notification {
		return []*domain.Notification{
			domain.NewNotification(e.LandlordProfileID, domain.NotificationLeaseUpdate, title, msg, data),
			domain.NewNotification(e.TenantProfileID, domain.NotificationLeaseUpdate, title, msg, data),
		}
	}
	// вторая сторона относительно того, кто выполнил действие
	counterpart := e.TenantProfileID
	if e.ActorProfileID != nil && *e.ActorProfileID == e.TenantProfileID {
		counterpart = e.LandlordProfileID
	}

	switch e.Action {
	case domain.LeaseActionSubmitted:
		return []*domain.Notification{domain.NewNotification(e.TenantProfileID, domain.NotificationLeaseUpdate,
			"Lease ready to sign", "A lease has been sent to you for signature.", data)}
	case domain.LeaseActionSigned:
		if e.Status == domain.LeaseActive || e.Status == domain.LeaseUpcoming {
			return both("Lease signed", "Both parties have signed the lease.")
		}
		return []*domain.Notification{domain.NewNotification(counterpart, domain.NotificationLeaseUpdate,
			"Lease signed", "The other party has signed the lease. Your signature is pending.", data)}
	case domain.LeaseActionTerminated:
		msg := "The lease has been terminated."
		if e.Reason != "" {
			msg = fmt.Sprintf("The lease has been terminated: %s", e.Reason)
		}
		return []*domain.Notification{domain.NewNotification(counterpart, domain.NotificationLeaseUpdate, "Lease terminated", msg, data)}
	case domain.LeaseActionActivated:
		return both("Lease is now active", "The lease start date has arrived.")
	case domain.LeaseActionExpired:
		return both("Lease expired", "The lease end date has passed.")
	}
	return nil
}

func productName(p domain.BillingProduct) string {
	switch p {
	case domain.ProductPlus:
		return "Homiio Plus"
	case domain.ProductFileCredits:
		return "file credits"
	case domain.ProductFounder:
		return "Founder supporter"
	}
	return string(p)
}
