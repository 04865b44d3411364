package domain

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий. Совпадают с ключами схем в contracts.
const (
	EventViewingStatusChanged = "ViewingStatusChangedEvent"
	EventLeaseStatusChanged   = "LeaseStatusChangedEvent"
	EventPaymentSucceeded     = "PaymentSucceededEvent"

	EventVersionV1 = "1.0.0"
)

// Действия, которые попадают в ключ маршрутизации: viewing.<action>, lease.<action>.
const (
	ViewingActionRequested = "requested"
	ViewingActionApproved  = "approved"
	ViewingActionDeclined  = "declined"
	ViewingActionCancelled = "cancelled"
	ViewingActionExpired   = "expired"

	LeaseActionSubmitted  = "submitted"
	LeaseActionSigned     = "signed"
	LeaseActionTerminated = "terminated"
	LeaseActionActivated  = "activated"
	LeaseActionExpired    = "expired"
)

// Event - доменное событие, готовое к публикации.
type Event interface {
	EventType() string
	RoutingKey() string
}

type ViewingStatusChanged struct {
	EventID            uuid.UUID     `json:"event_id"`
	Action             string        `json:"action"`
	ViewingID          uuid.UUID     `json:"viewing_id"`
	PropertyID         uuid.UUID     `json:"property_id"`
	PropertyTitle      string        `json:"property_title"`
	RequesterProfileID uuid.UUID     `json:"requester_profile_id"`
	OwnerProfileID     uuid.UUID     `json:"owner_profile_id"`
	Status             ViewingStatus `json:"status"`
	ScheduledAt        time.Time     `json:"scheduled_at"`
	Note               string        `json:"note,omitempty"`
	OccurredAt         time.Time     `json:"occurred_at"`
}

func (e ViewingStatusChanged) EventType() string  { return EventViewingStatusChanged }
func (e ViewingStatusChanged) RoutingKey() string { return "viewing." + e.Action }

// NewViewingEvent собирает событие по текущему состоянию заявки.
func NewViewingEvent(action string, v *ViewingRequest, propertyTitle string) ViewingStatusChanged {
	return ViewingStatusChanged{
		EventID:            uuid.New(),
		Action:             action,
		ViewingID:          v.ID,
		PropertyID:         v.PropertyID,
		PropertyTitle:      propertyTitle,
		RequesterProfileID: v.RequesterProfileID,
		OwnerProfileID:     v.OwnerProfileID,
		Status:             v.Status,
		ScheduledAt:        v.ScheduledAt,
		Note:               v.DecisionNote,
		OccurredAt:         time.Now().UTC(),
	}
}

type LeaseStatusChanged struct {
	EventID           uuid.UUID   `json:"event_id"`
	Action            string      `json:"action"`
	LeaseID           uuid.UUID   `json:"lease_id"`
	PropertyID        uuid.UUID   `json:"property_id"`
	LandlordProfileID uuid.UUID   `json:"landlord_profile_id"`
	TenantProfileID   uuid.UUID   `json:"tenant_profile_id"`
	ActorProfileID    *uuid.UUID  `json:"actor_profile_id,omitempty"`
	Status            LeaseStatus `json:"status"`
	Reason            string      `json:"reason,omitempty"`
	OccurredAt        time.Time   `json:"occurred_at"`
}

func (e LeaseStatusChanged) EventType() string  { return EventLeaseStatusChanged }
func (e LeaseStatusChanged) RoutingKey() string { return "lease." + e.Action }

func NewLeaseEvent(action string, l *Lease, actor *uuid.UUID) LeaseStatusChanged {
	return LeaseStatusChanged{
		EventID:           uuid.New(),
		Action:            action,
		LeaseID:           l.ID,
		PropertyID:        l.PropertyID,
		LandlordProfileID: l.LandlordProfileID,
		TenantProfileID:   l.TenantProfileID,
		ActorProfileID:    actor,
		Status:            l.Status,
		Reason:            l.TerminationReason,
		OccurredAt:        time.Now().UTC(),
	}
}

type PaymentSucceeded struct {
	EventID    uuid.UUID      `json:"event_id"`
	PaymentID  uuid.UUID      `json:"payment_id"`
	ProfileID  uuid.UUID      `json:"profile_id"`
	Product    BillingProduct `json:"product"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (e PaymentSucceeded) EventType() string  { return EventPaymentSucceeded }
func (e PaymentSucceeded) RoutingKey() string { return "billing.payment_succeeded" }
