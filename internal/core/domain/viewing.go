package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ViewingStatus string

const (
	ViewingPending   ViewingStatus = "pending"
	ViewingApproved  ViewingStatus = "approved"
	ViewingDeclined  ViewingStatus = "declined"
	ViewingCancelled ViewingStatus = "cancelled"
)

func (s ViewingStatus) Valid() bool {
	switch s {
	case ViewingPending, ViewingApproved, ViewingDeclined, ViewingCancelled:
		return true
	}
	return false
}

// ViewingSlot - длительность слота просмотра.
const ViewingSlot = 30 * time.Minute

// viewingTransitions - разрешенные переходы статусов.
var viewingTransitions = map[ViewingStatus][]ViewingStatus{
	ViewingPending:  {ViewingApproved, ViewingDeclined, ViewingCancelled},
	ViewingApproved: {ViewingCancelled},
}

// CanTransition проверяет, разрешен ли переход from -> to.
func CanTransition(from, to ViewingStatus) bool {
	for _, s := range viewingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type ViewingRequest struct {
	ID                 uuid.UUID
	PropertyID         uuid.UUID
	RequesterProfileID uuid.UUID
	OwnerProfileID     uuid.UUID
	ScheduledAt        time.Time
	Message            string
	Status             ViewingStatus
	DecidedAt          *time.Time
	DecisionNote       string
	CancelledBy        *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SlotAligned - время начинается ровно на границе 30-минутного слота.
func SlotAligned(t time.Time) bool {
	t = t.UTC()
	return t.Equal(t.Truncate(ViewingSlot))
}

// ValidateSchedule проверяет время просмотра.
func ValidateSchedule(scheduledAt, now time.Time) error {
	errs := ValidationErrors{}
	if scheduledAt.IsZero() {
		errs.Add("scheduled_at", "is required")
		return errs.Err()
	}
	if !scheduledAt.After(now) {
		errs.Add("scheduled_at", "must be in the future")
	}
	if !SlotAligned(scheduledAt) {
		errs.Add("scheduled_at", "must be aligned to a 30-minute slot")
	}
	return errs.Err()
}

// NewViewingRequest создает заявку. Владелец не может записаться к себе.
func NewViewingRequest(property *Property, requesterID uuid.UUID, scheduledAt time.Time, message string, now time.Time) (*ViewingRequest, error) {
	if property.OwnedBy(requesterID) {
		return nil, NewForbidden("owners cannot request a viewing of their own property")
	}
	if err := ValidateSchedule(scheduledAt, now); err != nil {
		return nil, err
	}
	if len(message) > 1000 {
		return nil, NewValidation("validation failed", map[string]string{"message": "must be at most 1000 characters"})
	}
	return &ViewingRequest{
		ID:                 uuid.New(),
		PropertyID:         property.ID,
		RequesterProfileID: requesterID,
		OwnerProfileID:     property.OwnerProfileID,
		ScheduledAt:        scheduledAt.UTC(),
		Message:            strings.TrimSpace(message),
		Status:             ViewingPending,
		CreatedAt:          now.UTC(),
		UpdatedAt:          now.UTC(),
	}, nil
}

// CanView - заявку видят только заявитель и владелец.
func (v *ViewingRequest) CanView(profileID uuid.UUID) bool {
	return v.RequesterProfileID == profileID || v.OwnerProfileID == profileID
}

func (v *ViewingRequest) transition(to ViewingStatus, now time.Time) error {
	if !CanTransition(v.Status, to) {
		return NewInvalidStatus(string(v.Status), string(to))
	}
	v.Status = to
	v.UpdatedAt = now.UTC()
	return nil
}

// Approve - только владелец, только из pending.
func (v *ViewingRequest) Approve(actorID uuid.UUID, note string, now time.Time) error {
	if v.OwnerProfileID != actorID {
		return NewForbidden("only the property owner can approve viewing requests")
	}
	if err := v.transition(ViewingApproved, now); err != nil {
		return err
	}
	t := now.UTC()
	v.DecidedAt = &t
	v.DecisionNote = note
	return nil
}

// Decline - только владелец, только из pending.
func (v *ViewingRequest) Decline(actorID uuid.UUID, note string, now time.Time) error {
	if v.OwnerProfileID != actorID {
		return NewForbidden("only the property owner can decline viewing requests")
	}
	if err := v.transition(ViewingDeclined, now); err != nil {
		return err
	}
	t := now.UTC()
	v.DecidedAt = &t
	v.DecisionNote = note
	return nil
}

// Cancel - заявитель отменяет pending или approved заявку.
func (v *ViewingRequest) Cancel(actorID uuid.UUID, now time.Time) error {
	if v.RequesterProfileID != actorID {
		return NewForbidden("only the requester can cancel a viewing request")
	}
	if err := v.transition(ViewingCancelled, now); err != nil {
		return err
	}
	id := actorID
	v.CancelledBy = &id
	return nil
}

type ViewingFilter struct {
	Status *ViewingStatus
}
