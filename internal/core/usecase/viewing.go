package usecase

import (
	"context"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

// viewingDeps - общие зависимости use case'ов заявок на просмотр.
type viewingDeps struct {
	viewings   port.ViewingRepositoryPort
	properties port.PropertyRepositoryPort
	publisher  port.EventPublisherPort
	metrics    port.MetricsPort
}

func (d viewingDeps) emit(ctx context.Context, action string, v *domain.ViewingRequest, logger port.LoggerPort) {
	if d.metrics != nil {
		d.metrics.ViewingTransition(v.Status)
	}
	title := ""
	if p, err := d.properties.FindByID(ctx, v.PropertyID); err == nil {
		title = p.Title
	}
	publishEvent(ctx, d.publisher, domain.NewViewingEvent(action, v, title), logger)
}

type CreateViewingRequestUseCase struct {
	viewingDeps
	now func() time.Time
}

func NewCreateViewingRequestUseCase(
	viewings port.ViewingRepositoryPort,
	properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *CreateViewingRequestUseCase {
	return &CreateViewingRequestUseCase{
		viewingDeps: viewingDeps{viewings: viewings, properties: properties, publisher: publisher, metrics: metrics},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *CreateViewingRequestUseCase) Execute(ctx context.Context, requesterID, propertyID uuid.UUID, scheduledAt time.Time, message string) (*domain.ViewingRequest, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "CreateViewingRequest",
		"property_id":  propertyID,
		"requester_id": requesterID,
		"scheduled_at": scheduledAt,
	})
	ucLogger.Info("Use case started", nil)

	property, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	viewing, err := domain.NewViewingRequest(property, requesterID, scheduledAt, message, uc.now())
	if err != nil {
		return nil, err
	}

	pending, err := uc.viewings.HasPending(ctx, propertyID, requesterID)
	if err != nil {
		ucLogger.Error("Failed to check pending requests", err, nil)
		return nil, err
	}
	if pending {
		return nil, domain.NewConflict("you already have a pending viewing request for this property")
	}

	taken, err := uc.viewings.IsSlotTaken(ctx, propertyID, viewing.ScheduledAt)
	if err != nil {
		ucLogger.Error("Failed to check slot availability", err, nil)
		return nil, err
	}
	if taken {
		return nil, domain.NewTimeConflict("this time slot is already booked")
	}

	if err := uc.viewings.Create(ctx, viewing); err != nil {
		ucLogger.Error("Repository failed to create viewing request", err, nil)
		return nil, err
	}

	uc.emit(ctx, domain.ViewingActionRequested, viewing, ucLogger)
	ucLogger.Info("Use case finished successfully", port.Fields{"viewing_id": viewing.ID})
	return viewing, nil
}

type ListMyViewingRequestsUseCase struct {
	viewings port.ViewingRepositoryPort
}

func NewListMyViewingRequestsUseCase(viewings port.ViewingRepositoryPort) *ListMyViewingRequestsUseCase {
	return &ListMyViewingRequestsUseCase{viewings: viewings}
}

func (uc *ListMyViewingRequestsUseCase) Execute(ctx context.Context, profileID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.NewValidation("validation failed", map[string]string{"status": "unknown viewing status"})
	}
	return uc.viewings.FindByRequester(ctx, profileID, filter, page)
}

type ListPropertyViewingRequestsUseCase struct {
	viewings   port.ViewingRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewListPropertyViewingRequestsUseCase(viewings port.ViewingRepositoryPort, properties port.PropertyRepositoryPort) *ListPropertyViewingRequestsUseCase {
	return &ListPropertyViewingRequestsUseCase{viewings: viewings, properties: properties}
}

func (uc *ListPropertyViewingRequestsUseCase) Execute(ctx context.Context, actorID, propertyID uuid.UUID, filter domain.ViewingFilter, page domain.Page) (*domain.Paginated[domain.ViewingRequest], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.NewValidation("validation failed", map[string]string{"status": "unknown viewing status"})
	}
	if _, err := loadOwnedProperty(ctx, uc.properties, actorID, propertyID); err != nil {
		return nil, err
	}
	return uc.viewings.FindByProperty(ctx, propertyID, filter, page)
}

type GetViewingRequestUseCase struct {
	viewings port.ViewingRepositoryPort
}

func NewGetViewingRequestUseCase(viewings port.ViewingRepositoryPort) *GetViewingRequestUseCase {
	return &GetViewingRequestUseCase{viewings: viewings}
}

func (uc *GetViewingRequestUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
	viewing, err := uc.viewings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewing.CanView(actorID) {
		return nil, domain.NewForbidden("only the requester or the property owner can view this request")
	}
	return viewing, nil
}

type ApproveViewingRequestUseCase struct {
	viewingDeps
}

func NewApproveViewingRequestUseCase(
	viewings port.ViewingRepositoryPort,
	properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *ApproveViewingRequestUseCase {
	return &ApproveViewingRequestUseCase{
		viewingDeps{viewings: viewings, properties: properties, publisher: publisher, metrics: metrics},
	}
}

func (uc *ApproveViewingRequestUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, note string) (*domain.ViewingRequest, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ApproveViewingRequest", "viewing_id": id})
	ucLogger.Info("Use case started", nil)

	viewing, err := uc.viewings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := viewing.Approve(actorID, note, time.Now().UTC()); err != nil {
		return nil, err
	}

	// слот блокируется в транзакции, конфликт приходит как TIME_CONFLICT
	declined, err := uc.viewings.Approve(ctx, viewing)
	if err != nil {
		ucLogger.Warn("Approval rejected by repository", port.Fields{"error": err.Error()})
		return nil, err
	}

	uc.emit(ctx, domain.ViewingActionApproved, viewing, ucLogger)
	for i := range declined {
		uc.emit(ctx, domain.ViewingActionDeclined, &declined[i], ucLogger)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"auto_declined": len(declined)})
	return viewing, nil
}

type DeclineViewingRequestUseCase struct {
	viewingDeps
}

func NewDeclineViewingRequestUseCase(
	viewings port.ViewingRepositoryPort,
	properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *DeclineViewingRequestUseCase {
	return &DeclineViewingRequestUseCase{
		viewingDeps{viewings: viewings, properties: properties, publisher: publisher, metrics: metrics},
	}
}

func (uc *DeclineViewingRequestUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, note string) (*domain.ViewingRequest, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeclineViewingRequest", "viewing_id": id})
	ucLogger.Info("Use case started", nil)

	viewing, err := uc.viewings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := viewing.Status
	if err := viewing.Decline(actorID, note, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.viewings.UpdateStatus(ctx, viewing, from); err != nil {
		ucLogger.Error("Repository failed to update viewing request", err, nil)
		return nil, err
	}

	uc.emit(ctx, domain.ViewingActionDeclined, viewing, ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return viewing, nil
}

type CancelViewingRequestUseCase struct {
	viewingDeps
}

func NewCancelViewingRequestUseCase(
	viewings port.ViewingRepositoryPort,
	properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *CancelViewingRequestUseCase {
	return &CancelViewingRequestUseCase{
		viewingDeps{viewings: viewings, properties: properties, publisher: publisher, metrics: metrics},
	}
}

func (uc *CancelViewingRequestUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.ViewingRequest, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CancelViewingRequest", "viewing_id": id})
	ucLogger.Info("Use case started", nil)

	viewing, err := uc.viewings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := viewing.Status
	if err := viewing.Cancel(actorID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.viewings.UpdateStatus(ctx, viewing, from); err != nil {
		ucLogger.Error("Repository failed to update viewing request", err, nil)
		return nil, err
	}

	uc.emit(ctx, domain.ViewingActionCancelled, viewing, ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return viewing, nil
}

// ExpireStaleViewingsUseCase отменяет pending-заявки, время которых прошло.
type ExpireStaleViewingsUseCase struct {
	viewingDeps
}

func NewExpireStaleViewingsUseCase(
	viewings port.ViewingRepositoryPort,
	properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort,
	metrics port.MetricsPort,
) *ExpireStaleViewingsUseCase {
	return &ExpireStaleViewingsUseCase{
		viewingDeps{viewings: viewings, properties: properties, publisher: publisher, metrics: metrics},
	}
}

func (uc *ExpireStaleViewingsUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ExpireStaleViewings"})

	cancelled, err := uc.viewings.CancelStale(ctx, now)
	if err != nil {
		ucLogger.Error("Failed to cancel stale viewing requests", err, nil)
		return 0, err
	}
	for i := range cancelled {
		uc.emit(ctx, domain.ViewingActionExpired, &cancelled[i], ucLogger)
	}

	if len(cancelled) > 0 {
		ucLogger.Info("Stale viewing requests cancelled", port.Fields{"count": len(cancelled)})
	}
	return len(cancelled), nil
}
