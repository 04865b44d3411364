package usecase

import (
	"context"
	"errors"
	"time"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

type CreateLeaseUseCase struct {
	leases     port.LeaseRepositoryPort
	properties port.PropertyRepositoryPort
	rooms      port.RoomRepositoryPort
	profiles   port.ProfileRepositoryPort
}

func NewCreateLeaseUseCase(
	leases port.LeaseRepositoryPort,
	properties port.PropertyRepositoryPort,
	rooms port.RoomRepositoryPort,
	profiles port.ProfileRepositoryPort,
) *CreateLeaseUseCase {
	return &CreateLeaseUseCase{leases: leases, properties: properties, rooms: rooms, profiles: profiles}
}

func (uc *CreateLeaseUseCase) Execute(ctx context.Context, actorID uuid.UUID, in domain.LeaseInput) (*domain.Lease, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CreateLease", "landlord_profile_id": actorID})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(true); err != nil {
		return nil, err
	}

	property, err := loadOwnedProperty(ctx, uc.properties, actorID, *in.PropertyID)
	if err != nil {
		return nil, err
	}

	if *in.TenantProfileID == actorID {
		return nil, domain.NewValidation("validation failed", map[string]string{"tenant_profile_id": "landlord cannot be the tenant"})
	}
	if _, err := uc.profiles.FindByID(ctx, *in.TenantProfileID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidation("validation failed", map[string]string{"tenant_profile_id": "profile does not exist"})
		}
		return nil, err
	}

	if in.RoomID != nil {
		room, err := uc.rooms.FindByID(ctx, *in.RoomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidation("validation failed", map[string]string{"room_id": "room does not exist"})
			}
			return nil, err
		}
		if room.PropertyID != property.ID {
			return nil, domain.NewValidation("validation failed", map[string]string{"room_id": "room does not belong to the property"})
		}
	}

	lease := domain.NewLease(property, in)
	if err := uc.leases.Create(ctx, lease); err != nil {
		ucLogger.Error("Repository failed to create lease", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"lease_id": lease.ID})
	return lease, nil
}

type GetLeaseUseCase struct {
	leases port.LeaseRepositoryPort
}

func NewGetLeaseUseCase(leases port.LeaseRepositoryPort) *GetLeaseUseCase {
	return &GetLeaseUseCase{leases: leases}
}

func (uc *GetLeaseUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error) {
	return loadPartyLease(ctx, uc.leases, actorID, id)
}

type ListLeasesUseCase struct {
	leases port.LeaseRepositoryPort
}

func NewListLeasesUseCase(leases port.LeaseRepositoryPort) *ListLeasesUseCase {
	return &ListLeasesUseCase{leases: leases}
}

func (uc *ListLeasesUseCase) Execute(ctx context.Context, actorID uuid.UUID, filter domain.LeaseFilter, page domain.Page) (*domain.Paginated[domain.Lease], error) {
	if filter.Role == "" {
		filter.Role = domain.LeaseRoleAny
	}
	errs := domain.ValidationErrors{}
	if !filter.Role.Valid() {
		errs.Add("role", "must be tenant, landlord or any")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		errs.Add("status", "unknown lease status")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return uc.leases.FindByProfile(ctx, actorID, filter, page)
}

type UpdateLeaseUseCase struct {
	leases port.LeaseRepositoryPort
}

func NewUpdateLeaseUseCase(leases port.LeaseRepositoryPort) *UpdateLeaseUseCase {
	return &UpdateLeaseUseCase{leases: leases}
}

func (uc *UpdateLeaseUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, in domain.LeaseInput) (*domain.Lease, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateLease", "lease_id": id})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(false); err != nil {
		return nil, err
	}
	if in.PropertyID != nil || in.TenantProfileID != nil || in.RoomID != nil {
		return nil, domain.NewValidation("validation failed", map[string]string{"lease": "parties and property cannot be changed"})
	}

	lease, err := loadPartyLease(ctx, uc.leases, actorID, id)
	if err != nil {
		return nil, err
	}
	if !lease.IsLandlord(actorID) {
		return nil, domain.NewForbidden("only the landlord can edit a lease")
	}
	if lease.Status != domain.LeaseDraft {
		return nil, domain.NewConflict("only draft leases can be edited")
	}

	prev := lease.Version()
	in.Apply(lease)
	if !lease.EndDate.After(lease.StartDate) {
		return nil, domain.NewValidation("validation failed", map[string]string{"end_date": "must be after start_date"})
	}

	if err := uc.leases.Update(ctx, lease, prev); err != nil {
		ucLogger.Error("Repository failed to update lease", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return lease, nil
}

type SubmitLeaseUseCase struct {
	leases    port.LeaseRepositoryPort
	publisher port.EventPublisherPort
}

func NewSubmitLeaseUseCase(leases port.LeaseRepositoryPort, publisher port.EventPublisherPort) *SubmitLeaseUseCase {
	return &SubmitLeaseUseCase{leases: leases, publisher: publisher}
}

func (uc *SubmitLeaseUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SubmitLease", "lease_id": id})
	ucLogger.Info("Use case started", nil)

	lease, err := loadPartyLease(ctx, uc.leases, actorID, id)
	if err != nil {
		return nil, err
	}
	if !lease.IsLandlord(actorID) {
		return nil, domain.NewForbidden("only the landlord can submit a lease")
	}
	prev := lease.Version()
	if err := lease.Submit(time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.leases.Update(ctx, lease, prev); err != nil {
		ucLogger.Error("Repository failed to update lease", err, nil)
		return nil, err
	}

	publishEvent(ctx, uc.publisher, domain.NewLeaseEvent(domain.LeaseActionSubmitted, lease, &actorID), ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return lease, nil
}

type SignLeaseUseCase struct {
	leases     port.LeaseRepositoryPort
	properties port.PropertyRepositoryPort
	publisher  port.EventPublisherPort
}

func NewSignLeaseUseCase(leases port.LeaseRepositoryPort, properties port.PropertyRepositoryPort, publisher port.EventPublisherPort) *SignLeaseUseCase {
	return &SignLeaseUseCase{leases: leases, properties: properties, publisher: publisher}
}

func (uc *SignLeaseUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) (*domain.Lease, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "SignLease", "lease_id": id, "profile_id": actorID})
	ucLogger.Info("Use case started", nil)

	lease, err := loadPartyLease(ctx, uc.leases, actorID, id)
	if err != nil {
		return nil, err
	}
	prev := lease.Version()
	if err := lease.Sign(actorID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.leases.Update(ctx, lease, prev); err != nil {
		ucLogger.Error("Repository failed to update lease", err, nil)
		return nil, err
	}

	if lease.Status == domain.LeaseActive {
		if err := uc.properties.UpdateStatus(ctx, lease.PropertyID, domain.PropertyOccupied); err != nil {
			ucLogger.Error("Failed to mark property occupied", err, nil)
			return nil, err
		}
	}

	publishEvent(ctx, uc.publisher, domain.NewLeaseEvent(domain.LeaseActionSigned, lease, &actorID), ucLogger)
	ucLogger.Info("Use case finished successfully", port.Fields{"status": lease.Status})
	return lease, nil
}

type TerminateLeaseUseCase struct {
	leases     port.LeaseRepositoryPort
	properties port.PropertyRepositoryPort
	publisher  port.EventPublisherPort
}

func NewTerminateLeaseUseCase(leases port.LeaseRepositoryPort, properties port.PropertyRepositoryPort, publisher port.EventPublisherPort) *TerminateLeaseUseCase {
	return &TerminateLeaseUseCase{leases: leases, properties: properties, publisher: publisher}
}

func (uc *TerminateLeaseUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, reason string) (*domain.Lease, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "TerminateLease", "lease_id": id})
	ucLogger.Info("Use case started", nil)

	lease, err := loadPartyLease(ctx, uc.leases, actorID, id)
	if err != nil {
		return nil, err
	}
	wasActive := lease.Status == domain.LeaseActive
	prev := lease.Version()
	if err := lease.Terminate(reason, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.leases.Update(ctx, lease, prev); err != nil {
		ucLogger.Error("Repository failed to update lease", err, nil)
		return nil, err
	}

	if wasActive {
		if err := releaseProperty(ctx, uc.leases, uc.properties, lease.PropertyID); err != nil {
			ucLogger.Error("Failed to release property", err, nil)
			return nil, err
		}
	}

	publishEvent(ctx, uc.publisher, domain.NewLeaseEvent(domain.LeaseActionTerminated, lease, &actorID), ucLogger)
	ucLogger.Info("Use case finished successfully", nil)
	return lease, nil
}

// RefreshLeaseStatusesUseCase пересчитывает статусы по датам. Запускается по расписанию.
type RefreshLeaseStatusesUseCase struct {
	leases     port.LeaseRepositoryPort
	properties port.PropertyRepositoryPort
	publisher  port.EventPublisherPort
}

func NewRefreshLeaseStatusesUseCase(leases port.LeaseRepositoryPort, properties port.PropertyRepositoryPort, publisher port.EventPublisherPort) *RefreshLeaseStatusesUseCase {
	return &RefreshLeaseStatusesUseCase{leases: leases, properties: properties, publisher: publisher}
}

func (uc *RefreshLeaseStatusesUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "RefreshLeaseStatuses"})
	ucLogger.Info("Use case started", nil)

	leases, err := uc.leases.FindRefreshable(ctx)
	if err != nil {
		ucLogger.Error("Failed to load leases for refresh", err, nil)
		return 0, err
	}

	changed := 0
	for i := range leases {
		lease := &leases[i]
		prev := lease.Version()
		if !lease.Refresh(now) {
			continue
		}
		leaseLogger := ucLogger.WithFields(port.Fields{"lease_id": lease.ID, "status": lease.Status})

		if err := uc.leases.Update(ctx, lease, prev); err != nil {
			leaseLogger.Error("Failed to save refreshed lease", err, nil)
			continue
		}
		changed++

		action := domain.LeaseActionActivated
		switch lease.Status {
		case domain.LeaseActive:
			if err := uc.properties.UpdateStatus(ctx, lease.PropertyID, domain.PropertyOccupied); err != nil {
				leaseLogger.Error("Failed to mark property occupied", err, nil)
			}
		case domain.LeaseExpired:
			action = domain.LeaseActionExpired
			if err := releaseProperty(ctx, uc.leases, uc.properties, lease.PropertyID); err != nil {
				leaseLogger.Error("Failed to release property", err, nil)
			}
		}
		publishEvent(ctx, uc.publisher, domain.NewLeaseEvent(action, lease, nil), leaseLogger)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"checked": len(leases), "changed": changed})
	return changed, nil
}

func loadPartyLease(ctx context.Context, leases port.LeaseRepositoryPort, actorID, id uuid.UUID) (*domain.Lease, error) {
	lease, err := leases.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lease.IsParty(actorID) {
		return nil, domain.NewForbidden("only lease parties can access this lease")
	}
	return lease, nil
}

// releaseProperty возвращает объект в available, если действующих договоров не осталось.
// Подписанный, но еще не начавшийся договор объект не занимает.
func releaseProperty(ctx context.Context, leases port.LeaseRepositoryPort, properties port.PropertyRepositoryPort, propertyID uuid.UUID) error {
	occupied, err := leases.HasOccupyingLease(ctx, propertyID)
	if err != nil {
		return err
	}
	if occupied {
		return nil
	}
	return properties.UpdateStatus(ctx, propertyID, domain.PropertyAvailable)
}
