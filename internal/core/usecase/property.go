package usecase

import (
	"context"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

type CreatePropertyUseCase struct {
	repo     port.PropertyRepositoryPort
	geocoder port.GeocoderPort
}

// NewCreatePropertyUseCase - geocoder может быть nil, тогда координаты берутся только из запроса.
func NewCreatePropertyUseCase(repo port.PropertyRepositoryPort, geocoder port.GeocoderPort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{repo: repo, geocoder: geocoder}
}

func (uc *CreatePropertyUseCase) Execute(ctx context.Context, ownerID uuid.UUID, in domain.PropertyInput) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "CreateProperty", "owner_profile_id": ownerID})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(true); err != nil {
		ucLogger.Warn("Invalid property input", nil)
		return nil, err
	}

	property := domain.NewProperty(ownerID, in)
	if property.Location == nil {
		property.Location = geocode(ctx, uc.geocoder, property.Address, ucLogger)
	}

	if err := uc.repo.Create(ctx, property); err != nil {
		ucLogger.Error("Repository failed to create property", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": property.ID})
	return property, nil
}

type GetPropertyUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewGetPropertyUseCase(repo port.PropertyRepositoryPort) *GetPropertyUseCase {
	return &GetPropertyUseCase{repo: repo}
}

func (uc *GetPropertyUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return uc.repo.FindByID(ctx, id)
}

type ListPropertiesUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewListPropertiesUseCase(repo port.PropertyRepositoryPort) *ListPropertiesUseCase {
	return &ListPropertiesUseCase{repo: repo}
}

func (uc *ListPropertiesUseCase) Execute(ctx context.Context, filter domain.PropertyFilter, page domain.Page) (*domain.Paginated[domain.Property], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListProperties", "page": page.Number()})

	if err := filter.Validate(); err != nil {
		return nil, err
	}
	// в публичной выдаче по умолчанию только свободные объекты
	if filter.Status == nil && filter.OwnerProfile == nil {
		status := domain.PropertyAvailable
		filter.Status = &status
	}
	if filter.Sort == "" {
		filter.Sort = domain.SortNewest
	}

	result, err := uc.repo.List(ctx, filter, page)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Debug("Properties listed", port.Fields{"total": result.TotalCount})
	return result, nil
}

type ListOwnerPropertiesUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewListOwnerPropertiesUseCase(repo port.PropertyRepositoryPort) *ListOwnerPropertiesUseCase {
	return &ListOwnerPropertiesUseCase{repo: repo}
}

func (uc *ListOwnerPropertiesUseCase) Execute(ctx context.Context, ownerID uuid.UUID, page domain.Page) (*domain.Paginated[domain.Property], error) {
	owner := ownerID
	return uc.repo.List(ctx, domain.PropertyFilter{OwnerProfile: &owner, Sort: domain.SortNewest}, page)
}

type UpdatePropertyUseCase struct {
	repo     port.PropertyRepositoryPort
	geocoder port.GeocoderPort
}

func NewUpdatePropertyUseCase(repo port.PropertyRepositoryPort, geocoder port.GeocoderPort) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{repo: repo, geocoder: geocoder}
}

func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, actorID, id uuid.UUID, in domain.PropertyInput) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateProperty", "property_id": id})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(false); err != nil {
		return nil, err
	}

	property, err := loadOwnedProperty(ctx, uc.repo, actorID, id)
	if err != nil {
		return nil, err
	}

	in.Apply(property)
	if in.AddressChanged() {
		if loc := geocode(ctx, uc.geocoder, property.Address, ucLogger); loc != nil {
			property.Location = loc
		}
	}

	if err := uc.repo.Update(ctx, property); err != nil {
		ucLogger.Error("Repository failed to update property", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return property, nil
}

type DeletePropertyUseCase struct {
	repo   port.PropertyRepositoryPort
	leases port.LeaseRepositoryPort
}

func NewDeletePropertyUseCase(repo port.PropertyRepositoryPort, leases port.LeaseRepositoryPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{repo: repo, leases: leases}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, actorID, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeleteProperty", "property_id": id})
	ucLogger.Info("Use case started", nil)

	if _, err := loadOwnedProperty(ctx, uc.repo, actorID, id); err != nil {
		return err
	}

	hasLease, err := uc.leases.HasActiveLease(ctx, id)
	if err != nil {
		ucLogger.Error("Failed to check active leases", err, nil)
		return err
	}
	if hasLease {
		return domain.NewConflict("property has an active lease")
	}

	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		ucLogger.Error("Repository failed to delete property", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type GetPropertyPricingUseCase struct {
	repo port.PropertyRepositoryPort
}

func NewGetPropertyPricingUseCase(repo port.PropertyRepositoryPort) *GetPropertyPricingUseCase {
	return &GetPropertyPricingUseCase{repo: repo}
}

func (uc *GetPropertyPricingUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.EthicalPrice, error) {
	property, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	amenities := property.Amenities
	if property.IsFurnished {
		amenities = append(append([]string{}, amenities...), "furnished")
	}
	price := domain.CalculateEthicalPrice(0, property.SquareMeters, property.Rent.MonthlyAmount(), amenities)
	return &price, nil
}

func loadOwnedProperty(ctx context.Context, repo port.PropertyRepositoryPort, actorID, id uuid.UUID) (*domain.Property, error) {
	property, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !property.OwnedBy(actorID) {
		return nil, domain.NewForbidden("only the property owner can do this")
	}
	return property, nil
}

// geocode не валит операцию: объект без координат просто не попадет в поиск по радиусу.
func geocode(ctx context.Context, geocoder port.GeocoderPort, address domain.Address, logger port.LoggerPort) *domain.Location {
	if geocoder == nil {
		return nil
	}
	loc, err := geocoder.Geocode(ctx, address.String())
	if err != nil {
		logger.Warn("Geocoding failed, property saved without coordinates", port.Fields{"error": err.Error()})
		return nil
	}
	return loc
}
