package usecase

import (
	"context"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

type SavePropertyUseCase struct {
	saved      port.SavedPropertyRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewSavePropertyUseCase(saved port.SavedPropertyRepositoryPort, properties port.PropertyRepositoryPort) *SavePropertyUseCase {
	return &SavePropertyUseCase{saved: saved, properties: properties}
}

// Execute добавляет объект в избранное. Повторное сохранение не ошибка.
func (uc *SavePropertyUseCase) Execute(ctx context.Context, profileID, propertyID uuid.UUID, notes string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "SaveProperty",
		"profile_id":  profileID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	if _, err := uc.properties.FindByID(ctx, propertyID); err != nil {
		return err
	}

	if err := uc.saved.Save(ctx, profileID, propertyID, notes); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type UnsavePropertyUseCase struct {
	saved port.SavedPropertyRepositoryPort
}

func NewUnsavePropertyUseCase(saved port.SavedPropertyRepositoryPort) *UnsavePropertyUseCase {
	return &UnsavePropertyUseCase{saved: saved}
}

func (uc *UnsavePropertyUseCase) Execute(ctx context.Context, profileID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "UnsaveProperty",
		"profile_id":  profileID,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	if err := uc.saved.Remove(ctx, profileID, propertyID); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type ListSavedPropertiesUseCase struct {
	saved      port.SavedPropertyRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewListSavedPropertiesUseCase(saved port.SavedPropertyRepositoryPort, properties port.PropertyRepositoryPort) *ListSavedPropertiesUseCase {
	return &ListSavedPropertiesUseCase{saved: saved, properties: properties}
}

func (uc *ListSavedPropertiesUseCase) Execute(ctx context.Context, profileID uuid.UUID, page domain.Page) (*domain.Paginated[domain.Property], error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ListSavedProperties",
		"profile_id": profileID,
		"page":       page.Number(),
	})
	ucLogger.Info("Use case started", nil)

	ids, total, err := uc.saved.FindSavedIDs(ctx, profileID, page)
	if err != nil {
		ucLogger.Error("Failed to get saved property IDs", err, nil)
		return nil, err
	}

	result := &domain.Paginated[domain.Property]{
		Items:      []domain.Property{},
		TotalCount: total,
		Page:       page.Number(),
		PerPage:    page.Limit,
	}
	if len(ids) == 0 {
		ucLogger.Info("No saved properties on this page", nil)
		return result, nil
	}

	// порядок ids сохраняется репозиторием
	properties, err := uc.properties.FindByIDs(ctx, ids)
	if err != nil {
		ucLogger.Error("Failed to hydrate saved properties", err, nil)
		return nil, err
	}
	result.Items = properties

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(properties)})
	return result, nil
}

type RecordPropertyViewUseCase struct {
	saved      port.SavedPropertyRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewRecordPropertyViewUseCase(saved port.SavedPropertyRepositoryPort, properties port.PropertyRepositoryPort) *RecordPropertyViewUseCase {
	return &RecordPropertyViewUseCase{saved: saved, properties: properties}
}

func (uc *RecordPropertyViewUseCase) Execute(ctx context.Context, profileID *uuid.UUID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "RecordPropertyView", "property_id": propertyID})

	property, err := uc.properties.FindByID(ctx, propertyID)
	if err != nil {
		return err
	}

	if err := uc.properties.IncrementViews(ctx, propertyID); err != nil {
		ucLogger.Error("Failed to increment views counter", err, nil)
		return err
	}

	// просмотры владельца в историю не пишем
	if profileID != nil && !property.OwnedBy(*profileID) {
		if err := uc.saved.RecordView(ctx, *profileID, propertyID); err != nil {
			ucLogger.Error("Failed to record recently viewed", err, nil)
			return err
		}
	}

	ucLogger.Debug("Property view recorded", nil)
	return nil
}

type ListRecentlyViewedUseCase struct {
	saved      port.SavedPropertyRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewListRecentlyViewedUseCase(saved port.SavedPropertyRepositoryPort, properties port.PropertyRepositoryPort) *ListRecentlyViewedUseCase {
	return &ListRecentlyViewedUseCase{saved: saved, properties: properties}
}

func (uc *ListRecentlyViewedUseCase) Execute(ctx context.Context, profileID uuid.UUID) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListRecentlyViewed", "profile_id": profileID})

	ids, err := uc.saved.FindRecentIDs(ctx, profileID, domain.MaxRecentlyViewed)
	if err != nil {
		ucLogger.Error("Failed to get recently viewed IDs", err, nil)
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Property{}, nil
	}
	return uc.properties.FindByIDs(ctx, ids)
}
