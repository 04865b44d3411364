package usecase

import (
	"context"
	"errors"
	"fmt"

	"homiio/internal/contextkeys"
	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/google/uuid"
)

// ResolveProfileUseCase возвращает активный профиль пользователя,
// при первом обращении создает личный профиль.
type ResolveProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewResolveProfileUseCase(repo port.ProfileRepositoryPort) *ResolveProfileUseCase {
	return &ResolveProfileUseCase{repo: repo}
}

func (uc *ResolveProfileUseCase) Execute(ctx context.Context, identity *domain.Identity) (*domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ResolveProfile", "oxy_user_id": identity.UserID})

	profile, err := uc.repo.FindActiveByUser(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		ucLogger.Error("Failed to find active profile", err, nil)
		return nil, err
	}

	profiles, err := uc.repo.FindByUser(ctx, identity.UserID)
	if err != nil {
		ucLogger.Error("Failed to list user profiles", err, nil)
		return nil, err
	}

	// профили есть, но ни один не активен - активируем личный
	if len(profiles) > 0 {
		target := profiles[0]
		for _, p := range profiles {
			if p.Type == domain.ProfilePersonal {
				target = p
				break
			}
		}
		if err := uc.repo.SetActive(ctx, identity.UserID, target.ID); err != nil {
			ucLogger.Error("Failed to activate fallback profile", err, nil)
			return nil, err
		}
		target.IsActive = true
		ucLogger.Info("Fallback profile activated", port.Fields{"profile_id": target.ID})
		return &target, nil
	}

	ucLogger.Info("Creating personal profile for new user", nil)
	personal := domain.NewPersonalProfile(identity)
	if err := uc.repo.Create(ctx, personal); err != nil {
		// параллельный запрос успел создать профиль первым
		if errors.Is(err, domain.ErrConflict) {
			ucLogger.Warn("Personal profile was created concurrently", nil)
			return uc.repo.FindActiveByUser(ctx, identity.UserID)
		}
		ucLogger.Error("Failed to create personal profile", err, nil)
		return nil, err
	}

	ucLogger.Info("Personal profile created", port.Fields{"profile_id": personal.ID})
	return personal, nil
}

type ListProfilesUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewListProfilesUseCase(repo port.ProfileRepositoryPort) *ListProfilesUseCase {
	return &ListProfilesUseCase{repo: repo}
}

func (uc *ListProfilesUseCase) Execute(ctx context.Context, identity *domain.Identity) ([]domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListProfiles", "oxy_user_id": identity.UserID})

	profiles, err := uc.repo.FindByUser(ctx, identity.UserID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}
	return profiles, nil
}

type GetProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewGetProfileUseCase(repo port.ProfileRepositoryPort) *GetProfileUseCase {
	return &GetProfileUseCase{repo: repo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return uc.repo.FindByID(ctx, id)
}

type CreateProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewCreateProfileUseCase(repo port.ProfileRepositoryPort) *CreateProfileUseCase {
	return &CreateProfileUseCase{repo: repo}
}

func (uc *CreateProfileUseCase) Execute(ctx context.Context, identity *domain.Identity, in domain.ProfileInput) (*domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "CreateProfile",
		"oxy_user_id":  identity.UserID,
		"profile_type": in.Type,
	})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(true); err != nil {
		return nil, err
	}

	profile := domain.NewPersonalProfile(identity)
	profile.Type = in.Type
	profile.IsPrimary = false
	profile.IsActive = false
	in.Apply(profile)

	if err := uc.repo.Create(ctx, profile); err != nil {
		ucLogger.Error("Repository failed to create profile", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"profile_id": profile.ID})
	return profile, nil
}

type UpdateProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewUpdateProfileUseCase(repo port.ProfileRepositoryPort) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{repo: repo}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID, in domain.ProfileInput) (*domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "UpdateProfile", "profile_id": id})
	ucLogger.Info("Use case started", nil)

	if err := in.Validate(false); err != nil {
		return nil, err
	}

	profile, err := loadOwnedProfile(ctx, uc.repo, identity, id)
	if err != nil {
		return nil, err
	}

	in.Apply(profile)
	if err := uc.repo.Update(ctx, profile); err != nil {
		ucLogger.Error("Repository failed to update profile", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return profile, nil
}

type ActivateProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewActivateProfileUseCase(repo port.ProfileRepositoryPort) *ActivateProfileUseCase {
	return &ActivateProfileUseCase{repo: repo}
}

func (uc *ActivateProfileUseCase) Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID) (*domain.Profile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ActivateProfile", "profile_id": id})
	ucLogger.Info("Use case started", nil)

	profile, err := loadOwnedProfile(ctx, uc.repo, identity, id)
	if err != nil {
		return nil, err
	}
	if profile.IsActive {
		return profile, nil
	}

	if err := uc.repo.SetActive(ctx, identity.UserID, profile.ID); err != nil {
		ucLogger.Error("Repository failed to activate profile", err, nil)
		return nil, err
	}
	profile.IsActive = true

	ucLogger.Info("Use case finished successfully", nil)
	return profile, nil
}

type DeleteProfileUseCase struct {
	repo port.ProfileRepositoryPort
}

func NewDeleteProfileUseCase(repo port.ProfileRepositoryPort) *DeleteProfileUseCase {
	return &DeleteProfileUseCase{repo: repo}
}

func (uc *DeleteProfileUseCase) Execute(ctx context.Context, identity *domain.Identity, id uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "DeleteProfile", "profile_id": id})
	ucLogger.Info("Use case started", nil)

	profile, err := loadOwnedProfile(ctx, uc.repo, identity, id)
	if err != nil {
		return err
	}
	if profile.Type == domain.ProfilePersonal {
		return domain.NewConflict("personal profile cannot be deleted")
	}

	if err := uc.repo.SoftDelete(ctx, id); err != nil {
		ucLogger.Error("Repository failed to delete profile", err, nil)
		return err
	}

	// удалили активный профиль - возвращаем активность личному
	if profile.IsActive {
		profiles, err := uc.repo.FindByUser(ctx, identity.UserID)
		if err != nil {
			return fmt.Errorf("failed to reload profiles after delete: %w", err)
		}
		for _, p := range profiles {
			if p.Type == domain.ProfilePersonal {
				if err := uc.repo.SetActive(ctx, identity.UserID, p.ID); err != nil {
					return fmt.Errorf("failed to activate personal profile: %w", err)
				}
				break
			}
		}
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

func loadOwnedProfile(ctx context.Context, repo port.ProfileRepositoryPort, identity *domain.Identity, id uuid.UUID) (*domain.Profile, error) {
	profile, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !profile.OwnedBy(identity.UserID) {
		return nil, domain.NewForbidden("profile belongs to another user")
	}
	return profile, nil
}
