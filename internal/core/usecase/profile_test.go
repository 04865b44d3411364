package usecase

import (
	"context"
	"errors"
	"testing"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile(t *testing.T) {
	identity := &domain.Identity{UserID: "oxy-7", Username: "marta", Name: "Marta Puig", Email: "marta@example.com"}

	t.Run("returns active profile", func(t *testing.T) {
		repo := new(mockProfileRepo)
		active := &domain.Profile{ID: uuid.New(), OxyUserID: "oxy-7", IsActive: true}
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(active, nil)

		got, err := NewResolveProfileUseCase(repo).Execute(context.Background(), identity)

		require.NoError(t, err)
		assert.Equal(t, active.ID, got.ID)
	})

	t.Run("first login creates personal profile", func(t *testing.T) {
		repo := new(mockProfileRepo)
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(nil, domain.NewNotFound("profile"))
		repo.On("FindByUser", mock.Anything, "oxy-7").Return([]domain.Profile{}, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

		got, err := NewResolveProfileUseCase(repo).Execute(context.Background(), identity)

		require.NoError(t, err)
		assert.Equal(t, domain.ProfilePersonal, got.Type)
		assert.Equal(t, "Marta Puig", got.DisplayName)
		assert.True(t, got.IsActive)
		assert.True(t, got.IsPrimary)
	})

	t.Run("activates personal when none active", func(t *testing.T) {
		repo := new(mockProfileRepo)
		agency := domain.Profile{ID: uuid.New(), OxyUserID: "oxy-7", Type: domain.ProfileAgency}
		personal := domain.Profile{ID: uuid.New(), OxyUserID: "oxy-7", Type: domain.ProfilePersonal}
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(nil, domain.NewNotFound("profile"))
		repo.On("FindByUser", mock.Anything, "oxy-7").Return([]domain.Profile{agency, personal}, nil)
		repo.On("SetActive", mock.Anything, "oxy-7", personal.ID).Return(nil)

		got, err := NewResolveProfileUseCase(repo).Execute(context.Background(), identity)

		require.NoError(t, err)
		assert.Equal(t, personal.ID, got.ID)
		assert.True(t, got.IsActive)
	})

	t.Run("concurrent creation reloads", func(t *testing.T) {
		repo := new(mockProfileRepo)
		winner := &domain.Profile{ID: uuid.New(), OxyUserID: "oxy-7", IsActive: true}
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(nil, domain.NewNotFound("profile")).Once()
		repo.On("FindByUser", mock.Anything, "oxy-7").Return([]domain.Profile{}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.NewConflict("profile already exists"))
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(winner, nil)

		got, err := NewResolveProfileUseCase(repo).Execute(context.Background(), identity)

		require.NoError(t, err)
		assert.Equal(t, winner.ID, got.ID)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(mockProfileRepo)
		repo.On("FindActiveByUser", mock.Anything, "oxy-7").Return(nil, errors.New("pool exhausted"))

		_, err := NewResolveProfileUseCase(repo).Execute(context.Background(), identity)
		assert.Error(t, err)
	})
}

func TestDeleteProfile_PersonalIsProtected(t *testing.T) {
	identity := &domain.Identity{UserID: "oxy-7"}
	personal := &domain.Profile{ID: uuid.New(), OxyUserID: "oxy-7", Type: domain.ProfilePersonal, IsPrimary: true}
	repo := new(mockProfileRepo)
	repo.On("FindByID", mock.Anything, personal.ID).Return(personal, nil)

	err := NewDeleteProfileUseCase(repo).Execute(context.Background(), identity, personal.ID)

	assert.True(t, errors.Is(err, domain.ErrConflict))
	repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestActivateProfile_ForeignProfile(t *testing.T) {
	identity := &domain.Identity{UserID: "oxy-7"}
	foreign := &domain.Profile{ID: uuid.New(), OxyUserID: "oxy-8"}
	repo := new(mockProfileRepo)
	repo.On("FindByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, err := NewActivateProfileUseCase(repo).Execute(context.Background(), identity, foreign.ID)

	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
