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

func TestSaveProperty_SavingTwiceUpdatesNotes(t *testing.T) {
	profileID := uuid.New()
	property := &domain.Property{ID: uuid.New(), OwnerProfileID: uuid.New()}
	saved := new(mockSavedRepo)
	properties := new(mockPropertyRepo)
	properties.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	saved.On("Save", mock.Anything, profileID, property.ID, "close to school").Return(nil)
	saved.On("Save", mock.Anything, profileID, property.ID, "ask about parking").Return(nil)

	uc := NewSavePropertyUseCase(saved, properties)

	require.NoError(t, uc.Execute(context.Background(), profileID, property.ID, "close to school"))
	require.NoError(t, uc.Execute(context.Background(), profileID, property.ID, "ask about parking"))

	saved.AssertNumberOfCalls(t, "Save", 2)
	saved.AssertExpectations(t)
}

func TestSaveProperty_UnknownProperty(t *testing.T) {
	saved := new(mockSavedRepo)
	properties := new(mockPropertyRepo)
	id := uuid.New()
	properties.On("FindByID", mock.Anything, id).Return(nil, domain.NewNotFound("property"))

	err := NewSavePropertyUseCase(saved, properties).Execute(context.Background(), uuid.New(), id, "")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	saved.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListRecentlyViewed_CappedAtTwenty(t *testing.T) {
	require.Equal(t, 20, domain.MaxRecentlyViewed)

	profileID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	saved := new(mockSavedRepo)
	properties := new(mockPropertyRepo)
	saved.On("FindRecentIDs", mock.Anything, profileID, domain.MaxRecentlyViewed).Return(ids, nil)
	properties.On("FindByIDs", mock.Anything, ids).Return([]domain.Property{{ID: ids[0]}, {ID: ids[1]}}, nil)

	got, err := NewListRecentlyViewedUseCase(saved, properties).Execute(context.Background(), profileID)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	saved.AssertExpectations(t)
}

func TestListRecentlyViewed_Empty(t *testing.T) {
	profileID := uuid.New()
	saved := new(mockSavedRepo)
	properties := new(mockPropertyRepo)
	saved.On("FindRecentIDs", mock.Anything, profileID, domain.MaxRecentlyViewed).Return([]uuid.UUID{}, nil)

	got, err := NewListRecentlyViewedUseCase(saved, properties).Execute(context.Background(), profileID)

	require.NoError(t, err)
	assert.Empty(t, got)
	properties.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestRecordPropertyView_TracksVisitor(t *testing.T) {
	visitor := uuid.New()
	property := &domain.Property{ID: uuid.New(), OwnerProfileID: uuid.New()}
	saved := new(mockSavedRepo)
	properties := new(mockPropertyRepo)
	properties.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	properties.On("IncrementViews", mock.Anything, property.ID).Return(nil)
	saved.On("RecordView", mock.Anything, visitor, property.ID).Return(nil)

	require.NoError(t, NewRecordPropertyViewUseCase(saved, properties).Execute(context.Background(), &visitor, property.ID))
	saved.AssertExpectations(t)
}
