package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"homiio/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type viewingFixture struct {
	viewings   *mockViewingRepo
	properties *mockPropertyRepo
	publisher  *mockPublisher
	metrics    *mockMetrics
	property   *domain.Property
	owner      uuid.UUID
	requester  uuid.UUID
	slot       time.Time
}

func newViewingFixture() *viewingFixture {
	owner := uuid.New()
	f := &viewingFixture{
		viewings:   new(mockViewingRepo),
		properties: new(mockPropertyRepo),
		publisher:  new(mockPublisher),
		metrics:    new(mockMetrics),
		owner:      owner,
		requester:  uuid.New(),
		property:   &domain.Property{ID: uuid.New(), OwnerProfileID: owner, Title: "Loft in Gracia"},
		slot:       time.Now().UTC().Add(72 * time.Hour).Truncate(domain.ViewingSlot),
	}
	f.properties.On("FindByID", mock.Anything, f.property.ID).Return(f.property, nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.metrics.On("ViewingTransition", mock.Anything).Return()
	return f
}

func (f *viewingFixture) pending() *domain.ViewingRequest {
	return &domain.ViewingRequest{
		ID:                 uuid.New(),
		PropertyID:         f.property.ID,
		RequesterProfileID: f.requester,
		OwnerProfileID:     f.owner,
		ScheduledAt:        f.slot,
		Status:             domain.ViewingPending,
	}
}

func TestCreateViewingRequest_Success(t *testing.T) {
	f := newViewingFixture()
	f.viewings.On("HasPending", mock.Anything, f.property.ID, f.requester).Return(false, nil)
	f.viewings.On("IsSlotTaken", mock.Anything, f.property.ID, f.slot).Return(false, nil)
	f.viewings.On("Create", mock.Anything, mock.AnythingOfType("*domain.ViewingRequest")).Return(nil)

	uc := NewCreateViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	v, err := uc.Execute(context.Background(), f.requester, f.property.ID, f.slot, "Can I bring my dog?")

	require.NoError(t, err)
	assert.Equal(t, domain.ViewingPending, v.Status)
	assert.Equal(t, f.owner, v.OwnerProfileID)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.RoutingKey() == "viewing.requested"
	}))
	f.metrics.AssertCalled(t, "ViewingTransition", domain.ViewingPending)
}

func TestCreateViewingRequest_Rejections(t *testing.T) {
	t.Run("owner cannot request", func(t *testing.T) {
		f := newViewingFixture()
		uc := NewCreateViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)

		_, err := uc.Execute(context.Background(), f.owner, f.property.ID, f.slot, "")
		assert.True(t, errors.Is(err, domain.ErrForbidden))
		f.viewings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unaligned slot", func(t *testing.T) {
		f := newViewingFixture()
		uc := NewCreateViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)

		_, err := uc.Execute(context.Background(), f.requester, f.property.ID, f.slot.Add(10*time.Minute), "")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("second pending request", func(t *testing.T) {
		f := newViewingFixture()
		f.viewings.On("HasPending", mock.Anything, f.property.ID, f.requester).Return(true, nil)
		uc := NewCreateViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)

		_, err := uc.Execute(context.Background(), f.requester, f.property.ID, f.slot, "")
		assert.True(t, errors.Is(err, domain.ErrConflict))
	})

	t.Run("slot already approved", func(t *testing.T) {
		f := newViewingFixture()
		f.viewings.On("HasPending", mock.Anything, f.property.ID, f.requester).Return(false, nil)
		f.viewings.On("IsSlotTaken", mock.Anything, f.property.ID, f.slot).Return(true, nil)
		uc := NewCreateViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)

		_, err := uc.Execute(context.Background(), f.requester, f.property.ID, f.slot, "")
		appErr := domain.AsAppError(err)
		assert.Equal(t, domain.CodeTimeConflict, appErr.Code)
		assert.Equal(t, 409, appErr.Status)
	})
}

func TestApproveViewingRequest_AutoDeclinesOthers(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	other := f.pending()
	other.RequesterProfileID = uuid.New()
	other.Status = domain.ViewingDeclined

	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	f.viewings.On("Approve", mock.Anything, v).Return([]domain.ViewingRequest{*other}, nil)

	uc := NewApproveViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	got, err := uc.Execute(context.Background(), f.owner, v.ID, "See you there")

	require.NoError(t, err)
	assert.Equal(t, domain.ViewingApproved, got.Status)
	f.publisher.AssertNumberOfCalls(t, "Publish", 2)
	f.metrics.AssertCalled(t, "ViewingTransition", domain.ViewingApproved)
	f.metrics.AssertCalled(t, "ViewingTransition", domain.ViewingDeclined)
}

func TestApproveViewingRequest_TimeConflictFromStore(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	f.viewings.On("Approve", mock.Anything, v).Return(nil, domain.NewTimeConflict("slot taken"))

	uc := NewApproveViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	_, err := uc.Execute(context.Background(), f.owner, v.ID, "")

	assert.True(t, errors.Is(err, domain.ErrTimeConflict))
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestApproveViewingRequest_OnlyOwnerAndPending(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	uc := NewApproveViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)

	_, err := uc.Execute(context.Background(), f.requester, v.ID, "")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	v.Status = domain.ViewingCancelled
	_, err = uc.Execute(context.Background(), f.owner, v.ID, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidStatus))
	f.viewings.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestCancelViewingRequest_Approved(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	v.Status = domain.ViewingApproved
	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	f.viewings.On("UpdateStatus", mock.Anything, v, domain.ViewingApproved).Return(nil)

	uc := NewCancelViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	got, err := uc.Execute(context.Background(), f.requester, v.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ViewingCancelled, got.Status)
	f.viewings.AssertExpectations(t)
}

func TestDeclineViewingRequest_NotPending(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	v.Status = domain.ViewingDeclined
	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)

	uc := NewDeclineViewingRequestUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	_, err := uc.Execute(context.Background(), f.owner, v.ID, "")

	assert.Equal(t, domain.CodeInvalidStatus, domain.AsAppError(err).Code)
}

func TestGetViewingRequest_Stranger(t *testing.T) {
	f := newViewingFixture()
	v := f.pending()
	f.viewings.On("FindByID", mock.Anything, v.ID).Return(v, nil)

	uc := NewGetViewingRequestUseCase(f.viewings)
	_, err := uc.Execute(context.Background(), uuid.New(), v.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	got, err := uc.Execute(context.Background(), f.owner, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
}

func TestExpireStaleViewings(t *testing.T) {
	f := newViewingFixture()
	now := time.Now().UTC()
	stale := f.pending()
	stale.Status = domain.ViewingCancelled
	f.viewings.On("CancelStale", mock.Anything, now).Return([]domain.ViewingRequest{*stale}, nil)

	uc := NewExpireStaleViewingsUseCase(f.viewings, f.properties, f.publisher, f.metrics)
	n, err := uc.Execute(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.RoutingKey() == "viewing.expired"
	}))
}
