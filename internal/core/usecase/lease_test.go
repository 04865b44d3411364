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

func pendingLease(start, end time.Time) *domain.Lease {
	return &domain.Lease{
		ID:                uuid.New(),
		PropertyID:        uuid.New(),
		LandlordProfileID: uuid.New(),
		TenantProfileID:   uuid.New(),
		StartDate:         start,
		EndDate:           end,
		RentAmount:        900,
		RentCurrency:      "EUR",
		PaymentDueDay:     1,
		Status:            domain.LeasePending,
	}
}

func TestSignLease_SecondSignatureActivatesAndOccupies(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now.AddDate(0, 0, -1), now.AddDate(1, 0, 0))
	signed := now.Add(-time.Hour)
	lease.LandlordSignedAt = &signed
	before := lease.Version()

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	publisher := new(mockPublisher)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	leases.On("Update", mock.Anything, lease, before).Return(nil)
	properties.On("UpdateStatus", mock.Anything, lease.PropertyID, domain.PropertyOccupied).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uc := NewSignLeaseUseCase(leases, properties, publisher)
	got, err := uc.Execute(context.Background(), lease.TenantProfileID, lease.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseActive, got.Status)
	assert.NotNil(t, got.TenantSignedAt)
	properties.AssertExpectations(t)
	publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.RoutingKey() == "lease.signed"
	}))
}

func TestSignLease_FutureStartStaysUpcoming(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now.AddDate(0, 1, 0), now.AddDate(1, 1, 0))
	signed := now.Add(-time.Hour)
	lease.TenantSignedAt = &signed

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	leases.On("Update", mock.Anything, lease, mock.AnythingOfType("domain.LeaseVersion")).Return(nil)

	uc := NewSignLeaseUseCase(leases, properties, nil)
	got, err := uc.Execute(context.Background(), lease.LandlordProfileID, lease.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseUpcoming, got.Status)
	properties.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignLease_Stranger(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now, now.AddDate(1, 0, 0))
	leases := new(mockLeaseRepo)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)

	uc := NewSignLeaseUseCase(leases, new(mockPropertyRepo), nil)
	_, err := uc.Execute(context.Background(), uuid.New(), lease.ID)

	assert.True(t, errors.Is(err, domain.ErrForbidden))
	leases.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignLease_ConcurrentChangeIsConflict(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now.AddDate(0, 0, -1), now.AddDate(1, 0, 0))

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	publisher := new(mockPublisher)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	// вторая сторона успела подписать между чтением и записью
	leases.On("Update", mock.Anything, lease, mock.MatchedBy(func(prev domain.LeaseVersion) bool {
		return prev.Status == domain.LeasePending && prev.LandlordSignedAt == nil && prev.TenantSignedAt == nil
	})).Return(domain.NewConflict("lease was changed by another request, reload and retry"))

	uc := NewSignLeaseUseCase(leases, properties, publisher)
	_, err := uc.Execute(context.Background(), lease.TenantProfileID, lease.ID)

	assert.True(t, errors.Is(err, domain.ErrConflict))
	properties.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestTerminateLease_ReleasesProperty(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now.AddDate(0, -1, 0), now.AddDate(0, 11, 0))
	lease.Status = domain.LeaseActive

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	leases.On("Update", mock.Anything, lease, mock.AnythingOfType("domain.LeaseVersion")).Return(nil)
	leases.On("HasOccupyingLease", mock.Anything, lease.PropertyID).Return(false, nil)
	properties.On("UpdateStatus", mock.Anything, lease.PropertyID, domain.PropertyAvailable).Return(nil)

	uc := NewTerminateLeaseUseCase(leases, properties, nil)
	got, err := uc.Execute(context.Background(), lease.LandlordProfileID, lease.ID, "tenant moved abroad")

	require.NoError(t, err)
	assert.Equal(t, domain.LeaseTerminated, got.Status)
	assert.Equal(t, "tenant moved abroad", got.TerminationReason)
	properties.AssertExpectations(t)
}

func TestUpdateLease_OnlyDraft(t *testing.T) {
	now := time.Now().UTC()
	lease := pendingLease(now, now.AddDate(1, 0, 0))
	leases := new(mockLeaseRepo)
	leases.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)

	terms := "No parties after 22:00"
	uc := NewUpdateLeaseUseCase(leases)
	_, err := uc.Execute(context.Background(), lease.LandlordProfileID, lease.ID, domain.LeaseInput{Terms: &terms})

	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreateLease_TenantMustExist(t *testing.T) {
	owner := uuid.New()
	property := &domain.Property{ID: uuid.New(), OwnerProfileID: owner, Rent: domain.Rent{Amount: 700, Currency: "EUR"}}
	tenant := uuid.New()
	start := time.Now().UTC().AddDate(0, 1, 0)
	end := start.AddDate(1, 0, 0)
	rent := 700.0

	properties := new(mockPropertyRepo)
	profiles := new(mockProfileRepo)
	properties.On("FindByID", mock.Anything, property.ID).Return(property, nil)
	profiles.On("FindByID", mock.Anything, tenant).Return(nil, domain.NewNotFound("profile"))

	uc := NewCreateLeaseUseCase(new(mockLeaseRepo), properties, new(mockRoomRepo), profiles)
	_, err := uc.Execute(context.Background(), owner, domain.LeaseInput{
		PropertyID:      &property.ID,
		TenantProfileID: &tenant,
		StartDate:       &start,
		EndDate:         &end,
		RentAmount:      &rent,
	})

	appErr := domain.AsAppError(err)
	assert.Equal(t, domain.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "tenant_profile_id")
}

func TestRefreshLeaseStatuses(t *testing.T) {
	now := time.Now().UTC()
	starting := *pendingLease(now.AddDate(0, 0, -1), now.AddDate(1, 0, 0))
	starting.Status = domain.LeaseUpcoming
	ending := *pendingLease(now.AddDate(-1, 0, 0), now.AddDate(0, 0, -2))
	ending.Status = domain.LeaseActive
	unchanged := *pendingLease(now.AddDate(0, 0, -10), now.AddDate(0, 6, 0))
	unchanged.Status = domain.LeaseActive

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	publisher := new(mockPublisher)
	leases.On("FindRefreshable", mock.Anything).Return([]domain.Lease{starting, ending, unchanged}, nil)
	leases.On("Update", mock.Anything, mock.AnythingOfType("*domain.Lease"), mock.AnythingOfType("domain.LeaseVersion")).Return(nil)
	leases.On("HasOccupyingLease", mock.Anything, ending.PropertyID).Return(false, nil)
	properties.On("UpdateStatus", mock.Anything, starting.PropertyID, domain.PropertyOccupied).Return(nil)
	properties.On("UpdateStatus", mock.Anything, ending.PropertyID, domain.PropertyAvailable).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	uc := NewRefreshLeaseStatusesUseCase(leases, properties, publisher)
	changed, err := uc.Execute(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	leases.AssertNumberOfCalls(t, "Update", 2)
	properties.AssertExpectations(t)
	publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.RoutingKey() == "lease.activated"
	}))
	publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.RoutingKey() == "lease.expired"
	}))
}

func TestRefreshLeaseStatuses_UpcomingLeaseDoesNotHoldProperty(t *testing.T) {
	now := time.Now().UTC()
	ending := *pendingLease(now.AddDate(-1, 0, 0), now.AddDate(0, 0, -2))
	ending.Status = domain.LeaseActive
	next := *pendingLease(now.AddDate(0, 1, 0), now.AddDate(1, 1, 0))
	next.PropertyID = ending.PropertyID
	next.Status = domain.LeaseUpcoming

	leases := new(mockLeaseRepo)
	properties := new(mockPropertyRepo)
	leases.On("FindRefreshable", mock.Anything).Return([]domain.Lease{ending, next}, nil)
	leases.On("Update", mock.Anything, mock.AnythingOfType("*domain.Lease"), mock.AnythingOfType("domain.LeaseVersion")).Return(nil)
	leases.On("HasOccupyingLease", mock.Anything, ending.PropertyID).Return(false, nil)
	properties.On("UpdateStatus", mock.Anything, ending.PropertyID, domain.PropertyAvailable).Return(nil)

	changed, err := NewRefreshLeaseStatusesUseCase(leases, properties, nil).Execute(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	properties.AssertExpectations(t)
	leases.AssertNotCalled(t, "HasActiveLease", mock.Anything, mock.Anything)
}

func TestListLeases_InvalidRole(t *testing.T) {
	uc := NewListLeasesUseCase(new(mockLeaseRepo))
	_, err := uc.Execute(context.Background(), uuid.New(), domain.LeaseFilter{Role: "guest"}, domain.NewPage(1, 20))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
