package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestLease(status LeaseStatus) *Lease {
	return &Lease{
		ID:                uuid.New(),
		PropertyID:        uuid.New(),
		LandlordProfileID: uuid.New(),
		TenantProfileID:   uuid.New(),
		StartDate:         day(2026, 3, 1),
		EndDate:           day(2027, 2, 28),
		RentAmount:        900,
		RentCurrency:      "EUR",
		Status:            status,
	}
}

func TestLease_DeriveStatus(t *testing.T) {
	l := newTestLease(LeasePending)

	tests := []struct {
		name string
		now  time.Time
		want LeaseStatus
	}{
		{"before start", day(2026, 2, 10), LeaseUpcoming},
		{"start day", day(2026, 3, 1).Add(15 * time.Hour), LeaseActive},
		{"middle", day(2026, 8, 1), LeaseActive},
		{"last day", day(2027, 2, 28).Add(23 * time.Hour), LeaseActive},
		{"after end", day(2027, 3, 1), LeaseExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.DeriveStatus(tt.now))
		})
	}
}

func TestLease_SignBothParties(t *testing.T) {
	l := newTestLease(LeasePending)
	now := day(2026, 2, 1)

	require.NoError(t, l.Sign(l.LandlordProfileID, now))
	assert.Equal(t, LeasePending, l.Status)
	assert.NotNil(t, l.LandlordSignedAt)

	require.NoError(t, l.Sign(l.TenantProfileID, now))
	assert.Equal(t, LeaseUpcoming, l.Status)
	assert.True(t, l.FullySigned())
}

func TestLease_SignActiveWhenStarted(t *testing.T) {
	l := newTestLease(LeasePending)
	now := day(2026, 4, 1)

	require.NoError(t, l.Sign(l.TenantProfileID, now))
	require.NoError(t, l.Sign(l.LandlordProfileID, now))
	assert.Equal(t, LeaseActive, l.Status)
}

func TestLease_SignErrors(t *testing.T) {
	t.Run("draft cannot be signed", func(t *testing.T) {
		l := newTestLease(LeaseDraft)
		err := l.Sign(l.TenantProfileID, time.Now())
		assert.True(t, errors.Is(err, ErrInvalidStatus))
	})

	t.Run("stranger cannot sign", func(t *testing.T) {
		l := newTestLease(LeasePending)
		err := l.Sign(uuid.New(), time.Now())
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("double signature", func(t *testing.T) {
		l := newTestLease(LeasePending)
		require.NoError(t, l.Sign(l.TenantProfileID, time.Now()))
		err := l.Sign(l.TenantProfileID, time.Now())
		assert.True(t, errors.Is(err, ErrConflict))
	})
}

func TestLease_SubmitAndTerminate(t *testing.T) {
	l := newTestLease(LeaseDraft)
	require.NoError(t, l.Submit(time.Now()))
	assert.Equal(t, LeasePending, l.Status)

	err := l.Submit(time.Now())
	assert.True(t, errors.Is(err, ErrInvalidStatus))

	err = l.Terminate("  ", time.Now())
	assert.True(t, errors.Is(err, ErrValidation))

	require.NoError(t, l.Terminate("tenant moved abroad", time.Now()))
	assert.Equal(t, LeaseTerminated, l.Status)
	assert.NotNil(t, l.TerminatedAt)

	err = l.Terminate("again", time.Now())
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestLease_Refresh(t *testing.T) {
	upcoming := newTestLease(LeaseUpcoming)
	assert.True(t, upcoming.Refresh(day(2026, 3, 2)))
	assert.Equal(t, LeaseActive, upcoming.Status)

	active := newTestLease(LeaseActive)
	assert.False(t, active.Refresh(day(2026, 5, 1)))
	assert.True(t, active.Refresh(day(2027, 3, 5)))
	assert.Equal(t, LeaseExpired, active.Status)

	draft := newTestLease(LeaseDraft)
	assert.False(t, draft.Refresh(day(2030, 1, 1)))
	assert.Equal(t, LeaseDraft, draft.Status)
}

func TestLeaseInput_Validate(t *testing.T) {
	start := day(2026, 5, 1)
	end := day(2026, 4, 1)
	due := 31
	rent := 0.0

	err := LeaseInput{StartDate: &start, EndDate: &end, PaymentDueDay: &due, RentAmount: &rent}.Validate(false)
	require.Error(t, err)

	appErr := AsAppError(err)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "end_date")
	assert.Contains(t, appErr.Details, "payment_due_day")
	assert.Contains(t, appErr.Details, "rent.amount")
}

func TestLease_VersionIsTakenBeforeSigning(t *testing.T) {
	l := newTestLease(LeasePending)
	prev := l.Version()

	require.NoError(t, l.Sign(l.TenantProfileID, day(2026, 2, 1)))

	assert.Nil(t, prev.TenantSignedAt)
	assert.Equal(t, LeasePending, prev.Status)
	assert.NotEqual(t, prev, l.Version())
}
