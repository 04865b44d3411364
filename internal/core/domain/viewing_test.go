package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ViewingStatus
		want     bool
	}{
		{ViewingPending, ViewingApproved, true},
		{ViewingPending, ViewingDeclined, true},
		{ViewingPending, ViewingCancelled, true},
		{ViewingApproved, ViewingCancelled, true},
		{ViewingApproved, ViewingDeclined, false},
		{ViewingApproved, ViewingPending, false},
		{ViewingDeclined, ViewingApproved, false},
		{ViewingCancelled, ViewingPending, false},
		{ViewingCancelled, ViewingApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 7, 0, 0, time.UTC)

	assert.NoError(t, ValidateSchedule(time.Date(2026, 6, 2, 14, 30, 0, 0, time.UTC), now))
	assert.True(t, errors.Is(ValidateSchedule(time.Date(2026, 6, 2, 14, 15, 0, 0, time.UTC), now), ErrValidation))
	assert.True(t, errors.Is(ValidateSchedule(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), now), ErrValidation))
	assert.True(t, errors.Is(ValidateSchedule(time.Time{}, now), ErrValidation))
}

func TestNewViewingRequest_OwnerForbidden(t *testing.T) {
	owner := uuid.New()
	p := &Property{ID: uuid.New(), OwnerProfileID: owner}
	now := time.Now().UTC()

	_, err := NewViewingRequest(p, owner, now.Add(48*time.Hour).Truncate(ViewingSlot), "", now)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestViewingRequest_Lifecycle(t *testing.T) {
	owner, requester := uuid.New(), uuid.New()
	p := &Property{ID: uuid.New(), OwnerProfileID: owner}
	now := time.Now().UTC()

	v, err := NewViewingRequest(p, requester, now.Add(72*time.Hour).Truncate(ViewingSlot), " hello ", now)
	require.NoError(t, err)
	assert.Equal(t, ViewingPending, v.Status)
	assert.Equal(t, "hello", v.Message)
	assert.True(t, v.CanView(owner))
	assert.True(t, v.CanView(requester))
	assert.False(t, v.CanView(uuid.New()))

	assert.True(t, errors.Is(v.Approve(requester, "", now), ErrForbidden))

	require.NoError(t, v.Approve(owner, "see you", now))
	assert.Equal(t, ViewingApproved, v.Status)
	assert.NotNil(t, v.DecidedAt)

	err = v.Decline(owner, "", now)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	appErr := AsAppError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "approved", appErr.Details["from"])

	assert.True(t, errors.Is(v.Cancel(owner, now), ErrForbidden))
	require.NoError(t, v.Cancel(requester, now))
	assert.Equal(t, ViewingCancelled, v.Status)
	require.NotNil(t, v.CancelledBy)
	assert.Equal(t, requester, *v.CancelledBy)
}
