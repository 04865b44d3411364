package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsByCode(t *testing.T) {
	err := fmt.Errorf("loading property: %w", NewNotFound("property"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestAsAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"time conflict", NewTimeConflict("slot taken"), http.StatusConflict, CodeTimeConflict},
		{"wrapped validation", fmt.Errorf("x: %w", NewValidation("bad", nil)), http.StatusBadRequest, CodeValidation},
		{"payment", NewPaymentError("declined", errors.New("card")), http.StatusPaymentRequired, CodePaymentError},
		{"upstream", NewUpstreamError("oxy", errors.New("timeout")), http.StatusBadGateway, CodeUpstreamError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := AsAppError(tt.err)
			assert.Equal(t, tt.wantStatus, appErr.Status)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestAsAppError_InternalHidesCause(t *testing.T) {
	appErr := AsAppError(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", appErr.Message)
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{}
	assert.NoError(t, errs.Err())

	errs.Add("title", "is required")
	errs.Add("title", "second message is ignored")
	err := errs.Err()

	appErr := AsAppError(err)
	assert.Equal(t, CodeValidation, appErr.Code)
	assert.Equal(t, "is required", appErr.Details["title"])
}
