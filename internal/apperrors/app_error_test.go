package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "with details",
			appErr:   NotFound("Activity not found", "id=a1"),
			expected: "NOT_FOUND: Activity not found (id=a1)",
		},
		{
			name:     "without details",
			appErr:   Internal("Internal error", ""),
			expected: "INTERNAL_ERROR: Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")

	appErr := Wrap(ErrCodeInternal, "query failed", cause)

	assert.Equal(t, "connection reset", appErr.Details)
	assert.True(t, errors.Is(appErr, cause))
}

func TestAsAppError_FindsWrapped(t *testing.T) {
	appErr := Forbidden("Tab not permitted", "")
	wrapped := fmt.Errorf("update survey: %w", appErr)

	assert.Same(t, appErr, AsAppError(wrapped))
	assert.Equal(t, ErrCodeForbidden, GetCode(wrapped))
	assert.Nil(t, AsAppError(errors.New("plain")))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeAlreadyExists))
	assert.Equal(t, http.StatusTooManyRequests, GetHTTPStatus(ErrCodeRateLimited))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("UNKNOWN"))
}
