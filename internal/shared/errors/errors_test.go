package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("who"), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), ErrorTypeForbidden, http.StatusForbidden},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
		{"too many", NewTooManyRequestsError("slow down", 3), ErrorTypeTooManyRequests, http.StatusTooManyRequests},
		{"unavailable", NewServiceUnavailableError("busy", 2), ErrorTypeServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "validation_error: bad input", NewValidationError("bad input").Error())
	assert.Equal(t, "validation_error: bad input (message is required)",
		NewValidationError("bad input", "message is required").Error())
}

func TestGetAppErrorUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("notify: %w", NewServiceUnavailableError("busy", 7))

	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, 7, appErr.RetryAfter)
	assert.True(t, IsThrottled(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.Nil(t, GetAppError(fmt.Errorf("plain")))
}
