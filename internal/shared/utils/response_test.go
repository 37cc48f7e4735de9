package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgnotify/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorResponseWithError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ErrorResponseWithError(c, errors.NewValidationError("Validation failed", "message is required"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "validation_error", resp.Error.Type)
		assert.Equal(t, "message is required", resp.Error.Details)
		assert.Empty(t, w.Header().Get("Retry-After"))
	})

	t.Run("throttled error sets Retry-After", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ErrorResponseWithError(c, errors.NewServiceUnavailableError("busy", 4))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "4", w.Header().Get("Retry-After"))
		assert.Equal(t, 4, decode(t, w).Error.RetryAfter)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		ErrorResponseWithError(c, fmt.Errorf("dial tcp: secret host"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "internal_error", resp.Error.Type)
		assert.NotContains(t, w.Body.String(), "secret host")
	})
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessResponse(c, http.StatusOK, "ok", map[string]int{"parts": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)
}
