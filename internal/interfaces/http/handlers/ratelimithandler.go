package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/utils"
)

// RateLimitUsageResponse is one key's current window.
type RateLimitUsageResponse struct {
	Limiter   string    `json:"limiter"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	WindowMS  int64     `json:"window_ms"`
	PerKey    bool      `json:"per_key"`
}

// RateLimitHandler exposes usage inspection and reset for the named limiters.
type RateLimitHandler struct {
	limiters map[string]ratelimit.RateLimiter
	logger   logger.Interface
}

func NewRateLimitHandler(limiters map[string]ratelimit.RateLimiter, logger logger.Interface) *RateLimitHandler {
	return &RateLimitHandler{
		limiters: limiters,
		logger:   logger,
	}
}

// GetUsage godoc
// @Summary Inspect a rate limit key
// @Security Bearer
// @Tags admin
// @Produce json
// @Param limiter path string true "client or global"
// @Param key path string true "Client key, ignored by the global limiter"
// @Success 200 {object} utils.APIResponse{data=RateLimitUsageResponse}
// @Failure 404 {object} utils.APIResponse "Unknown limiter"
// @Router /admin/ratelimit/{limiter}/{key} [get]
func (h *RateLimitHandler) GetUsage(c *gin.Context) {
	name, limiter, ok := h.resolve(c)
	if !ok {
		return
	}
	key := c.Param("key")

	usage, err := limiter.GetUsage(c.Request.Context(), key)
	if err != nil {
		h.logger.Errorw("failed to read rate limit usage", "limiter", name, "key", key, "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("Failed to read rate limit usage"))
		return
	}

	cfg := limiter.Config()
	utils.SuccessResponse(c, http.StatusOK, "", &RateLimitUsageResponse{
		Limiter:   name,
		Key:       key,
		Count:     usage.Count,
		Limit:     usage.Limit,
		Remaining: usage.Remaining(),
		ResetAt:   usage.ResetAt,
		WindowMS:  cfg.Window.Milliseconds(),
		PerKey:    cfg.PerKey,
	})
}

// Reset godoc
// @Summary Reset a rate limit key
// @Security Bearer
// @Tags admin
// @Param limiter path string true "client or global"
// @Param key path string true "Client key"
// @Success 204 "Reset"
// @Router /admin/ratelimit/{limiter}/{key} [delete]
func (h *RateLimitHandler) Reset(c *gin.Context) {
	name, limiter, ok := h.resolve(c)
	if !ok {
		return
	}
	key := c.Param("key")

	if err := limiter.Reset(c.Request.Context(), key); err != nil {
		h.logger.Errorw("failed to reset rate limit key", "limiter", name, "key", key, "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("Failed to reset rate limit"))
		return
	}

	h.logger.Infow("rate limit key reset", "limiter", name, "key", key, "admin", c.GetString(constants.ContextKeyAdmin))
	utils.NoContentResponse(c)
}

func (h *RateLimitHandler) resolve(c *gin.Context) (string, ratelimit.RateLimiter, bool) {
	name := c.Param("limiter")
	limiter, ok := h.limiters[name]
	if !ok || limiter == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("Unknown limiter", name))
		return "", nil, false
	}
	return name, limiter, true
}
