package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/utils"
)

const unknownClient = "unknown"

// RateLimitMiddleware enforces a sliding-window limit per client address.
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimiter
	logger  logger.Interface
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimiter, logger logger.Interface) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit returns a gin middleware that checks the client key before the handler
// runs. Denied requests get 429 with Retry-After. Limiter backend errors let the
// request through.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)
		c.Set(constants.ContextKeyClientKey, key)

		ctx := c.Request.Context()
		cfg := m.limiter.Config()

		result, err := m.limiter.Check(ctx, key)
		if err != nil {
			m.logger.Errorw("rate limit check failed, allowing request",
				"error", err,
				"client", key,
			)
			c.Next()
			return
		}

		if !result.Allowed {
			m.logger.Warnw("rate limit exceeded",
				"client", key,
				"path", c.Request.URL.Path,
				"retry_after", result.RetryAfter,
			)

			c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(cfg.MaxRequests))
			c.Header(constants.HeaderRateLimitRemaining, "0")
			if usage, err := m.limiter.GetUsage(ctx, key); err == nil {
				c.Header(constants.HeaderRateLimitReset, strconv.FormatInt(usage.ResetAt.Unix(), 10))
			}
			utils.ErrorResponseWithError(c, errors.NewTooManyRequestsError(cfg.Message, result.RetryAfter))
			c.Abort()
			return
		}

		usage, err := m.limiter.GetUsage(ctx, key)
		if err != nil {
			m.logger.Warnw("failed to read rate limit usage", "error", err, "client", key)
		} else {
			c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(usage.Limit))
			c.Header(constants.HeaderRateLimitRemaining, strconv.Itoa(usage.Remaining()))
			c.Header(constants.HeaderRateLimitReset, strconv.FormatInt(usage.ResetAt.Unix(), 10))
		}

		c.Next()
	}
}

// ClientKey resolves the rate-limit key for a request. Forwarding headers are
// honored only when the peer is one of the engine's trusted proxies, so an
// untrusted caller cannot rotate its key by rewriting them.
func ClientKey(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return unknownClient
}
