package middleware

import (
	"github.com/gin-gonic/gin"

	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/id"
)

const maxRequestIDLength = 64

// RequestID propagates a caller-supplied X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = id.NewRequestID()
			c.Request.Header.Set(constants.HeaderXRequestID, requestID)
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderXRequestID, requestID)
		c.Next()
	}
}
