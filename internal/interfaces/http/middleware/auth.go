package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tgnotify/internal/infrastructure/auth"
	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAdmin accepts only bearer tokens carrying the admin role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.jwtService.Enabled() {
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "admin API is disabled")
			c.Abort()
			return
		}

		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing authorization token"))
			c.Abort()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.VerifyAdmin(token)
		if stderrors.Is(err, auth.ErrNotAdmin) {
			m.logger.Warnw("non-admin token rejected", "path", c.Request.URL.Path)
			utils.ErrorResponseWithError(c, errors.NewForbiddenError(constants.ErrMsgForbidden))
			c.Abort()
			return
		}
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdmin, claims.Subject)
		c.Next()
	}
}
