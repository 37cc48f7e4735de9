package routes

import (
	"github.com/gin-gonic/gin"

	"tgnotify/internal/interfaces/http/handlers"
	"tgnotify/internal/interfaces/http/middleware"
)

type AdminRouteConfig struct {
	NotificationHandler *handlers.NotificationHandler
	RateLimitHandler    *handlers.RateLimitHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupAdminRoutes(engine *gin.Engine, config *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(config.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/deliveries", config.NotificationHandler.ListDeliveries)

		admin.GET("/ratelimit/:limiter/:key", config.RateLimitHandler.GetUsage)
		admin.DELETE("/ratelimit/:limiter/:key", config.RateLimitHandler.Reset)
	}
}
