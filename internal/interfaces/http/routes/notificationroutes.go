package routes

import (
	"github.com/gin-gonic/gin"

	"tgnotify/internal/interfaces/http/handlers"
	"tgnotify/internal/interfaces/http/middleware"
)

type NotificationRouteConfig struct {
	NotificationHandler *handlers.NotificationHandler
	// ClientRateLimit is applied per client before the global budget is consulted.
	ClientRateLimit *middleware.RateLimitMiddleware
}

func SetupNotificationRoutes(engine *gin.Engine, config *NotificationRouteConfig) {
	api := engine.Group("/api")
	api.Use(config.ClientRateLimit.Limit())
	{
		api.POST("/notify", config.NotificationHandler.Notify)
		api.POST("/bug-report", config.NotificationHandler.BugReport)
	}
}
