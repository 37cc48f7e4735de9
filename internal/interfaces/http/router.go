package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tgnotify/internal/application/notification"
	"tgnotify/internal/infrastructure/auth"
	"tgnotify/internal/infrastructure/config"
	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/interfaces/http/handlers"
	"tgnotify/internal/interfaces/http/middleware"
	"tgnotify/internal/interfaces/http/routes"
	"tgnotify/internal/shared/constants"
	"tgnotify/internal/shared/logger"
)

// Limiter names as they appear in admin URLs and metrics.
const (
	LimiterClient = "client"
	LimiterGlobal = "global"
)

// Dependencies groups what the router needs from the composition root.
type Dependencies struct {
	Config          *config.Config
	Service         *notification.Service
	ClientLimiter   ratelimit.RateLimiter
	GlobalLimiter   ratelimit.RateLimiter
	JWTService      *auth.JWTService
	MetricsRegistry *prometheus.Registry
	Logger          logger.Interface
}

// Router represents the HTTP router configuration
type Router struct {
	engine              *gin.Engine
	cfg                 *config.Config
	registry            *prometheus.Registry
	httpMetrics         *middleware.HTTPMetrics
	logger              logger.Interface
	healthHandler       *handlers.HealthHandler
	notificationHandler *handlers.NotificationHandler
	rateLimitHandler    *handlers.RateLimitHandler
	clientRateLimit     *middleware.RateLimitMiddleware
	authMiddleware      *middleware.AuthMiddleware
}

// NewRouter creates a new router. Forwarding headers are trusted only from the
// configured proxies; with none configured the socket address is the client.
func NewRouter(deps Dependencies) (*Router, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := &Router{
		engine:              gin.New(),
		cfg:                 deps.Config,
		registry:            deps.MetricsRegistry,
		logger:              log,
		healthHandler:       handlers.NewHealthHandler(),
		notificationHandler: handlers.NewNotificationHandler(deps.Service, log.Named("notification")),
		rateLimitHandler: handlers.NewRateLimitHandler(map[string]ratelimit.RateLimiter{
			LimiterClient: deps.ClientLimiter,
			LimiterGlobal: deps.GlobalLimiter,
		}, log.Named("ratelimit")),
		clientRateLimit: middleware.NewRateLimitMiddleware(deps.ClientLimiter, log.Named("ratelimit")),
		authMiddleware:  middleware.NewAuthMiddleware(deps.JWTService, log.Named("auth")),
	}

	r.engine.RemoteIPHeaders = []string{constants.HeaderXForwardedFor, constants.HeaderXRealIP}
	if err := r.engine.SetTrustedProxies(r.cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid server.trusted_proxies: %w", err)
	}

	if r.registry != nil && r.cfg.Metrics.Enabled {
		r.httpMetrics = middleware.NewHTTPMetrics(r.registry)
	}

	return r, nil
}

// SetupRoutes configures all routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Logger(r.logger))
	if r.httpMetrics != nil {
		r.engine.Use(middleware.Metrics(r.httpMetrics))
	}
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", r.healthHandler.HealthCheck)
	if r.httpMetrics != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}

	routes.SetupNotificationRoutes(r.engine, &routes.NotificationRouteConfig{
		NotificationHandler: r.notificationHandler,
		ClientRateLimit:     r.clientRateLimit,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		NotificationHandler: r.notificationHandler,
		RateLimitHandler:    r.rateLimitHandler,
		AuthMiddleware:      r.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
