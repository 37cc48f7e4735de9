package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"tgnotify/internal/application/notification"
	"tgnotify/internal/application/notification/usecases"
	"tgnotify/internal/infrastructure/auth"
	"tgnotify/internal/infrastructure/config"
	"tgnotify/internal/infrastructure/database"
	"tgnotify/internal/infrastructure/ratelimit"
	"tgnotify/internal/infrastructure/repository"
	"tgnotify/internal/infrastructure/telegram"
	httpRouter "tgnotify/internal/interfaces/http"
	sharedConfig "tgnotify/internal/shared/config"
	"tgnotify/internal/shared/goroutine"
	"tgnotify/internal/shared/logger"
	"tgnotify/internal/shared/services/markdown"
	"tgnotify/internal/shared/version"
)

var (
	env        string
	configFile string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the tgnotify HTTP server that forwards submissions to Telegram.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := LoadConfig(configFile, env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.NewLogger()
	log.Infow("starting server",
		"environment", env,
		"version", version.Current(),
		"ratelimit_backend", cfg.RateLimit.Backend)

	if cfg.Server.Mode == gin.ReleaseMode && !version.IsRelease(version.Version) {
		log.Warnw("running a non-release build in release mode", "version", version.Version)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var redisClient *redis.Client
	if cfg.RateLimit.Backend == ratelimit.BackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			// The limiter falls back to memory per call, so an unreachable Redis is not fatal.
			log.Warnw("failed to connect to redis", "address", cfg.Redis.GetAddr(), "error", err)
		} else {
			log.Infow("redis connection established", "address", cfg.Redis.GetAddr())
		}
		cancel()
	}

	limiterMetrics := ratelimit.NewMetricsWithRegistry(registry)
	clientLimiter, err := newLimiter(cfg, httpRouter.LimiterClient, cfg.RateLimit.Client, redisClient, limiterMetrics, log)
	if err != nil {
		return err
	}
	defer clientLimiter.Destroy()

	globalLimiter, err := newLimiter(cfg, httpRouter.LimiterGlobal, cfg.RateLimit.Global, redisClient, limiterMetrics, log)
	if err != nil {
		return err
	}
	defer globalLimiter.Destroy()

	var deliveries usecases.DeliveryRepository
	if cfg.Database.Path != "" {
		if err := database.Init(&cfg.Database); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		deliveries = repository.NewDeliveryRepository(database.Get())
	} else {
		log.Warnw("database path is empty, delivery log disabled")
	}

	botService := telegram.NewBotService(cfg.Telegram)
	checkBot(botService, log)

	service := notification.NewService(
		botService,
		globalLimiter,
		deliveries,
		markdown.NewMarkdownService(),
		log.Named("notification"),
	)

	jwtService := auth.NewJWTService(cfg.Auth.AdminJWTSecret)
	if !jwtService.Enabled() {
		log.Warnw("admin JWT secret is empty, admin API disabled")
	}

	router, err := httpRouter.NewRouter(httpRouter.Dependencies{
		Config:          cfg,
		Service:         service,
		ClientLimiter:   clientLimiter,
		GlobalLimiter:   globalLimiter,
		JWTService:      jwtService,
		MetricsRegistry: registry,
		Logger:          log.Named("http"),
	})
	if err != nil {
		return err
	}
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

// LoadConfig reads an explicit file when path is set and the default search path otherwise.
func LoadConfig(path, env string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path, env)
	}
	return config.Load(env)
}

func newLimiter(
	cfg *config.Config,
	name string,
	lc sharedConfig.LimiterConfig,
	client *redis.Client,
	metrics *ratelimit.Metrics,
	log logger.Interface,
) (ratelimit.RateLimiter, error) {
	limiter, err := ratelimit.New(cfg.RateLimit.Backend, ratelimit.Config{
		MaxRequests: lc.MaxRequests,
		Window:      lc.Window,
		PerKey:      lc.PerKey,
		Message:     lc.Message,
	}, client,
		ratelimit.WithName(name),
		ratelimit.WithLogger(log.Named("ratelimit")),
		ratelimit.WithMetrics(metrics),
		ratelimit.WithCleanupInterval(cfg.RateLimit.CleanupInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s rate limiter: %w", name, err)
	}

	log.Infow("rate limiter configured",
		"limiter", name,
		"max_requests", lc.MaxRequests,
		"window", lc.Window,
		"per_key", lc.PerKey)
	return limiter, nil
}

// checkBot verifies the bot credentials. A failure is logged, not fatal: the
// bot may be configured later and submissions then fail with 503.
func checkBot(bot *telegram.BotService, log logger.Interface) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	me, err := bot.GetMe(ctx)
	if err != nil {
		log.Warnw("telegram bot check failed", "error", err)
		return
	}
	log.Infow("telegram bot ready", "username", me.Username, "chat_id", bot.DefaultChatID())
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
