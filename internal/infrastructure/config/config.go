package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	sharedConfig "tgnotify/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Telegram  sharedConfig.TelegramConfig  `mapstructure:"telegram"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Metrics   sharedConfig.MetricsConfig   `mapstructure:"metrics"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from configs/config.yaml and TGNOTIFY_* environment variables.
// A missing config file is not an error: defaults plus environment are enough to run.
func Load(env string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return finish(v, env)
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string, env string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v, env)
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TGNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper, env string) (*Config, error) {
	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.trusted_proxies", []string{})

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", 30*time.Second)

	// Rate limit defaults: 5 submissions per client per minute, and 30 messages
	// per second overall to stay under the Bot API ceiling.
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.cleanup_interval", time.Minute)
	v.SetDefault("ratelimit.client.max_requests", 5)
	v.SetDefault("ratelimit.client.window", time.Minute)
	v.SetDefault("ratelimit.client.per_key", true)
	v.SetDefault("ratelimit.client.message", "Too many requests, please try again later.")
	v.SetDefault("ratelimit.global.max_requests", 30)
	v.SetDefault("ratelimit.global.window", time.Second)
	v.SetDefault("ratelimit.global.per_key", false)
	v.SetDefault("ratelimit.global.message", "Notification service is busy, please try again later.")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Database defaults
	v.SetDefault("database.path", "data/tgnotify.db")

	// Auth defaults
	v.SetDefault("auth.admin_jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}
