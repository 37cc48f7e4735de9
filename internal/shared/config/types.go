package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// TrustedProxies lists the addresses or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means the socket address is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	// APIBaseURL overrides https://api.telegram.org, mainly for tests and proxies.
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LimiterConfig mirrors ratelimit.Config in its config-file form.
type LimiterConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	PerKey      bool          `mapstructure:"per_key"`
	Message     string        `mapstructure:"message"`
}

type RateLimitConfig struct {
	// Backend is "memory" or "redis".
	Backend         string        `mapstructure:"backend"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Client          LimiterConfig `mapstructure:"client"`
	Global          LimiterConfig `mapstructure:"global"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type DatabaseConfig struct {
	// Path of the sqlite file holding the delivery log.
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	// AdminJWTSecret signs admin tokens. Empty disables the admin API.
	AdminJWTSecret string        `mapstructure:"admin_jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
