// Package ratelimit implements sliding-window request limiting keyed by an
// arbitrary identifier (a client address, or one shared key for a global limit).
//
// A limiter admits at most MaxRequests checks per key within any Window-long
// interval. Only admitted checks are recorded, so denied traffic does not push
// back its own recovery. Capacity exhaustion is reported through Result and is
// never an error.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tgnotify/internal/shared/errors"
	"tgnotify/internal/shared/logger"
)

const (
	// GlobalKey is the key every identifier collapses onto when PerKey is false.
	GlobalKey = "global"

	DefaultMessage         = "Too many requests, please try again later."
	DefaultCleanupInterval = time.Minute

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is fixed for the lifetime of a limiter.
type Config struct {
	MaxRequests int
	Window      time.Duration
	// PerKey gives every identifier independent state. When false all checks
	// share GlobalKey. The zero value is false, so use DefaultConfig to get the
	// per-key default.
	PerKey bool
	// Message is shown to denied callers; it plays no part in admission.
	Message string
}

// DefaultConfig returns a per-key config with the default denial message.
func DefaultConfig(maxRequests int, window time.Duration) Config {
	return Config{
		MaxRequests: maxRequests,
		Window:      window,
		PerKey:      true,
		Message:     DefaultMessage,
	}
}

func (c Config) validate() (Config, error) {
	if c.MaxRequests <= 0 {
		return c, errors.NewValidationError("invalid rate limit config",
			fmt.Sprintf("max requests must be positive, got %d", c.MaxRequests))
	}
	if c.Window <= 0 {
		return c, errors.NewValidationError("invalid rate limit config",
			fmt.Sprintf("window must be positive, got %s", c.Window))
	}
	if c.Message == "" {
		c.Message = DefaultMessage
	}
	return c, nil
}

// key resolves the effective store key for an identifier.
func (c Config) key(identifier string) string {
	if !c.PerKey {
		return GlobalKey
	}
	return identifier
}

// Result is the outcome of one Check.
type Result struct {
	Allowed bool
	// RetryAfter is the advisory wait in whole seconds; at least 1 when denied, 0 when allowed.
	RetryAfter int
	Limit      int
	Remaining  int
}

// Usage is a read-only snapshot of one key.
type Usage struct {
	Count int
	Limit int
	// ResetAt is when the oldest counted request leaves the window. Advisory.
	ResetAt time.Time
}

// Remaining returns how many more requests the key may make right now.
func (u Usage) Remaining() int {
	if u.Count >= u.Limit {
		return 0
	}
	return u.Limit - u.Count
}

// RateLimiter is what the HTTP layer and the notification service depend on.
type RateLimiter interface {
	Check(ctx context.Context, identifier string) (Result, error)
	GetUsage(ctx context.Context, identifier string) (Usage, error)
	Reset(ctx context.Context, identifier string) error
	Config() Config
	// Destroy stops background work and drops local state. Safe to call repeatedly.
	Destroy()
}

type options struct {
	name            string
	now             func() time.Time
	cleanupInterval time.Duration
	logger          logger.Interface
	metrics         *Metrics
}

// Option customizes a limiter.
type Option func(*options)

// WithName labels the limiter in logs, metrics and Redis keys.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCleanupInterval sets the purge period. It is independent of the window.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

func WithLogger(log logger.Interface) Option {
	return func(o *options) { o.logger = log }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{
		name:            "default",
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
		logger:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("limiter", o.name)
	return o
}

// New builds a limiter for the given backend. The redis backend needs a client.
func New(backend string, cfg Config, client *redis.Client, opts ...Option) (RateLimiter, error) {
	switch backend {
	case BackendMemory, "":
		return NewSlidingWindowLimiter(cfg, opts...)
	case BackendRedis:
		if client == nil {
			return nil, errors.NewValidationError("invalid rate limit config", "redis backend requires a redis client")
		}
		return NewRedisRateLimiter(client, cfg, opts...)
	default:
		return nil, errors.NewValidationError("invalid rate limit config",
			fmt.Sprintf("unknown backend %q", backend))
	}
}
