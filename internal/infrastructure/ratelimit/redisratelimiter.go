package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"tgnotify/internal/shared/logger"
)

// checkScript trims expired members, then either denies with the oldest score
// or records now. Scores are unix milliseconds. Returns {allowed, count, oldest}.
var checkScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisRateLimiter shares sliding-window state between instances through one
// sorted set per key. When Redis fails it degrades to a local in-memory limiter
// with the same config rather than rejecting traffic.
type RedisRateLimiter struct {
	client   *redis.Client
	cfg      Config
	name     string
	now      func() time.Time
	logger   logger.Interface
	metrics  *Metrics
	fallback *SlidingWindowLimiter
	seq      atomic.Uint64
}

func NewRedisRateLimiter(client *redis.Client, cfg Config, opts ...Option) (*RedisRateLimiter, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	fallback, err := NewSlidingWindowLimiter(cfg, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &RedisRateLimiter{
		client:   client,
		cfg:      cfg,
		name:     o.name,
		now:      o.now,
		logger:   o.logger,
		metrics:  o.metrics,
		fallback: fallback,
	}, nil
}

func (l *RedisRateLimiter) Config() Config {
	return l.cfg
}

func (l *RedisRateLimiter) Check(ctx context.Context, identifier string) (Result, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.cfg.Window.Milliseconds()
	member := fmt.Sprintf("%d-%d", now.UnixNano(), l.seq.Add(1))

	vals, err := checkScript.Run(ctx, l.client,
		[]string{l.redisKey(identifier)},
		nowMs, windowMs, l.cfg.MaxRequests, member,
	).Int64Slice()
	if err != nil || len(vals) != 3 {
		l.logger.Warnw("redis rate limit check failed, falling back to in-memory",
			"error", err,
			"key", identifier,
		)
		l.metrics.observeBackendError(l.name)
		return l.fallback.Check(ctx, identifier)
	}

	count := int(vals[1])
	if vals[0] == 0 {
		retryAfter := retryAfterSeconds(time.Duration(vals[2]+windowMs-nowMs) * time.Millisecond)
		l.metrics.observeCheck(l.name, false)
		return Result{
			Allowed:    false,
			RetryAfter: retryAfter,
			Limit:      l.cfg.MaxRequests,
		}, nil
	}

	l.metrics.observeCheck(l.name, true)
	return Result{
		Allowed:   true,
		Limit:     l.cfg.MaxRequests,
		Remaining: l.cfg.MaxRequests - count,
	}, nil
}

func (l *RedisRateLimiter) GetUsage(ctx context.Context, identifier string) (Usage, error) {
	now := l.now()
	key := l.redisKey(identifier)
	lower := "(" + strconv.FormatInt(now.Add(-l.cfg.Window).UnixMilli(), 10)

	pipe := l.client.Pipeline()
	countCmd := pipe.ZCount(ctx, key, lower, "+inf")
	oldestCmd := pipe.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min:   lower,
		Max:   "+inf",
		Count: 1,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warnw("redis rate limit usage failed, falling back to in-memory",
			"error", err,
			"key", identifier,
		)
		l.metrics.observeBackendError(l.name)
		return l.fallback.GetUsage(ctx, identifier)
	}

	usage := Usage{
		Count:   int(countCmd.Val()),
		Limit:   l.cfg.MaxRequests,
		ResetAt: now.Add(l.cfg.Window),
	}
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		usage.ResetAt = time.UnixMilli(int64(oldest[0].Score)).Add(l.cfg.Window)
	}

	return usage, nil
}

func (l *RedisRateLimiter) Reset(ctx context.Context, identifier string) error {
	// The fallback may hold state from an earlier outage.
	_ = l.fallback.Reset(ctx, identifier)

	if err := l.client.Del(ctx, l.redisKey(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit key %s: %w", identifier, err)
	}
	return nil
}

// Destroy releases the local fallback. Shared Redis state is left alone.
func (l *RedisRateLimiter) Destroy() {
	l.fallback.Destroy()
}

func (l *RedisRateLimiter) redisKey(identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.name, l.cfg.key(identifier))
}
