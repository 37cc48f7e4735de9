package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func newTestRedisLimiter(t *testing.T, client *redis.Client, cfg Config, opts ...Option) *RedisRateLimiter {
	t.Helper()
	l, err := NewRedisRateLimiter(client, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(l.Destroy)
	return l
}

func TestRedisRateLimiter_Check(t *testing.T) {
	client := setupTestRedis(t)
	clock := newFakeClock()
	l := newTestRedisLimiter(t, client, DefaultConfig(5, time.Second), WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		res := mustCheck(t, l, "1.2.3.4")
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.Remaining)
		clock.Advance(time.Millisecond)
	}

	res := mustCheck(t, l, "1.2.3.4")
	assert.False(t, res.Allowed, "6th request should be denied")
	assert.Equal(t, 1, res.RetryAfter)

	assert.True(t, mustCheck(t, l, "5.6.7.8").Allowed)

	clock.Advance(time.Second)
	assert.True(t, mustCheck(t, l, "1.2.3.4").Allowed)
}

func TestRedisRateLimiter_GlobalKey(t *testing.T) {
	client := setupTestRedis(t)
	cfg := DefaultConfig(2, time.Minute)
	cfg.PerKey = false
	l := newTestRedisLimiter(t, client, cfg, WithName("global"))

	assert.True(t, mustCheck(t, l, "a").Allowed)
	assert.True(t, mustCheck(t, l, "b").Allowed)
	assert.False(t, mustCheck(t, l, "c").Allowed)

	exists, err := client.Exists(context.Background(), "ratelimit:global:global").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestRedisRateLimiter_UsageAndReset(t *testing.T) {
	client := setupTestRedis(t)
	clock := newFakeClock()
	l := newTestRedisLimiter(t, client, DefaultConfig(3, time.Minute), WithClock(clock.Now))
	ctx := context.Background()

	usage, err := l.GetUsage(ctx, "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Count)
	assert.Equal(t, clock.Now().Add(time.Minute), usage.ResetAt)

	first := clock.Now()
	mustCheck(t, l, "k")
	clock.Advance(time.Second)
	mustCheck(t, l, "k")

	usage, err = l.GetUsage(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Count)
	assert.Equal(t, 3, usage.Limit)
	assert.Equal(t, first.Add(time.Minute).UnixMilli(), usage.ResetAt.UnixMilli())

	require.NoError(t, l.Reset(ctx, "k"))
	require.NoError(t, l.Reset(ctx, "k"))

	usage, err = l.GetUsage(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Count)
}

func TestRedisRateLimiter_FallsBackWhenUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(registry)
	l := newTestRedisLimiter(t, client, DefaultConfig(2, time.Minute), WithName("client"), WithMetrics(m))

	assert.True(t, mustCheck(t, l, "k").Allowed)
	assert.True(t, mustCheck(t, l, "k").Allowed)
	assert.False(t, mustCheck(t, l, "k").Allowed)

	usage, err := l.GetUsage(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Count)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.BackendErrors.WithLabelValues("client")))
	assert.Error(t, l.Reset(context.Background(), "k"))
}
