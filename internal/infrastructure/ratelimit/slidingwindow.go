package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"tgnotify/internal/shared/goroutine"
	"tgnotify/internal/shared/logger"
)

// SlidingWindowLimiter keeps admitted-request timestamps per key in process memory.
// All state sits behind one mutex, so a Check is atomic with respect to every
// other Check, GetUsage, Reset and purge on the same limiter.
type SlidingWindowLimiter struct {
	cfg     Config
	name    string
	now     func() time.Time
	logger  logger.Interface
	metrics *Metrics

	mu    sync.Mutex
	store map[string][]time.Time

	done     chan struct{}
	exited   <-chan struct{}
	stopOnce sync.Once
}

// NewSlidingWindowLimiter validates cfg and starts the periodic purge.
func NewSlidingWindowLimiter(cfg Config, opts ...Option) (*SlidingWindowLimiter, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	l := &SlidingWindowLimiter{
		cfg:     cfg,
		name:    o.name,
		now:     o.now,
		logger:  o.logger,
		metrics: o.metrics,
		store:   make(map[string][]time.Time),
		done:    make(chan struct{}),
	}
	l.exited = goroutine.Every(o.logger, "ratelimit-purge-"+o.name, o.cleanupInterval, l.done, l.purge)

	return l, nil
}

func (l *SlidingWindowLimiter) Config() Config {
	return l.cfg
}

// Check records the request if the key still has capacity. The error is always nil.
func (l *SlidingWindowLimiter) Check(_ context.Context, identifier string) (Result, error) {
	key := l.cfg.key(identifier)
	now := l.now()

	l.mu.Lock()
	hits := pruneExpired(l.store[key], now.Add(-l.cfg.Window))

	if len(hits) >= l.cfg.MaxRequests {
		l.store[key] = hits
		keys := len(l.store)
		l.mu.Unlock()

		retryAfter := retryAfterSeconds(hits[0].Add(l.cfg.Window).Sub(now))
		l.metrics.observeCheck(l.name, false)
		l.metrics.setActiveKeys(l.name, keys)
		l.logger.Debugw("rate limit exceeded", "key", key, "retry_after", retryAfter)

		return Result{
			Allowed:    false,
			RetryAfter: retryAfter,
			Limit:      l.cfg.MaxRequests,
		}, nil
	}

	hits = append(hits, now)
	l.store[key] = hits
	keys := len(l.store)
	l.mu.Unlock()

	l.metrics.observeCheck(l.name, true)
	l.metrics.setActiveKeys(l.name, keys)

	return Result{
		Allowed:   true,
		Limit:     l.cfg.MaxRequests,
		Remaining: l.cfg.MaxRequests - len(hits),
	}, nil
}

// GetUsage reports the key's current count without changing stored state.
func (l *SlidingWindowLimiter) GetUsage(_ context.Context, identifier string) (Usage, error) {
	key := l.cfg.key(identifier)
	now := l.now()
	cutoff := now.Add(-l.cfg.Window)

	usage := Usage{
		Limit:   l.cfg.MaxRequests,
		ResetAt: now.Add(l.cfg.Window),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, t := range l.store[key] {
		if !t.After(cutoff) {
			continue
		}
		if usage.Count == 0 {
			usage.ResetAt = t.Add(l.cfg.Window)
		}
		usage.Count++
	}

	return usage, nil
}

// Reset forgets the key entirely.
func (l *SlidingWindowLimiter) Reset(_ context.Context, identifier string) error {
	key := l.cfg.key(identifier)

	l.mu.Lock()
	delete(l.store, key)
	keys := len(l.store)
	l.mu.Unlock()

	l.metrics.setActiveKeys(l.name, keys)
	return nil
}

// Destroy stops the purge loop and clears the store. Check keeps working
// afterwards, but nothing purges idle keys any more.
func (l *SlidingWindowLimiter) Destroy() {
	l.stopOnce.Do(func() {
		close(l.done)
		<-l.exited
	})

	l.mu.Lock()
	l.store = make(map[string][]time.Time)
	l.mu.Unlock()

	l.metrics.setActiveKeys(l.name, 0)
}

func (l *SlidingWindowLimiter) purge() {
	cutoff := l.now().Add(-l.cfg.Window)

	l.mu.Lock()
	removed := 0
	for key, hits := range l.store {
		hits = pruneExpired(hits, cutoff)
		if len(hits) == 0 {
			delete(l.store, key)
			removed++
			continue
		}
		l.store[key] = hits
	}
	keys := len(l.store)
	l.mu.Unlock()

	l.metrics.observePurge(l.name, removed, keys)
	if removed > 0 {
		l.logger.Debugw("purged idle rate limit keys", "removed", removed, "active", keys)
	}
}

// pruneExpired drops timestamps at or before cutoff, reusing the backing array.
func pruneExpired(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func retryAfterSeconds(wait time.Duration) int {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
