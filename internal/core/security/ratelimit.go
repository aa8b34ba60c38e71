package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Result is the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter is the throttling capability. The fixed-window algorithm is
// identical across stores; only the backend varies, so single-instance
// deployments use MemoryLimiter and multi-instance deployments can swap in
// RedisLimiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (Result, error)
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window counter. It provides no
// cross-replica guarantee; that is a documented limitation of this store,
// not of the interface.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewMemoryLimiter creates an in-memory fixed-window limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow counts a request against key. The first request in a window, or
// the first after window expiry, resets the count to 1.
func (l *MemoryLimiter) Allow(_ context.Context, key string, maxRequests int, window time.Duration) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &windowEntry{count: 1, resetAt: now.Add(window)}
		l.entries[key] = entry
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetAt: entry.resetAt}, nil
	}

	if entry.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}, nil
	}

	entry.count++
	return Result{Allowed: true, Remaining: maxRequests - entry.count, ResetAt: entry.resetAt}, nil
}

// Cleanup drops expired windows. Called periodically by the owner.
func (l *MemoryLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// RedisLimiter is a fixed-window counter backed by redis, for deployments
// where throttling must hold across replicas.
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLimiter creates a redis-backed fixed-window limiter.
func NewRedisLimiter(client *redis.Client, keyPrefix string) *RedisLimiter {
	return &RedisLimiter{client: client, keyPrefix: keyPrefix}
}

// Allow counts a request against key using INCR+EXPIRE in one pipeline.
func (l *RedisLimiter) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (Result, error) {
	windowStart := time.Now().Truncate(window)
	resetAt := windowStart.Add(window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.keyPrefix, key, windowStart.Unix())

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(incr.Val())
	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{Allowed: count <= maxRequests, Remaining: remaining, ResetAt: resetAt}, nil
}
