// Package ratelimit implements a fixed-window request limiter backed by
// Redis, so the limit holds across replicas.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts requests per key in a rolling Redis window. The check and
// the increment run in a Lua script so concurrent requests cannot race past
// the limit.
type Limiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// allowScript initializes the counter with a TTL on first sight of a key and
// increments it atomically afterwards. Returns {allowed, remaining, resetAt}.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local max_requests = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local current_time = tonumber(ARGV[3])

	local current = redis.call('GET', key)

	if current == false then
		redis.call('SET', key, 1, 'EX', window)
		return {1, max_requests - 1, current_time + window}
	end

	current = tonumber(current)
	if current < max_requests then
		redis.call('INCR', key)
		local ttl = redis.call('TTL', key)
		return {1, max_requests - current - 1, current_time + ttl}
	end

	local ttl = redis.call('TTL', key)
	return {0, 0, current_time + ttl}
`)

// New creates a limiter allowing maxRequests per window for each key.
func New(client *redis.Client, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow consumes one request slot for key. It reports whether the request is
// allowed, how many slots remain, and when the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, resetTime time.Time, err error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	now := time.Now()

	result, err := allowScript.Run(
		ctx,
		l.client,
		[]string{redisKey},
		l.maxRequests,
		int(l.window.Seconds()),
		now.Unix(),
	).Result()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit check: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected rate limit script result %T", result)
	}

	allowed = values[0].(int64) == 1
	remaining = int(values[1].(int64))
	resetTime = time.Unix(values[2].(int64), 0)
	return allowed, remaining, resetTime, nil
}

// Reset clears the window for a key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}

// MaxRequests returns the per-window request budget.
func (l *Limiter) MaxRequests() int {
	return l.maxRequests
}
