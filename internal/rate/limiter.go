// Package rate throttles repeated failed sign-ins using Redis counters.
package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "signin:fail:"

// Config holds the throttle tunables.
type Config struct {
	MaxAttempts int
	Lockout     time.Duration
}

// Limiter counts failed sign-ins per email. A counter expires Lockout after
// the first failure in its window.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}
	return &Limiter{redis: client, config: cfg}
}

// Allow reports whether another sign-in attempt for email may proceed.
func (l *Limiter) Allow(ctx context.Context, email string) (bool, error) {
	count, err := l.redis.Get(ctx, key(email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("rate: read counter: %w", err)
	}
	return count < l.config.MaxAttempts, nil
}

// RecordFailure increments the failure counter for email.
func (l *Limiter) RecordFailure(ctx context.Context, email string) error {
	k := key(email)

	count, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("rate: increment counter: %w", err)
	}

	// fixed window: the TTL is set by the first failure only
	if count == 1 {
		if err := l.redis.Expire(ctx, k, l.config.Lockout).Err(); err != nil {
			return fmt.Errorf("rate: set counter ttl: %w", err)
		}
	}

	return nil
}

// Reset clears the failure counter for email after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("rate: reset counter: %w", err)
	}
	return nil
}

func key(email string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(email))
}
