// ===========================================
// Package database - Redis Connection
// ===========================================
// Redis backs the rate limiter's per-window counters. Link records are
// deliberately NOT cached here: resolution decisions depend on fresh
// click counters and the active flag, and a stale cached row could
// disclose a target past its limit.
// ===========================================

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkgate/internal/config"
)

// RedisDB wraps the Redis client with application-specific methods.
type RedisDB struct {
	Client *redis.Client
}

// NewRedisDB creates a new Redis connection.
// It validates the connection before returning.
func NewRedisDB(ctx context.Context, cfg config.RedisConfig) (*RedisDB, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Only override URL-derived values when explicitly configured.
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}

	// Timeouts prevent hanging on a dead Redis.
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisDB{Client: client}, nil
}

// Close gracefully shuts down the Redis connection.
func (r *RedisDB) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Health checks if Redis is responsive.
func (r *RedisDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// ===========================================
// Rate Limiting Operations
// ===========================================

// RateLimitKey builds the counter key for one client and window.
// Pattern: "ratelimit:{identifier}:{minute}". Prefixes keep key spaces
// apart and make redis-cli debugging bearable.
func RateLimitKey(identifier string, window time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", identifier, window.Unix()/60)
}

// IncrementRateLimit bumps the counter for this window and returns the
// new count. INCR is atomic, so concurrent requests each get a unique
// count with no race.
func (r *RedisDB) IncrementRateLimit(ctx context.Context, key string, windowSize time.Duration) (int64, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr failed: %w", err)
	}

	// First request in the window arms the expiry; checking count == 1
	// avoids resetting it on every hit.
	if count == 1 {
		// Expire failure is non-fatal; at worst one stale counter
		// lingers for a single client.
		_ = r.Client.Expire(ctx, key, windowSize).Err()
	}

	return count, nil
}
