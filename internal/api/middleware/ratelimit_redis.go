package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"loan-origination/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed one-second window shared by all replicas.
type RedisRateLimiter struct {
	redisClient redis.UniversalClient
	limit       int64
	logger      *slog.Logger
	window      time.Duration
}

func NewRedisRateLimiter(cfg config.RateLimitConfig, redisClient redis.UniversalClient, logger *slog.Logger) *RedisRateLimiter {
	limit := int64(math.Ceil(cfg.RPS)) + int64(cfg.Burst)
	if limit < 1 {
		limit = 1
	}
	logger.Info("Redis rate limiter configured", "limit", limit, "window", time.Second)

	return &RedisRateLimiter{
		redisClient: redisClient,
		limit:       limit,
		logger:      logger.With("component", "RedisRateLimiter"),
		window:      time.Second,
	}
}

func (rl *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip == "" {
			rl.logger.Error("Blocking request due to unknown client IP for rate limiting", "remoteAddr", r.RemoteAddr)
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden")
			return
		}

		ctx := r.Context()
		key := fmt.Sprintf("ratelimit:%s", ip)

		pipe := rl.redisClient.Pipeline()
		incrCmd := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)

		if _, err := pipe.Exec(ctx); err != nil {
			// Fail open: redis trouble must not take the API down.
			rl.logger.Error("Redis pipeline failed during rate limiting check", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		currentCount := incrCmd.Val()
		if ttl := ttlCmd.Val(); ttl < 0 {
			if err := rl.redisClient.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.logger.Error("Failed to set Redis EXPIRE for rate limit key", "error", err, "key", key)
			}
		}

		if currentCount > rl.limit {
			rl.logger.Warn("Rate limit exceeded", "ip", ip, "count", currentCount, "limit", rl.limit)
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Rate limit exceeded. Limit is %d requests per %v.", rl.limit, rl.window))
			return
		}

		next.ServeHTTP(w, r)
	})
}
