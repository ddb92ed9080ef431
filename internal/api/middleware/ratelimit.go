package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"loan-origination/internal/config"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// NewRateLimiter picks the redis-backed limiter when configured and a client
// is available, falling back to the in-process token bucket.
func NewRateLimiter(ctx context.Context, cfg config.RateLimitConfig, rdb redis.UniversalClient, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		logger.Info("Rate limiting is disabled via configuration.")
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.UseRedis {
		if rdb != nil {
			return NewRedisRateLimiter(cfg, rdb, logger).Middleware
		}
		logger.Warn("Redis rate limiting requested but no Redis client provided; using local limiter.")
	}
	return NewLocalRateLimiter(ctx, cfg, logger).Middleware
}

type LocalRateLimiter struct {
	limiters sync.Map
	cfg      config.RateLimitConfig
	logger   *slog.Logger
}

// NewLocalRateLimiter keeps one token bucket per client IP. Idle buckets are
// dropped every 10 minutes until ctx is done.
func NewLocalRateLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) *LocalRateLimiter {
	rl := &LocalRateLimiter{
		cfg:    cfg,
		logger: logger.With("component", "LocalRateLimiter"),
	}

	go rl.cleanupLimiters(ctx, 10*time.Minute)

	return rl
}

func (rl *LocalRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, _ := rl.limiters.LoadOrStore(ip, rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst))
	return limiter.(*rate.Limiter)
}

func (rl *LocalRateLimiter) cleanupLimiters(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.limiters.Range(func(key, value interface{}) bool {
				limiter := value.(*rate.Limiter)
				if limiter.Tokens() >= float64(rl.cfg.Burst) {
					rl.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (rl *LocalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.getLimiter(ip).Allow() {
			rl.logger.Warn("Rate limit exceeded", "ip", ip)
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers proxy headers and returns "" when nothing parses.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	if parsed := net.ParseIP(r.RemoteAddr); parsed != nil {
		return parsed.String()
	}
	return ""
}
