package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/pkg/clientip"
)

const (
	// RateLimitKeyPrefix is the Redis key prefix for rate limit counters
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding a limit
	BlockedIPDuration = 24 * time.Hour
)

// RateLimit returns a fixed-window per-IP limiter backed by Redis. Exceeding
// the limit blocks the IP for BlockedIPDuration. The name keeps counters for
// different routes (e.g. login vs the rest of the API) separate.
// Fails open: if Redis is unreachable the request goes through.
func RateLimit(name string, maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ipAddress := clientip.RealClientIP(r)
			ctx := context.Background()

			blockedKey := BlockedIPKeyPrefix + ipAddress
			isBlocked, err := database.RedisClient.Exists(ctx, blockedKey).Result()
			if err == nil && isBlocked > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"success":false,"message":"your IP has been temporarily blocked due to excessive requests"}`))
				return
			}

			rateLimitKey := RateLimitKeyPrefix + name + ":" + ipAddress

			newCount, err := database.RedisClient.Incr(ctx, rateLimitKey).Result()
			if err != nil {
				// Redis down: allow the request
				next.ServeHTTP(w, r)
				return
			}
			if newCount == 1 {
				database.RedisClient.Expire(ctx, rateLimitKey, window)
			}

			if newCount > int64(maxRequests) {
				_ = database.RedisClient.Set(ctx, blockedKey, "1", BlockedIPDuration).Err()

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"rate limit exceeded, your IP has been temporarily blocked","retry_after":%d}`, int(window.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(maxRequests)-newCount, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

// UnblockIP removes an IP from the blocked list (admin function).
func UnblockIP(ipAddress string) error {
	return database.RedisClient.Del(context.Background(), BlockedIPKeyPrefix+ipAddress).Err()
}
