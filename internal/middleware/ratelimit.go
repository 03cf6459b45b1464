package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/pkg/clientip"
)

const (
	// RateLimitWindow is the fixed window length
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the number of requests allowed per window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// RateLimit is a per-IP fixed-window limiter backed by Redis. If Redis is
// unreachable the request is let through.
func RateLimit(rdb *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RealClientIP(r)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				logger.Warn("rate limit unavailable, failing open", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if n == 1 {
				// first request opens the window; a counter without a TTL
				// would block the IP forever, so drop it if Expire fails
				if err := rdb.Expire(ctx, key, RateLimitWindow).Err(); err != nil {
					logger.Warn("rate limit expire failed", zap.String("key", key), zap.Error(err))
					rdb.Del(ctx, key)
				}
			}

			count := int(n)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			if count > RateLimitMaxRequests {
				// re-arm a window left without a TTL by an earlier failure
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl < 0 {
					rdb.Expire(ctx, key, RateLimitWindow)
				}
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(RateLimitWindow.Seconds())))
				writeJSONError(w, http.StatusTooManyRequests,
					fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", int(RateLimitWindow.Seconds())))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-count))
			next.ServeHTTP(w, r)
		})
	}
}
