package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles sensitive endpoints (login, verification scans)
// per client IP using a redis counter with a one-minute window.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int64
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{
		redis:     redisClient,
		perMinute: int64(perMinute),
	}
}

// Limit returns a middleware enforcing the per-minute budget under the
// given scope. Redis failures fail open; throttling is protection, not
// a dependency.
func (r *RateLimiter) Limit(scope string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx := e.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", scope, e.RealIP())

		count, err := r.redis.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				r.redis.Expire(ctx, key, time.Minute)
			}
			if count > r.perMinute {
				return apis.NewApiError(http.StatusTooManyRequests,
					"Too many requests, please try again later", nil)
			}
		}

		return e.Next()
	}
}
