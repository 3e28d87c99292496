// Package app wires shared infrastructure used by both binaries.
package app

import (
	"net/http"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noven-dev/backend-wholesale/internal/config"
)

// NewLimiterStore wires a rate limiter store backed by Redis.
func NewLimiterStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "wholesale:ratelimit",
	})
}

// RateLimit builds the request throttling middleware from config.
func RateLimit(store limiter.Store, cfg *config.Config) func(http.Handler) http.Handler {
	instance := limiter.New(store, limiter.Rate{
		Period: cfg.RateLimitPeriod,
		Limit:  cfg.RateLimitMax,
	})
	middleware := mhttp.NewMiddleware(instance)
	return func(next http.Handler) http.Handler {
		return middleware.Handler(next)
	}
}
