package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/pkg"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per minute, per client IP, for the
// given route. If the limiter itself fails (e.g. redis is down), requests are
// let through and the failure is logged.
func RateLimit(
	rateLimiter RequestRateLimiter,
	routeName string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP, err := pkg.ReadUserIP(r)
			if err != nil {
				log.Warnf("rate limit [%s], read user ip: %s", routeName, err)
				clientIP = "unknown"
			}

			res, err := rateLimiter.Allow(
				r.Context(),
				fmt.Sprintf("rate::%s::%s", routeName, clientIP),
				redis_rate.PerMinute(allowedPerMin),
			)
			if err != nil {
				log.Errorf("rate limit [%s], limiter unavailable, letting request through: %s", routeName, err)
				next.ServeHTTP(w, r)
				return
			}

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}

			http.Error(
				w,
				fmt.Sprintf("retry after %f seconds", res.RetryAfter.Seconds()),
				http.StatusTooManyRequests,
			)
		})
	}
}
