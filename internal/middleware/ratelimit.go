package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/saasbase/pkg/logger"
	"github.com/suteetoe/saasbase/pkg/ratelimit"
	"github.com/suteetoe/saasbase/prometheus"
	"go.uber.org/zap"
)

// RateLimitMiddleware enforces the per-(tenant, caller origin) fixed-window
// quota. Applied only to routes marked high-volume; login and admin writes are
// deliberately not subject to the same ceiling as bulk reads.
func RateLimitMiddleware(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			slug := GetTenantSlug(c)
			key := slug + "|" + c.RealIP()

			if !limiter.Allow(key) {
				log.Warn("Rate limit exceeded",
					zap.String("kind", "rate_limited"),
					zap.String("key", key))
				prometheus.RecordRateLimited(slug)
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}

			return next(c)
		}
	}
}
