package api

import (
	"time"

	xhttp "FinCast/pkg/http"
	xlogger "FinCast/pkg/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	Rate      float64       // tokens per second
	Burst     int           // bucket size
	ExpiresIn time.Duration // idle clients are forgotten after this
}

// NewRateLimiter returns echo's rate limiter keyed by client IP. Denied
// requests get a 429 in the standard envelope.
func NewRateLimiter(cfg RateLimitConfig, log *xlogger.Logger) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.Rate),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, ip string, _ error) error {
			log.Warn("rate limited", xlogger.String("ip", ip), xlogger.String("path", c.Path()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
		},
	})
}

// passThrough stands in when rate limiting is disabled.
func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
