package middleware

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/api/metrics"
)

// WindowCounter counts hits for a key inside a fixed time window and
// reports how long until the window resets.
type WindowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

type rateLimitError struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retryAfter"`
}

// RateLimit rejects clients that exceed max requests per window, keyed by
// client IP. Counter failures fail open: a broken counter backend slows
// nobody down, it only loses the limit.
func RateLimit(counter WindowCounter, max int64, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			count, ttl, err := counter.Incr(c.Request().Context(), "ratelimit:"+c.RealIP(), window)
			if err != nil {
				log.Warn().Err(err).Msg("rate limit counter unavailable; allowing request")
				return next(c)
			}

			if count > max {
				metrics.RateLimitExceededTotal.Inc()
				return c.JSON(http.StatusTooManyRequests, rateLimitError{
					Error:      "Too many requests",
					Message:    "Rate limit exceeded. Please try again later.",
					RetryAfter: int64(math.Ceil(ttl.Seconds())),
				})
			}

			return next(c)
		}
	}
}
