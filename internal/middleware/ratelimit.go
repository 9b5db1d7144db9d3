package middleware

import (
	"net/http"

	"FinDash/internal/service/ratelimit"
	xhttp "FinDash/pkg/http"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects clients that exhaust their token bucket with 429.
// Clients are keyed by real IP. Paths in skip are never limited.
func RateLimit(l *ratelimit.Limiter, skip ...string) echo.MiddlewareFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := skipped[c.Request().URL.Path]; ok {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.DataResponse(c, http.StatusTooManyRequests,
					[]*xhttp.AppError{xhttp.TooManyRequestsError("rate limit exceeded")})
			}
			return next(c)
		}
	}
}
