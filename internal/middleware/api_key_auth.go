package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// APIKeyHeader carries the shared household API key
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns an Echo middleware that rejects requests whose
// X-API-Key header does not match apiKey.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	expected := []byte(apiKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(APIKeyHeader)
			if provided == "" {
				return unauthorizedError(c, "Missing API key")
			}

			if subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				log.Warn().
					Str("path", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("Rejected request with invalid API key")
				return unauthorizedError(c, "Invalid API key")
			}

			return next(c)
		}
	}
}
