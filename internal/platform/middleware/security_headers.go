package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets defensive response headers. The content security
// policy allows same-origin assets so the bundled frontend keeps working.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Responses may contain patient data.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
