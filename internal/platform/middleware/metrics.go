package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics reports every request to obs, labelled with the matched route.
func Metrics(obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status, _ = errorStatus(err)
			}
			obs.ObserveRequest(c.Request().Method, c.Path(), status, time.Since(start))
			return err
		}
	}
}
