package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/readswap/readswap/internal/metrics"
)

// Observe returns a middleware that records every request as a
// prometheus observation and a zerolog event.  It runs first in the
// chain so the measured latency covers the full handler stack.
func Observe(logger *zerolog.Logger) echo.MiddlewareFunc {
	metrics.Register()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			done := metrics.TrackInFlight()
			defer done()
			err := next(c)
			if err != nil {
				// Let Echo's error handler write the response first so
				// the recorded status is the one the client saw.
				c.Error(err)
			}
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			elapsed := time.Since(start)
			metrics.ObserveHTTP(c.Request().Method, route, strconv.Itoa(status), elapsed)

			evt := logger.Info()
			if status >= 500 {
				evt = logger.Error()
			} else if status >= 400 {
				evt = logger.Warn()
			}
			evt.
				Str("method", c.Request().Method).
				Str("route", route).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("remote", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
