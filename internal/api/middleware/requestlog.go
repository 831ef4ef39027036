package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-ID"

// RequestLog returns Echo middleware that logs requests with structured fields.
// It generates a request ID if none is provided and propagates it through
// the response header and echo context.
//
// Health check paths are logged on their first success and on every
// failure; the successes in between are dropped so health checks do not
// drown the log. A failure re-arms the next success.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var mu sync.Mutex
	healthy := make(map[string]bool, len(healthGauges))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			path := c.Request().URL.Path
			status := c.Response().Status
			level := slog.LevelInfo

			if _, health := healthGauges[path]; health {
				ok := status >= 200 && status < 300
				mu.Lock()
				quiet := ok && healthy[path]
				healthy[path] = ok
				mu.Unlock()

				if quiet {
					return err
				}
				if !ok {
					level = slog.LevelWarn
				}
			} else if status >= 500 {
				level = slog.LevelError
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}
