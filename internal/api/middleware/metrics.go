// Package middleware provides Echo middleware for the ad-alert-tracker API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, keeping
// scanner noise from minting one series per URL.
const unmatchedRoute = "unmatched"

// metricsSkipPaths defines URL paths excluded from HTTP request metrics.
var metricsSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

// healthGauges maps health check paths to their up/down gauge.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and status
// by route template. Health check paths only update their gauges.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, skip := metricsSkipPaths[c.Request().URL.Path]; skip {
				err := next(c)
				updateHealthGauge(c.Request().URL.Path, c.Response().Status)
				return err
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the HTTP error handler write the status we label with.
				c.Error(err)
				err = nil
			}

			route := routeLabel(c)
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, status).
				Inc()

			return err
		}
	}
}

func routeLabel(c echo.Context) string {
	path := c.Path()
	if path == "" || path == "/*" {
		return unmatchedRoute
	}
	for _, r := range c.Echo().Routes() {
		if r.Path == path && r.Method == c.Request().Method {
			return path
		}
	}
	return unmatchedRoute
}

// updateHealthGauge sets the gauge for a health check path to 1 on 2xx, else 0.
func updateHealthGauge(path string, status int) {
	gauge, ok := healthGauges[path]
	if !ok {
		return
	}

	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
