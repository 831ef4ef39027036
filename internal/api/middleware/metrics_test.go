package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/donaldgifford/ad-alert-tracker/internal/api/middleware"
	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		route      string
		path       string
		handler    echo.HandlerFunc
		wantStatus int
	}{
		{
			name:   "records 200 by route template",
			method: http.MethodGet,
			route:  "/api/v1/jobs/:job_name",
			path:   "/api/v1/jobs/daily_alerts",
			handler: func(c echo.Context) error {
				return c.JSON(http.StatusOK, []string{})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "records handler error status",
			method: http.MethodGet,
			route:  "/api/v1/dedup",
			path:   "/api/v1/dedup",
			handler: func(_ echo.Context) error {
				return echo.NewHTTPError(http.StatusBadGateway, "redis down")
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "records POST request",
			method: http.MethodPost,
			route:  "/api/v1/alerts/run",
			path:   "/api/v1/alerts/run",
			handler: func(c echo.Context) error {
				return c.NoContent(http.StatusAccepted)
			},
			wantStatus: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(mw.Metrics())
			e.Add(tt.method, tt.route, tt.handler)

			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			statusStr := strconv.Itoa(tt.wantStatus)

			counter, err := metrics.HTTPRequestsTotal.GetMetricWithLabelValues(
				tt.method, tt.route, statusStr,
			)
			require.NoError(t, err)

			m := &io_prometheus_client.Metric{}
			require.NoError(t, counter.Write(m))
			assert.Greater(t, m.GetCounter().GetValue(), float64(0))

			observer, err := metrics.HTTPRequestDuration.GetMetricWithLabelValues(
				tt.method, tt.route, statusStr,
			)
			require.NoError(t, err)

			hm := &io_prometheus_client.Metric{}
			require.NoError(t, observer.(prometheus.Metric).Write(hm))
			assert.Positive(t, hm.GetHistogram().GetSampleCount())
		})
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	e := echo.New()
	e.Use(mw.Metrics())
	e.GET("/api/v1/goals", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	before := ptestutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	for _, p := range []string{"/wp-login.php", "/.env", "/api/v1/nope"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, http.NoBody))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	after := ptestutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.InDelta(t, 3.0, after-before, 0.001)
}

func TestMetricsMiddleware_HealthGauges(t *testing.T) {
	e := echo.New()
	e.Use(mw.Metrics())

	ready := true
	e.GET("/readyz", func(c echo.Context) error {
		if ready {
			return c.NoContent(http.StatusOK)
		}
		return c.NoContent(http.StatusServiceUnavailable)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	assert.InDelta(t, 1.0, ptestutil.ToFloat64(metrics.ReadyzUp), 0.001)

	ready = false
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	assert.InDelta(t, 0.0, ptestutil.ToFloat64(metrics.ReadyzUp), 0.001)
}
