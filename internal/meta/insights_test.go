package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
)

var (
	since = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	until = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const insightsPage = `{
  "data": [
    {
      "date_start": "2026-03-09", "date_stop": "2026-03-09",
      "spend": "12000", "impressions": "50000", "reach": "25000", "clicks": "750",
      "cpm": "240", "cpc": "16", "ctr": "1.5",
      "actions": [
        {"action_type": "link_click", "value": "750"},
        {"action_type": "lead", "value": "4"},
        {"action_type": "onsite_conversion.lead_grouped", "value": "4"},
        {"action_type": "offsite_conversion.fb_pixel_purchase", "value": "2"}
      ]
    },
    {
      "date_start": "2026-03-08", "date_stop": "2026-03-08",
      "spend": "9000", "impressions": "30000", "clicks": "300",
      "cpm": "300", "ctr": "1.0"
    }
  ]
}`

func TestInsightsClient_DailyMetrics(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	var gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, insightsPage)
	}))
	defer srv.Close()

	c := NewInsightsClient(WithGraphURL(srv.URL), WithLogger(quietLogger()))
	got, err := c.DailyMetrics(context.Background(),
		AccountRequest{AccountID: "123", Token: "secret", DailyBudget: 10000}, since, until)
	require.NoError(t, err)

	assert.Equal(t, "/v19.0/act_123/insights", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, []string{"1"}, gotQuery["time_increment"])
	assert.Equal(t, []string{`{"since":"2026-03-08","until":"2026-03-10"}`}, gotQuery["time_range"])

	require.Len(t, got, 2)
	assert.Equal(t, since, got[0].Date, "sorted oldest first")

	day := got[1]
	assert.InDelta(t, 1.5, day.CTR, 1e-9)
	assert.InDelta(t, 240, day.CPM, 1e-9)
	assert.Equal(t, 6, day.Conversions.Total)
	assert.InDelta(t, 2000, day.CPA, 1e-9)
	assert.InDelta(t, 120, day.BudgetRate, 1e-9)
	assert.InDelta(t, 2, day.Frequency, 1e-9)

	assert.Equal(t, 0, got[0].Conversions.Total)
	assert.Zero(t, got[0].CPA)
	assert.Zero(t, got[0].Frequency, "no reach means no frequency")
}

func TestInsightsClient_NoBudgetKeepsBudgetRateQuiet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, insightsPage)
	}))
	defer srv.Close()

	c := NewInsightsClient(WithGraphURL(srv.URL), WithLogger(quietLogger()))
	got, err := c.DailyMetrics(context.Background(), AccountRequest{AccountID: "act_1", Token: "t"}, since, until)
	require.NoError(t, err)
	for _, s := range got {
		assert.InDelta(t, 100, s.BudgetRate, 1e-9)
	}
}

func TestInsightsClient_FollowsPaging(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			fmt.Fprintf(w, `{"data":[{"date_start":"2026-03-08","spend":"1"}],"paging":{"next":"%s/v19.0/act_1/insights?after=x"}}`, srv.URL)
			return
		}
		_, _ = io.WriteString(w, `{"data":[{"date_start":"2026-03-09","spend":"2"}]}`)
	}))
	defer srv.Close()

	c := NewInsightsClient(WithGraphURL(srv.URL), WithLogger(quietLogger()))
	got, err := c.DailyMetrics(context.Background(), AccountRequest{AccountID: "1", Token: "t"}, since, until)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 2, got[1].Spend, 1e-9)
}

func TestInsightsClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		throttled bool
		errMsg    string
	}{
		{
			name:   "graph error body",
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`,
			errMsg: "Invalid OAuth access token",
		},
		{
			name:      "throttled by code",
			status:    http.StatusBadRequest,
			body:      `{"error":{"message":"User request limit reached","type":"OAuthException","code":17}}`,
			throttled: true,
			errMsg:    "code 17",
		},
		{
			name:   "non-json error",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			errMsg: "status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			rl := NewRateLimiter(100, 10, 1000)
			c := NewInsightsClient(WithGraphURL(srv.URL), WithRateLimiter(rl), WithLogger(quietLogger()))
			_, err := c.DailyMetrics(context.Background(), AccountRequest{AccountID: "1", Token: "t"}, since, until)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				assert.Equal(t, tt.throttled, apiErr.Throttled())
			}

			err = rl.Wait(context.Background())
			if tt.throttled {
				require.ErrorIs(t, err, ErrThrottled)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInsightsClient_RequiresCredentials(t *testing.T) {
	t.Parallel()

	c := NewInsightsClient()
	_, err := c.DailyMetrics(context.Background(), AccountRequest{AccountID: "1"}, since, until)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
}

func TestInsightsClient_CountsAPICalls(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	before := ptestutil.ToFloat64(metrics.MetaAPICallsTotal)

	c := NewInsightsClient(WithGraphURL(srv.URL))
	_, err := c.DailyMetrics(context.Background(), AccountRequest{AccountID: "1", Token: "t"}, since, until)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, ptestutil.ToFloat64(metrics.MetaAPICallsTotal)-before, 1.0)
}
