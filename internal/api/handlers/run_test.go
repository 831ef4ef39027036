package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/api/handlers"
	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
)

// mockRunner is a test double for AlertRunner.
type mockRunner struct {
	summary *engine.RunSummary
	err     error
	got     engine.JobOptions
	flow    string
}

func (m *mockRunner) RunAlerts(_ context.Context, opts engine.JobOptions) (*engine.RunSummary, error) {
	m.got, m.flow = opts, "alerts"
	return m.summary, m.err
}

func (m *mockRunner) RunDailyReport(_ context.Context, opts engine.JobOptions) (*engine.RunSummary, error) {
	m.got, m.flow = opts, "daily_report"
	return m.summary, m.err
}

func (m *mockRunner) RunUpdateNotice(_ context.Context, opts engine.JobOptions) (*engine.RunSummary, error) {
	m.got, m.flow = opts, "update_notice"
	return m.summary, m.err
}

func TestRunAlerts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		runner     *mockRunner
		body       map[string]any
		wantStatus int
		wantBody   []string
		wantOpts   engine.JobOptions
	}{
		{
			name:       "success",
			runner:     &mockRunner{summary: &engine.RunSummary{Users: 2, Messages: 3}},
			body:       map[string]any{},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"users":2`, `"messages":3`},
		},
		{
			name:       "test mode for one user",
			runner:     &mockRunner{summary: &engine.RunSummary{Users: 1, Messages: 1}},
			body:       map[string]any{"test_mode": true, "user_id": "u1"},
			wantStatus: http.StatusOK,
			wantOpts:   engine.JobOptions{TestMode: true, UserID: "u1"},
		},
		{
			name: "partial failure",
			runner: &mockRunner{
				summary: &engine.RunSummary{Users: 1, SendErrors: 1},
				err:     errors.New("sending alerts for u1: chatwork returned 500"),
			},
			body:       map[string]any{},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"send_errors":1`, "chatwork returned 500"},
		},
		{
			name:       "run failure",
			runner:     &mockRunner{err: errors.New("listing users: boom")},
			body:       map[string]any{},
			wantStatus: http.StatusInternalServerError,
			wantBody:   []string{"alert run failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterRunRoutes(api, handlers.NewRunHandler(tt.runner))

			resp := api.Post("/api/v1/alerts/run", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			for _, want := range tt.wantBody {
				assert.Contains(t, resp.Body.String(), want)
			}
			assert.Equal(t, tt.wantOpts, tt.runner.got)
		})
	}
}

func TestRunAlerts_Flow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flow       string
		wantStatus int
		wantFlow   string
	}{
		{flow: "", wantStatus: http.StatusOK, wantFlow: "alerts"},
		{flow: "alerts", wantStatus: http.StatusOK, wantFlow: "alerts"},
		{flow: "daily_report", wantStatus: http.StatusOK, wantFlow: "daily_report"},
		{flow: "update_notice", wantStatus: http.StatusOK, wantFlow: "update_notice"},
		{flow: "weekly_report", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run("flow="+tt.flow, func(t *testing.T) {
			t.Parallel()

			runner := &mockRunner{summary: &engine.RunSummary{Users: 1, Reports: 1}}
			_, api := humatest.New(t)
			handlers.RegisterRunRoutes(api, handlers.NewRunHandler(runner))

			body := map[string]any{}
			if tt.flow != "" {
				body["flow"] = tt.flow
			}
			resp := api.Post("/api/v1/alerts/run", body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Equal(t, tt.wantFlow, runner.flow)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, resp.Body.String(), `"reports":1`)
			}
		})
	}
}
