package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// AlertFilter narrows an alert history listing. Zero values are omitted.
type AlertFilter struct {
	UserID string
	// AccountID selects one ad account; "primary" selects the primary one.
	AccountID  string
	Metric     string
	ActiveOnly bool
	// Since is a calendar day in YYYY-MM-DD form.
	Since string
	Limit int
}

func (f AlertFilter) values() url.Values {
	q := url.Values{}
	if f.UserID != "" {
		q.Set("user_id", f.UserID)
	}
	if f.AccountID != "" {
		q.Set("account_id", f.AccountID)
	}
	if f.Metric != "" {
		q.Set("metric", f.Metric)
	}
	if f.ActiveOnly {
		q.Set("active", "true")
	}
	if f.Since != "" {
		q.Set("since", f.Since)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

type alertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
	Total  int            `json:"total"`
}

// ListAlerts returns recorded alerts, newest first.
func (c *Client) ListAlerts(ctx context.Context, f AlertFilter) ([]domain.Alert, error) {
	var resp alertsResponse
	if err := c.get(ctx, withQuery("/api/v1/alerts", f.values()), &resp); err != nil {
		return nil, err
	}
	return resp.Alerts, nil
}

func dayValues(userID, accountID, date string) url.Values {
	q := url.Values{}
	q.Set("user_id", userID)
	if accountID != "" {
		q.Set("account_id", accountID)
	}
	if date != "" {
		q.Set("date", date)
	}
	return q
}

// Confirmations returns the check items of a user's active alerts for one
// day. An empty date means today on the server.
func (c *Client) Confirmations(
	ctx context.Context,
	userID, accountID, date string,
) ([]domain.ConfirmationItem, error) {
	var resp struct {
		Items []domain.ConfirmationItem `json:"items"`
	}
	path := withQuery("/api/v1/alerts/confirmations", dayValues(userID, accountID, date))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Improvements returns the improvement strategies of a user's active alerts
// for one day.
func (c *Client) Improvements(
	ctx context.Context,
	userID, accountID, date string,
) ([]domain.ImprovementStrategy, error) {
	var resp struct {
		Strategies []domain.ImprovementStrategy `json:"strategies"`
	}
	path := withQuery("/api/v1/alerts/improvements", dayValues(userID, accountID, date))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Strategies, nil
}

// RunResult is the outcome of a manually triggered run. Error carries
// partial failures the server still reported a summary for.
type RunResult struct {
	Summary domain.RunSummary `json:"summary"`
	Error   string            `json:"error,omitempty"`
}

// Run flows accepted by the server.
const (
	FlowAlerts       = "alerts"
	FlowDailyReport  = "daily_report"
	FlowUpdateNotice = "update_notice"
)

// RunRequest selects what a manual run sends. Zero values run the alert
// flow for every user.
type RunRequest struct {
	TestMode bool   `json:"test_mode,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Flow     string `json:"flow,omitempty"`
}

// Run triggers an alert, daily report or update notice run.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	var res RunResult
	if err := c.post(ctx, "/api/v1/alerts/run", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListGoals returns the goal types the server evaluates against.
func (c *Client) ListGoals(ctx context.Context) ([]rules.GoalSummary, error) {
	var goals []rules.GoalSummary
	if err := c.get(ctx, "/api/v1/goals", &goals); err != nil {
		return nil, err
	}
	return goals, nil
}
