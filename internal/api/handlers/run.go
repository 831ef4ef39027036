package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
)

// AlertRunner runs one pass of an alert, report or notice flow.
type AlertRunner interface {
	RunAlerts(ctx context.Context, opts engine.JobOptions) (*engine.RunSummary, error)
	RunDailyReport(ctx context.Context, opts engine.JobOptions) (*engine.RunSummary, error)
	RunUpdateNotice(ctx context.Context, opts engine.JobOptions) (*engine.RunSummary, error)
}

// RunHandler handles manual alert run requests.
type RunHandler struct {
	runner AlertRunner
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(r AlertRunner) *RunHandler {
	return &RunHandler{runner: r}
}

// RunAlertsInput is the request body for a manual run.
type RunAlertsInput struct {
	Body struct {
		TestMode bool   `json:"test_mode,omitempty" doc:"Send a marked test digest; history and dedup records are untouched"`
		UserID   string `json:"user_id,omitempty"   doc:"Limit the run to one user"`
		Flow     string `json:"flow,omitempty"      doc:"What to send (default alerts)" enum:"alerts,daily_report,update_notice"`
	}
}

// RunAlertsOutput is the response body for a manual run. Error is set when
// some accounts failed to dispatch.
type RunAlertsOutput struct {
	Body struct {
		Summary engine.RunSummary `json:"summary"`
		Error   string            `json:"error,omitempty"`
	}
}

// Run evaluates and dispatches alerts now.
func (h *RunHandler) Run(ctx context.Context, input *RunAlertsInput) (*RunAlertsOutput, error) {
	run := h.runner.RunAlerts
	switch input.Body.Flow {
	case "daily_report":
		run = h.runner.RunDailyReport
	case "update_notice":
		run = h.runner.RunUpdateNotice
	}

	summary, err := run(ctx, engine.JobOptions{
		TestMode: input.Body.TestMode,
		UserID:   input.Body.UserID,
	})
	if err != nil && summary == nil {
		return nil, huma.Error500InternalServerError("alert run failed: " + err.Error())
	}
	if summary == nil {
		summary = &engine.RunSummary{}
	}

	resp := &RunAlertsOutput{}
	resp.Body.Summary = *summary
	if err != nil {
		resp.Body.Error = err.Error()
	}
	return resp, nil
}

// RegisterRunRoutes registers the manual run endpoint with the Huma API.
func RegisterRunRoutes(api huma.API, h *RunHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "run-alerts",
		Method:      http.MethodPost,
		Path:        "/api/v1/alerts/run",
		Summary:     "Run alert evaluation",
		Description: "Fetches metrics, evaluates rules and dispatches chat digests for every " +
			"configured user. With flow set, sends the daily report or update notice instead. " +
			"Dispatch failures are reported in the error field.",
		Tags:   []string{"alerts"},
		Errors: []int{http.StatusInternalServerError},
	}, h.Run)
}
