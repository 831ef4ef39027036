package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
)

// GoalsHandler serves the loaded rule table.
type GoalsHandler struct {
	table *rules.GoalTable
}

// NewGoalsHandler creates a new GoalsHandler.
func NewGoalsHandler(t *rules.GoalTable) *GoalsHandler {
	return &GoalsHandler{table: t}
}

// ListGoalsOutput is the response body for listing goals.
type ListGoalsOutput struct {
	Body []rules.GoalSummary
}

// ListGoals returns every goal type with its rules in display priority order.
func (h *GoalsHandler) ListGoals(_ context.Context, _ *struct{}) (*ListGoalsOutput, error) {
	return &ListGoalsOutput{Body: h.table.Summaries()}, nil
}

// RegisterGoalRoutes registers the goal table endpoint with the Huma API.
func RegisterGoalRoutes(api huma.API, h *GoalsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-goals",
		Method:      http.MethodGet,
		Path:        "/api/v1/goals",
		Summary:     "List goal types",
		Description: "Returns every goal type with its default threshold rules.",
		Tags:        []string{"rules"},
	}, h.ListGoals)
}
