package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/api/handlers"
	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

func TestListGoals(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterGoalRoutes(api, handlers.NewGoalsHandler(rules.Default()))

	resp := api.Get("/api/v1/goals")
	require.Equal(t, http.StatusOK, resp.Code)

	var goals []rules.GoalSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &goals))
	require.Len(t, goals, 8)

	var newsletter *rules.GoalSummary
	for i := range goals {
		if goals[i].Key == "toC_newsletter" {
			newsletter = &goals[i]
		}
	}
	require.NotNil(t, newsletter)
	assert.True(t, newsletter.Default)
	assert.Equal(t, "toC（メルマガ登録）", newsletter.Name)

	byMetric := make(map[domain.Metric]rules.RuleSummary)
	for _, r := range newsletter.Rules {
		byMetric[r.Metric] = r
	}
	ctr := byMetric[domain.MetricCTR]
	assert.InDelta(t, 2.5, ctr.Threshold, 0.0001)
	assert.Equal(t, 3, ctr.Days)
	assert.Equal(t, domain.ConditionBelow, ctr.Condition)
	assert.Equal(t, "予算消化率", byMetric[domain.MetricBudgetRate].DisplayName)
}
