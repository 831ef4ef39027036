package rules

import domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"

// RuleSummary is one rule of a goal with its display name.
type RuleSummary struct {
	Metric      domain.Metric    `json:"metric"`
	DisplayName string           `json:"display_name"`
	Threshold   float64          `json:"threshold"`
	Days        int              `json:"days"`
	Condition   domain.Condition `json:"condition"`
}

// GoalSummary describes one goal type.
type GoalSummary struct {
	Key     string        `json:"key"`
	Name    string        `json:"name"`
	Default bool          `json:"default"`
	Rules   []RuleSummary `json:"rules"`
}

// Summaries lists every goal with its rules in display priority order.
func (t *GoalTable) Summaries() []GoalSummary {
	names := t.GoalNames()
	out := make([]GoalSummary, 0, len(names))

	for _, key := range names {
		g := t.Goals[key]
		targets := make(domain.TargetSet, len(g.Rules))
		for m := range g.Rules {
			targets[m] = domain.Target{Metric: m}
		}

		s := GoalSummary{
			Key:     key,
			Name:    g.Name,
			Default: key == t.DefaultGoal,
			Rules:   make([]RuleSummary, 0, len(g.Rules)),
		}
		for _, m := range SortedMetrics(targets) {
			r := g.Rules[m]
			s.Rules = append(s.Rules, RuleSummary{
				Metric:      m,
				DisplayName: t.DisplayName(m),
				Threshold:   r.Threshold,
				Days:        r.Days,
				Condition:   r.Condition,
			})
		}
		out = append(out, s)
	}
	return out
}
