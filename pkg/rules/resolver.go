package rules

import (
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// ResolveTargets merges per-user overrides over the default rules of a goal.
//
// Only the threshold is overridable; condition and required days always come
// from the goal. An override that is nil or zero is treated as unset, so a
// legitimate zero target cannot be expressed through overrides. Metrics the
// goal does not define are never added. Unknown goal types resolve against
// the table's default goal.
func ResolveTargets(
	overrides domain.TargetOverrides,
	goalType string,
	table *GoalTable,
) domain.TargetSet {
	_, goal := table.Goal(goalType)

	targets := make(domain.TargetSet, len(goal.Rules))
	for m, r := range goal.Rules {
		meta := table.Meta(m)
		threshold := r.Threshold
		if v := overrides.For(m); v != nil && *v != 0 {
			threshold = *v
		}
		targets[m] = domain.Target{
			Metric:        m,
			Threshold:     threshold,
			Direction:     meta.Direction,
			Condition:     r.Condition,
			RequiredDays:  r.Days,
			CriticalRatio: meta.CriticalRatio,
		}
	}

	return targets
}

// ResolveAccountTargets resolves targets for one account of a user. An
// account goal type, when set, replaces the user's. Account overrides take
// precedence over user overrides field by field.
func ResolveAccountTargets(
	user *domain.UserSettings,
	account *domain.Account,
	table *GoalTable,
) domain.TargetSet {
	goal := user.GoalType
	if account.GoalType != "" {
		goal = account.GoalType
	}

	merged := user.Targets
	a := account.Targets
	for _, pair := range []struct {
		dst **float64
		src *float64
	}{
		{&merged.CTR, a.CTR},
		{&merged.CPA, a.CPA},
		{&merged.CPM, a.CPM},
		{&merged.CV, a.CV},
		{&merged.BudgetRate, a.BudgetRate},
		{&merged.DailyBudget, a.DailyBudget},
	} {
		if pair.src != nil && *pair.src != 0 {
			*pair.dst = pair.src
		}
	}

	return ResolveTargets(merged, goal, table)
}
