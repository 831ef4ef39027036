package rules

import (
	"fmt"
	"math"
	"slices"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// Options carries the per-call context stamped onto emitted alerts.
type Options struct {
	UserID string
	Now    time.Time
}

// EvaluateStatic applies the consecutive-day threshold rules of targets to a
// chronological history. A rule fires only when every day of its tail window
// satisfies the condition. Metrics with fewer days of history than required
// are skipped.
func EvaluateStatic(
	targets domain.TargetSet,
	history []domain.MetricSnapshot,
	table *GoalTable,
	opts Options,
) []domain.Alert {
	var alerts []domain.Alert

	for _, m := range SortedMetrics(targets) {
		t := targets[m]
		if t.RequiredDays < 1 || len(history) < t.RequiredDays {
			continue
		}

		window := history[len(history)-t.RequiredDays:]
		if !allDays(window, t) {
			continue
		}

		latest := window[len(window)-1]
		current := latest.Value(m)

		a := domain.Alert{
			UserID:       opts.UserID,
			Metric:       m,
			Kind:         domain.KindThreshold,
			Message:      staticMessage(table.DisplayName(m), t),
			TargetValue:  t.Threshold,
			CurrentValue: current,
			Severity:     staticSeverity(t, current),
			Status:       domain.StatusActive,
			Timestamp:    opts.Now,
		}
		a.CheckItems, a.Improvements = cloneRemediation(table.Remediation[m])

		if m == domain.MetricCV || m == domain.MetricCPA {
			a.Breakdown = slices.Clone(latest.Conversions.Breakdown)
			a.Spend = latest.Spend
		}

		alerts = append(alerts, a)
	}

	return alerts
}

func allDays(window []domain.MetricSnapshot, t domain.Target) bool {
	for i := range window {
		if !satisfies(t.Condition, window[i].Value(t.Metric), t.Threshold) {
			return false
		}
	}
	return true
}

func satisfies(c domain.Condition, v, threshold float64) bool {
	switch c {
	case domain.ConditionBelow:
		return v < threshold
	case domain.ConditionAbove:
		return v > threshold
	case domain.ConditionEqual:
		return v == threshold
	default:
		return false
	}
}

// staticSeverity is critical when the latest value sits at least the critical
// ratio beyond the threshold. A zero threshold has no meaningful ratio and is
// always critical.
func staticSeverity(t domain.Target, current float64) domain.Severity {
	if t.Threshold == 0 {
		return domain.SeverityCritical
	}

	deviation := math.Abs(current-t.Threshold) / math.Abs(t.Threshold)
	if deviation >= t.CriticalRatio {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}

func staticMessage(name string, t domain.Target) string {
	value := FormatValue(t.Metric, t.Threshold)

	if t.Condition == domain.ConditionEqual {
		return fmt.Sprintf("%sが%d日間連続で%sになっています", name, t.RequiredDays, value)
	}
	if t.RequiredDays == 1 {
		return fmt.Sprintf("%sが%s%sになっています", name, value, conditionPhrase(t.Condition))
	}
	return fmt.Sprintf("%sが%d日間連続で%s%sになっています",
		name, t.RequiredDays, value, conditionPhrase(t.Condition))
}

func cloneRemediation(r Remediation) ([]domain.CheckItem, map[string][]string) {
	items := slices.Clone(r.CheckItems)
	if items == nil {
		items = []domain.CheckItem{}
	}

	improvements := make(map[string][]string, len(r.Improvements))
	for k, v := range r.Improvements {
		improvements[k] = slices.Clone(v)
	}
	return items, improvements
}
