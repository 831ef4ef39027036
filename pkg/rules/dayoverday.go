package rules

import (
	"fmt"
	"math"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// DayOverDayMetrics are the metrics compared between adjacent days.
var DayOverDayMetrics = []domain.Metric{
	domain.MetricCTR,
	domain.MetricCPM,
	domain.MetricCPA,
	domain.MetricConversions,
	domain.MetricFrequency,
	domain.MetricBudgetRate,
}

// EvaluateDayOverDay compares two adjacent daily snapshots. A metric whose
// previous value is zero is skipped. Critical takes precedence over warning.
func EvaluateDayOverDay(
	current, previous domain.MetricSnapshot,
	table *GoalTable,
	opts Options,
) []domain.Alert {
	var alerts []domain.Alert

	for _, m := range DayOverDayMetrics {
		prev := previous.Value(m)
		if prev == 0 {
			continue
		}
		cur := current.Value(m)

		changeRate := (cur - prev) / prev
		meta := table.Meta(m)
		severity, ok := dayOverDaySeverity(meta.Direction, changeRate, table.DayOverDayRatios(m))
		if !ok {
			continue
		}

		a := domain.Alert{
			UserID:        opts.UserID,
			Metric:        m,
			Kind:          domain.KindDayOverDay,
			Message:       dayOverDayMessage(meta.DisplayName, m, changeRate, prev, cur),
			TargetValue:   prev,
			CurrentValue:  cur,
			PreviousValue: &prev,
			ChangeRate:    &changeRate,
			Severity:      severity,
			Status:        domain.StatusActive,
			Timestamp:     opts.Now,
		}

		if worsened(meta.Direction, changeRate, table.DayOverDay.CauseCutoff) {
			a.CheckItems, a.Improvements = cloneRemediation(table.causeFor(m))
		} else {
			a.CheckItems, a.Improvements = cloneRemediation(Remediation{})
		}

		alerts = append(alerts, a)
	}

	return alerts
}

func dayOverDaySeverity(
	dir domain.Direction,
	changeRate float64,
	r Ratios,
) (domain.Severity, bool) {
	move := changeRate
	if dir == domain.HigherBetter {
		move = -changeRate
	}

	switch {
	case move > r.Critical:
		return domain.SeverityCritical, true
	case move > r.Warning:
		return domain.SeverityWarning, true
	default:
		return "", false
	}
}

func worsened(dir domain.Direction, changeRate, cutoff float64) bool {
	if dir == domain.HigherBetter {
		return changeRate < -cutoff
	}
	return changeRate > cutoff
}

func dayOverDayMessage(name string, m domain.Metric, changeRate, prev, cur float64) string {
	verb := "上昇"
	if changeRate < 0 {
		verb = "下落"
	}
	pct := int64(math.Abs(math.Round(changeRate * 100)))

	return fmt.Sprintf("%sが前日比%d%%%s（前日: %s → 当日: %s）",
		name, pct, verb, FormatValue(m, prev), FormatValue(m, cur))
}
