package rules

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

var printer = message.NewPrinter(language.Japanese)

// priorityOrder is the fixed display order of metrics within one severity.
var priorityOrder = map[domain.Metric]int{
	domain.MetricCV:          0,
	domain.MetricConversions: 0,
	domain.MetricCTR:         1,
	domain.MetricCPM:         2,
	domain.MetricCPA:         3,
	domain.MetricBudgetRate:  4,
}

// MetricPriority returns the display rank of m. Metrics outside the fixed
// order share the lowest rank.
func MetricPriority(m domain.Metric) int {
	if p, ok := priorityOrder[m]; ok {
		return p
	}
	return len(priorityOrder)
}

// SortedMetrics returns the metrics of a target set in display order, with
// ties broken by name so iteration is deterministic.
func SortedMetrics(ts domain.TargetSet) []domain.Metric {
	out := make([]domain.Metric, 0, len(ts))
	for m := range ts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := MetricPriority(out[i]), MetricPriority(out[j])
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

// FormatValue renders a metric value the way every alert surface shows it.
func FormatValue(m domain.Metric, v float64) string {
	switch m {
	case domain.MetricCTR, domain.MetricCVR:
		return fmt.Sprintf("%.1f%%", v)
	case domain.MetricBudgetRate:
		return fmt.Sprintf("%d%%", int64(math.Round(v)))
	case domain.MetricCV, domain.MetricConversions:
		return fmt.Sprintf("%d件", int64(math.Round(v)))
	case domain.MetricCPA, domain.MetricCPM, domain.MetricCPC, domain.MetricDailyBudget:
		return Yen(v)
	case domain.MetricFrequency:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Yen renders an amount as a thousands-grouped integer with the currency unit.
func Yen(v float64) string {
	return printer.Sprintf("%d円", int64(math.Round(v)))
}

func conditionPhrase(c domain.Condition) string {
	switch c {
	case domain.ConditionBelow:
		return "以下"
	case domain.ConditionAbove:
		return "以上"
	default:
		return ""
	}
}
