package meta

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// standardEvents are Meta standard conversion events counted as-is.
var standardEvents = map[string]struct{}{
	"purchase":              {},
	"lead":                  {},
	"complete_registration": {},
	"add_to_cart":           {},
	"initiate_checkout":     {},
	"add_payment_info":      {},
	"subscribe":             {},
	"start_trial":           {},
	"submit_application":    {},
	"schedule":              {},
	"contact":               {},
	"donate":                {},
}

var omniEvents = []string{"purchase", "lead", "complete_registration", "add_to_cart", "initiated_checkout"}

// classifyAction reports whether an action type counts as a conversion, the
// label it is reported under, and its priority when values collide.
func classifyAction(actionType string) (label string, priority int, ok bool) {
	if _, std := standardEvents[actionType]; std {
		return actionType, 10, true
	}

	switch {
	case strings.HasPrefix(actionType, "offsite_conversion.") && !strings.Contains(actionType, "view_content"):
		if actionType == "offsite_conversion.fb_pixel_custom" {
			return "カスタムCV", 8, true
		}
		return actionType, 8, true
	case strings.Contains(actionType, "meta_leads"):
		return "Metaリード", 15, true
	case strings.HasPrefix(actionType, "offsite_content_view_add_"):
		return "リード広告CV", 12, true
	case strings.HasPrefix(actionType, "omni_") && containsAny(actionType, omniEvents):
		return actionType, 6, true
	case strings.Contains(strings.ToLower(actionType), "lead"):
		return actionType, 5, true
	default:
		return "", 0, false
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ConversionsFromActions counts conversions in an insights actions list.
// Meta reports one conversion under several action types, so actions with
// the same count collapse to the highest-priority one.
func ConversionsFromActions(actions []Action) domain.Conversions {
	type pick struct {
		label    string
		priority int
	}
	byCount := make(map[int]pick)

	for _, a := range actions {
		label, priority, ok := classifyAction(a.ActionType)
		if !ok {
			continue
		}
		count := parseCount(a.Value)
		if count <= 0 {
			continue
		}
		if cur, seen := byCount[count]; !seen || cur.priority < priority {
			byCount[count] = pick{label: label, priority: priority}
		}
	}

	counts := make([]int, 0, len(byCount))
	for c := range byCount {
		counts = append(counts, c)
	}
	sort.Ints(counts)

	out := domain.Conversions{Breakdown: make([]domain.ConversionEvent, 0, len(counts))}
	for _, c := range counts {
		out.Total += c
		out.Breakdown = append(out.Breakdown, domain.ConversionEvent{Type: byCount[c].label, Count: c})
	}
	return out
}

// parseCount reads an integer-valued action count. Fractional values
// truncate the way Meta's own UI rounds attributed conversions.
func parseCount(v string) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// toSnapshot converts one daily insights row. Missing fields read as zero.
// Without a known daily budget the budget rate reads as 100 so budget
// alerts stay quiet.
func toSnapshot(row *insightsRow, dailyBudget float64, loc *time.Location) (domain.MetricSnapshot, error) {
	date, err := time.ParseInLocation(time.DateOnly, row.DateStart, loc)
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("parsing date_start %q: %w", row.DateStart, err)
	}

	spend := parseFloat(row.Spend)
	impressions := int64(parseFloat(row.Impressions))
	reach := parseFloat(row.Reach)
	conv := ConversionsFromActions(row.Actions)

	s := domain.MetricSnapshot{
		Date:        date,
		Spend:       spend,
		Impressions: impressions,
		Clicks:      int64(parseFloat(row.Clicks)),
		CTR:         parseFloat(row.CTR),
		CPM:         parseFloat(row.CPM),
		CPC:         parseFloat(row.CPC),
		Conversions: conv,
		BudgetRate:  100,
	}

	if conv.Total > 0 {
		s.CPA = spend / float64(conv.Total)
	}
	if dailyBudget > 0 {
		s.BudgetRate = spend / dailyBudget * 100
	}
	if reach > 0 {
		s.Frequency = float64(impressions) / reach
	}
	return s, nil
}
