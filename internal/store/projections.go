package store

import (
	"sort"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// ConfirmationItems flattens the check items of alerts in the order given.
// It derives nothing beyond what each alert carries.
func ConfirmationItems(alerts []domain.Alert) []domain.ConfirmationItem {
	out := []domain.ConfirmationItem{}
	for i := range alerts {
		a := &alerts[i]
		for _, ci := range a.CheckItems {
			out = append(out, domain.ConfirmationItem{
				AlertID:     a.ID,
				UserID:      a.UserID,
				AccountID:   a.AccountID,
				Metric:      a.Metric,
				Severity:    a.Severity,
				Message:     a.Message,
				Priority:    ci.Priority,
				Title:       ci.Title,
				Description: ci.Description,
			})
		}
	}
	return out
}

// ImprovementStrategies flattens the improvements of alerts. Categories that
// match a check item title follow check item order; the rest follow by name.
func ImprovementStrategies(alerts []domain.Alert) []domain.ImprovementStrategy {
	out := []domain.ImprovementStrategy{}
	for i := range alerts {
		a := &alerts[i]
		for _, cat := range orderedCategories(a) {
			out = append(out, domain.ImprovementStrategy{
				AlertID:   a.ID,
				UserID:    a.UserID,
				AccountID: a.AccountID,
				Metric:    a.Metric,
				Category:  cat,
				Actions:   append([]string(nil), a.Improvements[cat]...),
			})
		}
	}
	return out
}

func orderedCategories(a *domain.Alert) []string {
	cats := make([]string, 0, len(a.Improvements))
	seen := make(map[string]struct{}, len(a.Improvements))

	for _, ci := range a.CheckItems {
		if _, ok := a.Improvements[ci.Title]; ok {
			if _, dup := seen[ci.Title]; !dup {
				cats = append(cats, ci.Title)
				seen[ci.Title] = struct{}{}
			}
		}
	}

	var rest []string
	for cat := range a.Improvements {
		if _, ok := seen[cat]; !ok {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)

	return append(cats, rest...)
}

// DayBounds returns the start of the calendar day containing t in loc and the
// start of the following day.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	lt := t.In(loc)
	start = time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
