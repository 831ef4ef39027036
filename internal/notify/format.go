package notify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const (
	iconCritical = "🔴"
	iconWarning  = "⚠️"
)

// FormatOptions controls how an alert digest is rendered.
type FormatOptions struct {
	Date         time.Time
	AccountName  string
	DashboardURL string // links are omitted when empty
	TestMode     bool
	Table        *rules.GoalTable // nil uses the embedded table
}

// AlertTitle returns the digest title for date.
func AlertTitle(date time.Time) string {
	return fmt.Sprintf("Meta広告 アラート通知 (%s)", date.Format("2006/1/2"))
}

// AlertDigest renders alerts into a chat message.
func AlertDigest(alerts []domain.Alert, opts FormatOptions) Message {
	return Message{
		Title: AlertTitle(opts.Date),
		Body:  FormatAlertMessage(alerts, opts),
	}
}

// FormatAlertMessage renders alerts as one Chatwork info block, critical
// alerts first and then by metric priority. The input is not modified.
func FormatAlertMessage(alerts []domain.Alert, opts FormatOptions) string {
	table := opts.Table
	if table == nil {
		table = rules.Default()
	}

	sorted := make([]domain.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci := sorted[i].Severity == domain.SeverityCritical
		cj := sorted[j].Severity == domain.SeverityCritical
		if ci != cj {
			return ci
		}
		return rules.MetricPriority(sorted[i].Metric) < rules.MetricPriority(sorted[j].Metric)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "[info][title]%s[/title]\n", AlertTitle(opts.Date))
	if opts.AccountName != "" {
		fmt.Fprintf(&b, "アカウント: %s\n", opts.AccountName)
	}
	b.WriteString("以下の指標が目標値から外れています：\n\n")

	for i := range sorted {
		b.WriteString(alertLine(&sorted[i], table))
		b.WriteByte('\n')
	}

	if dash := strings.TrimRight(opts.DashboardURL, "/"); dash != "" {
		b.WriteString("\n📊 詳細はダッシュボードでご確認ください：\n")
		fmt.Fprintf(&b, "%s/dashboard\n\n", dash)
		fmt.Fprintf(&b, "✅ 確認事項：%s/improvement-tasks\n", dash)
		fmt.Fprintf(&b, "💡 改善施策：%s/improvement-strategies", dash)
	}

	if opts.TestMode {
		b.WriteString("\n\n※これはテストメッセージです")
	}

	b.WriteString("[/info]")
	return b.String()
}

func alertLine(a *domain.Alert, table *rules.GoalTable) string {
	icon := iconWarning
	if a.Severity == domain.SeverityCritical {
		icon = iconCritical
	}

	name := chatName(a.Metric, table)

	if a.Kind == domain.KindDayOverDay && a.PreviousValue != nil {
		line := fmt.Sprintf("%s %s: 前日 %s → 当日 %s",
			icon, name,
			rules.FormatValue(a.Metric, *a.PreviousValue),
			rules.FormatValue(a.Metric, a.CurrentValue),
		)
		if a.ChangeRate != nil {
			line += fmt.Sprintf(" (前日比%+d%%)", int64(math.Round(*a.ChangeRate*100)))
		}
		return line
	}

	line := fmt.Sprintf("%s %s: 目標 %s → 実績 %s",
		icon, name,
		rules.FormatValue(a.Metric, a.TargetValue),
		rules.FormatValue(a.Metric, a.CurrentValue),
	)

	switch a.Metric {
	case domain.MetricCV, domain.MetricConversions:
		line += conversionBreakdown(a.Breakdown)
	case domain.MetricCPA:
		line += costBreakdown(a.Breakdown, a.Spend)
	}
	return line
}

// chatName labels conversions the same way as cv in chat.
func chatName(m domain.Metric, table *rules.GoalTable) string {
	if m == domain.MetricConversions {
		m = domain.MetricCV
	}
	return table.DisplayName(m)
}

// conversionBreakdown lists per-event counts when more than one event type
// contributed.
func conversionBreakdown(events []domain.ConversionEvent) string {
	if len(events) < 2 {
		return ""
	}
	items := make([]string, 0, len(events))
	for _, e := range events {
		items = append(items, fmt.Sprintf("%s: %d件", e.Type, e.Count))
	}
	return " (" + strings.Join(items, "、") + ")"
}

// costBreakdown lists total spend divided by each event's count.
func costBreakdown(events []domain.ConversionEvent, spend float64) string {
	if len(events) < 2 || spend <= 0 {
		return ""
	}
	items := make([]string, 0, len(events))
	for _, e := range events {
		cost := 0.0
		if e.Count > 0 {
			cost = spend / float64(e.Count)
		}
		items = append(items, fmt.Sprintf("%s: %s", e.Type, rules.Yen(cost)))
	}
	return " (" + strings.Join(items, "、") + ")"
}
