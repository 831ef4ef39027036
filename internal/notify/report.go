package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// DailyReportTitle returns the daily report title for the reported day.
func DailyReportTitle(day time.Time) string {
	return fmt.Sprintf("Meta広告 日次レポート (%s)", day.Format("2006/1/2"))
}

// DailyReport renders one day of account performance. opts.Date is the
// reported day, not the send time.
func DailyReport(s *domain.MetricSnapshot, opts FormatOptions) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "[info][title]%s[/title]\n", DailyReportTitle(opts.Date))
	if opts.AccountName != "" {
		fmt.Fprintf(&b, "アカウント: %s\n", opts.AccountName)
	}

	fmt.Fprintf(&b, "消化金額（合計）：%s\n", rules.Yen(s.Spend))
	fmt.Fprintf(&b, "予算消化率（平均）：%s\n", rules.FormatValue(domain.MetricBudgetRate, s.BudgetRate))
	fmt.Fprintf(&b, "CTR（平均）：%s\n", rules.FormatValue(domain.MetricCTR, s.CTR))
	fmt.Fprintf(&b, "CPM（平均）：%s\n", rules.Yen(s.CPM))
	fmt.Fprintf(&b, "CPA（平均）：%s%s\n", rules.Yen(s.CPA), costBreakdown(s.Conversions.Breakdown, s.Spend))
	fmt.Fprintf(&b, "フリークエンシー（平均）：%.1f\n", s.Frequency)
	fmt.Fprintf(&b, "コンバージョン数：%d件%s",
		s.Conversions.Total, conversionBreakdown(s.Conversions.Breakdown))

	writeDashboardLink(&b, opts.DashboardURL)
	writeFooter(&b, opts.TestMode)

	return Message{Title: DailyReportTitle(opts.Date), Body: b.String()}
}

// UpdateNoticeTitle is the title of the intraday refresh notice.
const UpdateNoticeTitle = "Meta広告 定期更新通知"

// UpdateNotice tells a room that the dashboard numbers were refreshed.
func UpdateNotice(opts FormatOptions) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "[info][title]%s[/title]\n", UpdateNoticeTitle)
	if opts.AccountName != "" {
		fmt.Fprintf(&b, "アカウント: %s\n", opts.AccountName)
	}
	b.WriteString("数値を更新しました。\nご確認よろしくお願いいたします！")

	writeDashboardLink(&b, opts.DashboardURL)
	writeFooter(&b, opts.TestMode)

	return Message{Title: UpdateNoticeTitle, Body: b.String()}
}

// TokenNoticeTitle is the title of the access token renewal reminder.
const TokenNoticeTitle = "Meta API アクセストークン更新通知"

// TokenNotice reminds a user that their Meta access token expires at
// expiresAt. opts.Date is the send time.
func TokenNotice(expiresAt time.Time, opts FormatOptions) Message {
	days := int(expiresAt.Sub(opts.Date).Hours() / 24)

	var b strings.Builder
	fmt.Fprintf(&b, "[info][title]%s[/title]\n", TokenNoticeTitle)
	if days > 0 {
		fmt.Fprintf(&b, "Meta広告のアクセストークンの有効期限が%s（あと%d日）に切れます。\n",
			expiresAt.Format("2006/1/2"), days)
	} else {
		fmt.Fprintf(&b, "Meta広告のアクセストークンの有効期限が%sに切れます。\n",
			expiresAt.Format("2006/1/2"))
	}
	b.WriteString("期限が切れるとアラートとレポートが送信されなくなります。\n\n")
	b.WriteString("更新手順：\n")
	b.WriteString("1. Meta for Developers のグラフAPIエクスプローラーで新しいトークンを発行\n")
	b.WriteString("2. 長期トークンに交換\n")
	b.WriteString("3. 設定ファイルの meta_access_token と meta_token_expires_at を更新")

	writeDashboardLink(&b, opts.DashboardURL)
	writeFooter(&b, opts.TestMode)

	return Message{Title: TokenNoticeTitle, Body: b.String()}
}

func writeDashboardLink(b *strings.Builder, dashboardURL string) {
	if dash := strings.TrimRight(dashboardURL, "/"); dash != "" {
		fmt.Fprintf(b, "\n\n確認はこちら\n%s/dashboard", dash)
	}
}

func writeFooter(b *strings.Builder, testMode bool) {
	if testMode {
		b.WriteString("\n\n※これはテストメッセージです")
	}
	b.WriteString("[/info]")
}
