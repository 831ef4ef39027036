package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

func TestDailyReport(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	snap := &domain.MetricSnapshot{
		Date:       day,
		Spend:      12345.6,
		BudgetRate: 82.4,
		CTR:        1.234,
		CPM:        1820.2,
		CPA:        4115.2,
		Frequency:  1.46,
		Conversions: domain.Conversions{Total: 3, Breakdown: []domain.ConversionEvent{
			{Type: "Lead", Count: 2},
			{Type: "Purchase", Count: 1},
		}},
	}

	msg := DailyReport(snap, FormatOptions{Date: day, DashboardURL: "https://ads.example.com/"})

	want := "[info][title]Meta広告 日次レポート (2026/3/9)[/title]\n" +
		"消化金額（合計）：12,346円\n" +
		"予算消化率（平均）：82%\n" +
		"CTR（平均）：1.2%\n" +
		"CPM（平均）：1,820円\n" +
		"CPA（平均）：4,115円 (Lead: 6,173円、Purchase: 12,346円)\n" +
		"フリークエンシー（平均）：1.5\n" +
		"コンバージョン数：3件 (Lead: 2件、Purchase: 1件)\n\n" +
		"確認はこちら\nhttps://ads.example.com/dashboard" +
		"[/info]"
	assert.Equal(t, "Meta広告 日次レポート (2026/3/9)", msg.Title)
	assert.Equal(t, want, msg.Body)
}

func TestDailyReport_NoDataAndTestMode(t *testing.T) {
	t.Parallel()

	msg := DailyReport(&domain.MetricSnapshot{}, FormatOptions{
		Date:        digestDate,
		AccountName: "Shop B",
		TestMode:    true,
	})

	assert.Contains(t, msg.Body, "アカウント: Shop B\n")
	assert.Contains(t, msg.Body, "消化金額（合計）：0円\n")
	assert.Contains(t, msg.Body, "コンバージョン数：0件")
	assert.NotContains(t, msg.Body, "確認はこちら")
	assert.True(t, strings.HasSuffix(msg.Body, "※これはテストメッセージです[/info]"))
}

func TestUpdateNotice(t *testing.T) {
	t.Parallel()

	msg := UpdateNotice(FormatOptions{Date: digestDate, DashboardURL: "https://ads.example.com"})

	want := "[info][title]Meta広告 定期更新通知[/title]\n" +
		"数値を更新しました。\nご確認よろしくお願いいたします！\n\n" +
		"確認はこちら\nhttps://ads.example.com/dashboard[/info]"
	assert.Equal(t, UpdateNoticeTitle, msg.Title)
	assert.Equal(t, want, msg.Body)
}

func TestTokenNotice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expires time.Time
		want    string
	}{
		{
			name:    "days remaining",
			expires: digestDate.Add(5 * 24 * time.Hour),
			want:    "有効期限が2026/3/15（あと5日）に切れます。",
		},
		{
			name:    "expires today",
			expires: digestDate.Add(3 * time.Hour),
			want:    "有効期限が2026/3/10に切れます。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := TokenNotice(tt.expires, FormatOptions{Date: digestDate})
			assert.Equal(t, TokenNoticeTitle, msg.Title)
			assert.True(t, strings.HasPrefix(msg.Body, "[info][title]Meta API アクセストークン更新通知[/title]\n"))
			assert.Contains(t, msg.Body, tt.want)
			assert.True(t, strings.HasSuffix(msg.Body, "[/info]"))
		})
	}
}
