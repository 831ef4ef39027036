package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
	metaMocks "github.com/donaldgifford/ad-alert-tracker/internal/meta/mocks"
	"github.com/donaldgifford/ad-alert-tracker/internal/notify"
	notifyMocks "github.com/donaldgifford/ad-alert-tracker/internal/notify/mocks"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

var yesterday = time.Date(2026, 3, 9, 0, 0, 0, 0, jst)

func newReportDedup(s dedup.Store, now func() time.Time) *dedup.Manager {
	return dedup.NewManager(s,
		dedup.WithLogger(quietLogger()),
		dedup.WithClock(now),
		dedup.WithLocation(jst),
		dedup.WithMode(dedup.ModeDaily),
	)
}

func reportUser(id string) domain.UserSettings {
	u := testUser(id)
	u.AlertsEnabled = false
	u.DailyReportEnabled = true
	return u
}

func titled(title string) any {
	return mock.MatchedBy(func(m notify.Message) bool { return m.Title == title })
}

func TestRunDailyReport_OncePerDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := metaMocks.NewMockMetricSource(t)
	src.EXPECT().
		DailyMetrics(mock.Anything, mock.Anything, yesterday, yesterday).
		Return([]domain.MetricSnapshot{{Date: yesterday, Spend: 4200, CTR: 1.5}}, nil)

	u := reportUser("u1")
	u.AdditionalAccounts = []domain.Account{{ID: "222", Name: "Shop B", ChatworkRoomID: "room-2"}}

	title := notify.DailyReportTitle(yesterday)
	mn := notifyMocks.NewMockNotifier(t)
	mn.EXPECT().Send(mock.Anything, notify.Destination{Token: "cw-token", RoomID: "room-1"}, titled(title)).
		Run(func(_ context.Context, _ notify.Destination, msg notify.Message) {
			assert.Contains(t, msg.Body, "消化金額（合計）：4,200円")
		}).
		Return(nil).
		Once()
	mn.EXPECT().Send(mock.Anything, notify.Destination{Token: "cw-token", RoomID: "room-2"}, titled(title)).
		Run(func(_ context.Context, _ notify.Destination, msg notify.Message) {
			assert.Contains(t, msg.Body, "アカウント: Shop B")
		}).
		Return(nil).
		Once()

	records := dedup.NewMemoryStore()
	eng := newTestEngine(newFileAlerts(t), src, newDedup(records), mn, StaticUsers{u},
		WithReportDedup(newReportDedup(records, fixedClock)))

	summary, err := eng.RunDailyReport(ctx, JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)
	assert.Equal(t, 2, summary.Accounts)
	assert.Equal(t, 2, summary.Reports)
	assert.Equal(t, 2, summary.Messages)

	recs, err := records.ListDedupRecords(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, FlowDailyReport, r.Metric)
		assert.True(t, strings.HasPrefix(r.Key, "2026-03-10_daily_report_"), r.Key)
	}

	// Later the same day nothing is resent.
	later := func() time.Time { return testNow.Add(6 * time.Hour) }
	eng = newTestEngine(newFileAlerts(t), src, newDedup(records), mn, StaticUsers{u},
		WithClock(later),
		WithReportDedup(newReportDedup(records, later)))

	summary, err = eng.RunDailyReport(ctx, JobOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Reports)
}

func TestRunDailyReport_SkipsUsersWithoutFlag(t *testing.T) {
	t.Parallel()

	u := reportUser("u1")
	u.DailyReportEnabled = false

	eng := newTestEngine(newFileAlerts(t), metaMocks.NewMockMetricSource(t),
		newDedup(dedup.NewMemoryStore()), notifyMocks.NewMockNotifier(t), StaticUsers{u})

	summary, err := eng.RunDailyReport(context.Background(), JobOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Users)
	assert.Zero(t, summary.Reports)
}

func TestRunDailyReport_FetchErrorSkipsReport(t *testing.T) {
	t.Parallel()

	src := metaMocks.NewMockMetricSource(t)
	src.EXPECT().
		DailyMetrics(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("token expired"))

	eng := newTestEngine(newFileAlerts(t), src, newDedup(dedup.NewMemoryStore()),
		notifyMocks.NewMockNotifier(t), StaticUsers{reportUser("u1")})

	summary, err := eng.RunDailyReport(context.Background(), JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FetchErrors)
	assert.Zero(t, summary.Reports)
}

func TestRunDailyReport_EmptyDayReportsZeros(t *testing.T) {
	t.Parallel()

	src := metaMocks.NewMockMetricSource(t)
	src.EXPECT().
		DailyMetrics(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	mn := notifyMocks.NewMockNotifier(t)
	mn.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ notify.Destination, msg notify.Message) {
			assert.Contains(t, msg.Body, "消化金額（合計）：0円")
		}).
		Return(nil).
		Once()

	eng := newTestEngine(newFileAlerts(t), src, newDedup(dedup.NewMemoryStore()), mn,
		StaticUsers{reportUser("u1")})

	summary, err := eng.RunDailyReport(context.Background(), JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reports)
}

func TestRunDailyReport_TokenNotice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		expiresIn  time.Duration
		wantNotice bool
	}{
		{name: "expiring soon", expiresIn: 3 * 24 * time.Hour, wantNotice: true},
		{name: "already expired", expiresIn: -time.Hour, wantNotice: true},
		{name: "far off", expiresIn: 30 * 24 * time.Hour, wantNotice: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := metaMocks.NewMockMetricSource(t)
			src.EXPECT().
				DailyMetrics(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return([]domain.MetricSnapshot{{Date: yesterday}}, nil)

			u := reportUser("u1")
			exp := testNow.Add(tt.expiresIn)
			u.MetaTokenExpiresAt = &exp

			mn := notifyMocks.NewMockNotifier(t)
			mn.EXPECT().Send(mock.Anything, mock.Anything, titled(notify.DailyReportTitle(yesterday))).
				Return(nil).
				Once()
			if tt.wantNotice {
				mn.EXPECT().
					Send(mock.Anything, notify.Destination{Token: "cw-token", RoomID: "room-1"}, titled(notify.TokenNoticeTitle)).
					Return(nil).
					Once()
			}

			records := dedup.NewMemoryStore()
			eng := newTestEngine(newFileAlerts(t), src, newDedup(records), mn, StaticUsers{u},
				WithReportDedup(newReportDedup(records, fixedClock)))

			summary, err := eng.RunDailyReport(context.Background(), JobOptions{})
			require.NoError(t, err)

			want := 1
			if tt.wantNotice {
				want = 2
			}
			assert.Equal(t, want, summary.Reports)
		})
	}
}

func TestRunDailyReport_NoDestination(t *testing.T) {
	t.Parallel()

	src := metaMocks.NewMockMetricSource(t)
	src.EXPECT().
		DailyMetrics(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.MetricSnapshot{{Date: yesterday}}, nil)

	u := reportUser("u1")
	u.ChatworkRoomID = ""

	records := dedup.NewMemoryStore()
	router := notify.NewRouter(notify.NewChatworkNotifier(), nil, notify.NewNoOpNotifier(quietLogger()))
	eng := newTestEngine(newFileAlerts(t), src, newDedup(records), router, StaticUsers{u},
		WithReportDedup(newReportDedup(records, fixedClock)))

	summary, err := eng.RunDailyReport(context.Background(), JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Undelivered)
	assert.Zero(t, summary.Reports)

	recs, err := records.ListDedupRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunDailyReport_TestModeBypassesDedup(t *testing.T) {
	t.Parallel()

	src := metaMocks.NewMockMetricSource(t)
	src.EXPECT().
		DailyMetrics(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.MetricSnapshot{{Date: yesterday}}, nil)

	u := reportUser("u1")
	u.DailyReportEnabled = false

	mn := notifyMocks.NewMockNotifier(t)
	mn.EXPECT().Send(mock.Anything, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ notify.Destination, msg notify.Message) {
			assert.Contains(t, msg.Body, "※これはテストメッセージです")
		}).
		Return(nil).
		Times(2)

	records := dedup.NewMemoryStore()
	eng := newTestEngine(newFileAlerts(t), src, newDedup(records), mn, StaticUsers{u},
		WithReportDedup(newReportDedup(records, fixedClock)))

	for range 2 {
		_, err := eng.RunDailyReport(context.Background(), JobOptions{TestMode: true, UserID: "u1"})
		require.NoError(t, err)
	}

	recs, err := records.ListDedupRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunUpdateNotice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	u := testUser("u1")
	u.UpdateNotificationsEnabled = true

	off := testUser("u2")
	off.ChatworkRoomID = "room-9"

	mn := notifyMocks.NewMockNotifier(t)
	mn.EXPECT().Send(mock.Anything, notify.Destination{Token: "cw-token", RoomID: "room-1"}, titled(notify.UpdateNoticeTitle)).
		Return(nil).
		Times(2)

	records := dedup.NewMemoryStore()
	users := StaticUsers{u, off}

	eng := newTestEngine(newFileAlerts(t), nil, newDedup(records), mn, users)
	summary, err := eng.RunUpdateNotice(ctx, JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Users)
	assert.Equal(t, 1, summary.Reports)

	// Same hour: suppressed.
	summary, err = eng.RunUpdateNotice(ctx, JobOptions{})
	require.NoError(t, err)
	assert.Zero(t, summary.Reports)

	// Next slot: sent again.
	later := func() time.Time { return testNow.Add(3 * time.Hour) }
	dd := dedup.NewManager(records,
		dedup.WithLogger(quietLogger()),
		dedup.WithClock(later),
		dedup.WithLocation(jst),
	)
	eng = newTestEngine(newFileAlerts(t), nil, dd, mn, users, WithClock(later))
	summary, err = eng.RunUpdateNotice(ctx, JobOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reports)
}
