package dedup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager(t *testing.T, s Store, opts ...Option) (*Manager, *clock) {
	t.Helper()

	c := &clock{t: time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)}
	base := []Option{
		WithClock(c.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewManager(s, append(base, opts...)...), c
}

func alert(metric domain.Metric, msg string) domain.Alert {
	return domain.Alert{Metric: metric, Message: msg}
}

func TestManager_Key(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	at := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC) // 05:30 next day in JST

	tests := []struct {
		name  string
		opts  []Option
		scope string
		want  string
	}{
		{name: "hourly utc", want: "2026-03-10_20_ctr"},
		{name: "hourly scoped", scope: "u1:act_1", want: "2026-03-10_20_ctr_u1:act_1"},
		{name: "daily", opts: []Option{WithMode(ModeDaily)}, want: "2026-03-10_ctr"},
		{name: "location shifts date", opts: []Option{WithLocation(tokyo)}, want: "2026-03-11_05_ctr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewManager(NewMemoryStore(), tt.opts...)
			assert.Equal(t, tt.want, m.Key(domain.MetricCTR, tt.scope, at))
		})
	}
}

func TestManager_DailyModeWidensWindow(t *testing.T) {
	t.Parallel()

	m := NewManager(NewMemoryStore(), WithMode(ModeDaily))
	assert.Equal(t, 24*time.Hour, m.window)
}

func TestFilterDuplicates_IntraBatch(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, NewMemoryStore())

	in := []domain.Alert{
		alert(domain.MetricCTR, "CTR low"),
		alert(domain.MetricCTR, "CTR low"),
		alert(domain.MetricCTR, "CTR dropped 40%"),
		alert(domain.MetricCPA, "CPA high"),
	}

	out := m.FilterDuplicates(context.Background(), in, "u1")
	require.Len(t, out, 3)
	assert.Equal(t, "CTR low", out[0].Message)
	assert.Equal(t, "CTR dropped 40%", out[1].Message)
	assert.Equal(t, domain.MetricCPA, out[2].Metric)
}

func TestFilterDuplicates_CrossCallWithinWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, c := newTestManager(t, NewMemoryStore())
	batch := []domain.Alert{alert(domain.MetricCTR, "CTR low")}

	first := m.FilterDuplicates(ctx, batch, "u1")
	require.Len(t, first, 1)

	claimed, err := m.MarkSent(ctx, domain.MetricCTR, "u1")
	require.NoError(t, err)
	assert.True(t, claimed)

	c.Advance(20 * time.Minute)
	assert.Empty(t, m.FilterDuplicates(ctx, batch, "u1"), "same bucket within window is suppressed")
	assert.Len(t, m.FilterDuplicates(ctx, batch, "u2"), 1, "other scopes are independent")

	c.Advance(time.Hour)
	assert.Len(t, m.FilterDuplicates(ctx, batch, "u1"), 1, "next hour bucket is notifiable again")
}

func TestFilterDuplicates_UnmarkedFailureRetries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, NewMemoryStore())
	batch := []domain.Alert{alert(domain.MetricCV, "CV zero")}

	// First pass filters but the send "fails", so nothing is marked.
	require.Len(t, m.FilterDuplicates(ctx, batch, "u1"), 1)
	assert.Len(t, m.FilterDuplicates(ctx, batch, "u1"), 1)
}

type failingStore struct {
	*MemoryStore
}

func (failingStore) GetDedupRecord(context.Context, string) (domain.DedupRecord, bool, error) {
	return domain.DedupRecord{}, false, errors.New("store down")
}

func (failingStore) ClaimDedupRecord(context.Context, domain.DedupRecord, time.Time) (bool, error) {
	return false, errors.New("store down")
}

func TestFilterDuplicates_StoreErrorFailsOpen(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, failingStore{NewMemoryStore()})
	out := m.FilterDuplicates(context.Background(), []domain.Alert{alert(domain.MetricCTR, "x")}, "u1")
	assert.Len(t, out, 1)

	_, err := m.MarkSent(context.Background(), domain.MetricCTR, "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestMarkSent_ClaimOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, NewMemoryStore())

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.MarkSent(ctx, domain.MetricCPM, "u1")
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestManager_LockSerializesScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, NewMemoryStore())
	batch := []domain.Alert{alert(domain.MetricCTR, "CTR low")}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("u1")
			defer unlock()

			out := m.FilterDuplicates(ctx, batch, "u1")
			for _, a := range out {
				mu.Lock()
				sent++
				mu.Unlock()
				_, err := m.MarkSent(ctx, a.Metric, "u1")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sent)
}

func TestCollapse(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	in := []domain.Alert{
		{ID: "old", Metric: domain.MetricCTR, TargetValue: 2.5, CurrentValue: 1.9, Timestamp: base},
		{ID: "cpa", Metric: domain.MetricCPA, TargetValue: 2000, CurrentValue: 2500, Timestamp: base.Add(time.Minute)},
		{ID: "new", Metric: domain.MetricCTR, TargetValue: 2.5, CurrentValue: 1.9, Timestamp: base.Add(time.Hour)},
		{ID: "other", Metric: domain.MetricCTR, TargetValue: 2.5, CurrentValue: 1.7, Timestamp: base.Add(30 * time.Minute)},
	}

	out := Collapse(in)
	ids := make([]string, 0, len(out))
	for _, a := range out {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"new", "other", "cpa"}, ids)
	assert.Equal(t, "old", in[0].ID, "input must not be reordered")
}

func TestManager_CleanupAndStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, c := newTestManager(t, NewMemoryStore())

	_, err := m.MarkSent(ctx, domain.MetricCTR, "u1")
	require.NoError(t, err)
	c.Advance(23 * time.Hour)
	_, err = m.MarkSent(ctx, domain.MetricCPA, "u1")
	require.NoError(t, err)

	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
	assert.Equal(t, domain.MetricCPA, st.Records[0].Metric, "newest first")
	assert.Equal(t, ModeHourly, st.Mode)

	c.Advance(2 * time.Hour)
	n, err := m.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	st, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Count)
}

func TestManager_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := newTestManager(t, NewMemoryStore())

	for _, scope := range []string{"u1", "u1", "u2"} {
		_, err := m.MarkSent(ctx, domain.MetricCTR, scope)
		require.NoError(t, err)
	}
	_, err := m.MarkSent(ctx, domain.MetricCPA, "u1")
	require.NoError(t, err)

	n, err := m.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = m.Reset(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
