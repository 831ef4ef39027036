// Package dedup suppresses repeated notifications of the same alert
// condition within a time window. State lives behind an injectable Store so
// the same Manager works in memory, on Postgres, or on Redis.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// Mode selects the bucket granularity of dedup keys.
type Mode string

// Mode constants.
const (
	ModeHourly Mode = "hourly"
	ModeDaily  Mode = "daily"
)

const (
	defaultWindow    = time.Hour
	defaultRetention = 24 * time.Hour
)

// Suppression reasons reported to metrics.
const (
	ReasonBatchDuplicate = "batch_duplicate"
	ReasonAlreadySent    = "already_sent"
	ReasonCollapsed      = "collapsed"
)

// Store persists dedup records.
type Store interface {
	// GetDedupRecord returns the record for key and whether it exists.
	GetDedupRecord(ctx context.Context, key string) (domain.DedupRecord, bool, error)
	// ClaimDedupRecord stores rec unless a record with the same key was sent
	// at or after notBefore. It reports whether this call won the claim.
	ClaimDedupRecord(ctx context.Context, rec domain.DedupRecord, notBefore time.Time) (bool, error)
	DeleteDedupRecordsBefore(ctx context.Context, cutoff time.Time) (int, error)
	// DeleteDedupRecords removes every record for scope, or all records when
	// scope is empty.
	DeleteDedupRecords(ctx context.Context, scope string) (int, error)
	ListDedupRecords(ctx context.Context) ([]domain.DedupRecord, error)
}

// Manager applies intra-batch and cross-call deduplication.
type Manager struct {
	store     Store
	log       *slog.Logger
	now       func() time.Time
	loc       *time.Location
	window    time.Duration
	retention time.Duration
	mode      Mode

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLocation sets the time zone used to derive date and hour buckets.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		m.loc = loc
	}
}

// WithWindow sets the suppression window.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithRetention sets how long records are kept before Cleanup purges them.
func WithRetention(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retention = d
		}
	}
}

// WithMode selects hourly or daily buckets. Daily mode widens the window to
// 24 hours.
func WithMode(mode Mode) Option {
	return func(m *Manager) {
		m.mode = mode
	}
}

// NewManager creates a Manager over s.
func NewManager(s Store, opts ...Option) *Manager {
	m := &Manager{
		store:     s,
		log:       slog.Default(),
		now:       time.Now,
		loc:       time.UTC,
		window:    defaultWindow,
		retention: defaultRetention,
		mode:      ModeHourly,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.mode == ModeDaily && m.window < 24*time.Hour {
		m.window = 24 * time.Hour
	}
	return m
}

// Key returns the bucket key for metric and scope at time at.
func (m *Manager) Key(metric domain.Metric, scope string, at time.Time) string {
	t := at.In(m.loc)

	key := t.Format("2006-01-02")
	if m.mode != ModeDaily {
		key += fmt.Sprintf("_%02d", t.Hour())
	}
	key += "_" + string(metric)
	if scope != "" {
		key += "_" + scope
	}
	return key
}

// Lock serializes dedup passes for one scope within this process. Callers
// hold it across filter, send and mark so two overlapping runs cannot both
// pass the same bucket.
func (m *Manager) Lock(scope string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[scope]
	if !ok {
		l = &sync.Mutex{}
		m.locks[scope] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// FilterDuplicates drops alerts repeated within the batch (same metric and
// message) and alerts whose bucket was already sent within the window. A
// store read failure keeps the alert: a possible duplicate is preferred over
// a lost notification.
func (m *Manager) FilterDuplicates(
	ctx context.Context,
	alerts []domain.Alert,
	scope string,
) []domain.Alert {
	seen := make(map[string]struct{}, len(alerts))
	sent := make(map[domain.Metric]bool)
	out := make([]domain.Alert, 0, len(alerts))

	for i := range alerts {
		a := alerts[i]

		batchKey := string(a.Metric) + "\x00" + a.Message
		if _, dup := seen[batchKey]; dup {
			metrics.AlertsSuppressedTotal.WithLabelValues(ReasonBatchDuplicate).Inc()
			continue
		}
		seen[batchKey] = struct{}{}

		already, checked := sent[a.Metric]
		if !checked {
			var err error
			already, err = m.IsAlreadySent(ctx, a.Metric, scope)
			if err != nil {
				metrics.DedupStoreErrorsTotal.Inc()
				m.log.Warn("dedup lookup failed, keeping alert",
					"metric", a.Metric,
					"scope", scope,
					"error", err,
				)
				already = false
			}
			sent[a.Metric] = already
		}

		if already {
			metrics.AlertsSuppressedTotal.WithLabelValues(ReasonAlreadySent).Inc()
			m.log.Debug("alert suppressed", "metric", a.Metric, "scope", scope)
			continue
		}

		out = append(out, a)
	}

	return out
}

// IsAlreadySent reports whether metric was sent for scope within the current
// bucket and window.
func (m *Manager) IsAlreadySent(
	ctx context.Context,
	metric domain.Metric,
	scope string,
) (bool, error) {
	now := m.now()

	rec, ok, err := m.store.GetDedupRecord(ctx, m.Key(metric, scope, now))
	if err != nil {
		return false, fmt.Errorf("reading dedup record: %w", err)
	}
	if !ok {
		return false, nil
	}

	return now.Sub(rec.SentAt) < m.window, nil
}

// MarkSent records a successful dispatch of metric for scope. It reports
// false when another caller already claimed the bucket.
func (m *Manager) MarkSent(
	ctx context.Context,
	metric domain.Metric,
	scope string,
) (bool, error) {
	now := m.now()
	rec := domain.DedupRecord{
		Key:    m.Key(metric, scope, now),
		Metric: metric,
		Scope:  scope,
		SentAt: now,
	}

	claimed, err := m.store.ClaimDedupRecord(ctx, rec, now.Add(-m.window))
	if err != nil {
		metrics.DedupStoreErrorsTotal.Inc()
		return false, fmt.Errorf("marking %s sent: %w", metric, err)
	}
	return claimed, nil
}

// Collapse keeps the newest alert per (metric, target, current) triple and
// returns them newest first.
func Collapse(alerts []domain.Alert) []domain.Alert {
	sorted := make([]domain.Alert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	type triple struct {
		metric  domain.Metric
		target  float64
		current float64
	}

	seen := make(map[triple]struct{}, len(sorted))
	out := make([]domain.Alert, 0, len(sorted))
	for i := range sorted {
		k := triple{sorted[i].Metric, sorted[i].TargetValue, sorted[i].CurrentValue}
		if _, dup := seen[k]; dup {
			metrics.AlertsSuppressedTotal.WithLabelValues(ReasonCollapsed).Inc()
			continue
		}
		seen[k] = struct{}{}
		out = append(out, sorted[i])
	}
	return out
}

// Cleanup purges records older than the retention horizon.
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.retention)

	n, err := m.store.DeleteDedupRecordsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging dedup records: %w", err)
	}
	if n > 0 {
		m.log.Info("dedup records purged", "count", n, "cutoff", cutoff)
	}

	if recs, err := m.store.ListDedupRecords(ctx); err == nil {
		metrics.DedupRecords.Set(float64(len(recs)))
	}
	return n, nil
}

// Status is an operator snapshot of dedup state.
type Status struct {
	Mode      Mode                 `json:"mode"`
	Window    string               `json:"window"`
	Retention string               `json:"retention"`
	Count     int                  `json:"count"`
	Records   []domain.DedupRecord `json:"records"`
}

// Status returns the current records, newest first.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	recs, err := m.store.ListDedupRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dedup records: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].SentAt.After(recs[j].SentAt)
	})
	if recs == nil {
		recs = []domain.DedupRecord{}
	}

	metrics.DedupRecords.Set(float64(len(recs)))

	return &Status{
		Mode:      m.mode,
		Window:    m.window.String(),
		Retention: m.retention.String(),
		Count:     len(recs),
		Records:   recs,
	}, nil
}

// Reset removes records for scope, or everything when scope is empty.
func (m *Manager) Reset(ctx context.Context, scope string) (int, error) {
	n, err := m.store.DeleteDedupRecords(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("resetting dedup records: %w", err)
	}
	m.log.Info("dedup records reset", "scope", scope, "count", n)
	return n, nil
}
