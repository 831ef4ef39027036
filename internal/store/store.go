// Package store defines the datastore abstraction for ad-alert-tracker.
// All business logic depends on the interfaces here, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// Retention defaults for the alert history.
const (
	DefaultMaxAlertAge     = 30 * 24 * time.Hour
	DefaultMaxAlertEntries = 1000
)

// AlertQuery defines optional filters for alert history queries.
type AlertQuery struct {
	UserID     string
	AccountID  *string // nil matches any account; "" is the primary account
	Metric     string
	ActiveOnly bool
	Since      *time.Time
	Until      *time.Time // exclusive
	Limit      int        // default 100
}

// AlertStore is the append-only alert history.
type AlertStore interface {
	// AppendAlerts writes alerts and supersedes strictly older active alerts
	// for the same user, account and metric.
	AppendAlerts(ctx context.Context, alerts []domain.Alert) error
	QueryAlerts(ctx context.Context, q *AlertQuery) ([]domain.Alert, error)
	// ResolveSuperseded resolves active alerts shadowed by a newer alert for
	// the same key and any active alert created before rolloverBefore.
	ResolveSuperseded(ctx context.Context, rolloverBefore time.Time) (int, error)
	// PruneAlerts deletes alerts older than maxAge and keeps at most
	// maxEntries of the newest.
	PruneAlerts(ctx context.Context, maxAge time.Duration, maxEntries int) (int, error)
}

// JobStore records scheduled job executions and coordinates scheduler locks.
type JobStore interface {
	InsertJobRun(ctx context.Context, jobName string) (id string, err error)
	CompleteJobRun(ctx context.Context, id string, status string, errText string, rowsAffected int) error
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	RecoverStaleJobRuns(ctx context.Context, olderThan time.Duration) (int, error)
	AcquireSchedulerLock(ctx context.Context, jobName string, holder string, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context, jobName string, holder string) error
}

// DedupStore persists "already sent" records. It matches dedup.Store.
type DedupStore interface {
	GetDedupRecord(ctx context.Context, key string) (domain.DedupRecord, bool, error)
	ClaimDedupRecord(ctx context.Context, rec domain.DedupRecord, notBefore time.Time) (bool, error)
	DeleteDedupRecordsBefore(ctx context.Context, cutoff time.Time) (int, error)
	DeleteDedupRecords(ctx context.Context, scope string) (int, error)
	ListDedupRecords(ctx context.Context) ([]domain.DedupRecord, error)
}

// Store defines all data access operations for ad-alert-tracker.
type Store interface {
	AlertStore
	JobStore
	DedupStore

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
