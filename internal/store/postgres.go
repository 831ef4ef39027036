package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption configures the connection pool.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize caps the number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = int32(n) //nolint:gosec // pool sizes are small
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// AppendAlerts inserts alerts in one transaction, superseding strictly older
// active alerts for each (user, account, metric).
func (s *PostgresStore) AppendAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for i := range alerts {
			a := &alerts[i]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			if a.Status == "" {
				a.Status = domain.StatusActive
			}
			if a.Timestamp.IsZero() {
				a.Timestamp = time.Now()
			}

			if _, err := tx.Exec(ctx, querySupersedeAlerts,
				a.UserID, a.AccountID, a.Metric, a.Timestamp,
			); err != nil {
				return fmt.Errorf("superseding alerts for %s: %w", a.Metric, err)
			}

			if _, err := tx.Exec(ctx, queryInsertAlert, alertArgs(a)); err != nil {
				return fmt.Errorf("inserting alert %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

func alertArgs(a *domain.Alert) pgx.NamedArgs {
	checkItems := a.CheckItems
	if checkItems == nil {
		checkItems = []domain.CheckItem{}
	}
	improvements := a.Improvements
	if improvements == nil {
		improvements = map[string][]string{}
	}
	breakdown := a.Breakdown
	if breakdown == nil {
		breakdown = []domain.ConversionEvent{}
	}

	return pgx.NamedArgs{
		"id":             a.ID,
		"user_id":        a.UserID,
		"account_id":     a.AccountID,
		"account_name":   a.AccountName,
		"metric":         string(a.Metric),
		"kind":           string(a.Kind),
		"message":        a.Message,
		"target_value":   a.TargetValue,
		"current_value":  a.CurrentValue,
		"previous_value": a.PreviousValue,
		"change_rate":    a.ChangeRate,
		"severity":       string(a.Severity),
		"status":         string(a.Status),
		"created_at":     a.Timestamp,
		"check_items":    checkItems,
		"improvements":   improvements,
		"breakdown":      breakdown,
		"spend":          a.Spend,
	}
}

// QueryAlerts returns alerts matching q, newest first.
func (s *PostgresStore) QueryAlerts(ctx context.Context, q *AlertQuery) ([]domain.Alert, error) {
	sql, args := q.ToSQL()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.AccountID, &a.AccountName, &a.Metric, &a.Kind, &a.Message,
			&a.TargetValue, &a.CurrentValue, &a.PreviousValue, &a.ChangeRate,
			&a.Severity, &a.Status, &a.Timestamp, &a.ResolvedAt,
			&a.CheckItems, &a.Improvements, &a.Breakdown, &a.Spend,
		); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// ResolveSuperseded resolves shadowed alerts and alerts older than
// rolloverBefore. Returns the number of alerts resolved.
func (s *PostgresStore) ResolveSuperseded(ctx context.Context, rolloverBefore time.Time) (int, error) {
	shadowed, err := s.pool.Exec(ctx, queryResolveShadowedAlerts)
	if err != nil {
		return 0, fmt.Errorf("resolving shadowed alerts: %w", err)
	}

	stale, err := s.pool.Exec(ctx, queryResolveStaleAlerts, rolloverBefore)
	if err != nil {
		return int(shadowed.RowsAffected()), fmt.Errorf("resolving stale alerts: %w", err)
	}

	return int(shadowed.RowsAffected() + stale.RowsAffected()), nil
}

// PruneAlerts enforces the history retention bounds.
func (s *PostgresStore) PruneAlerts(ctx context.Context, maxAge time.Duration, maxEntries int) (int, error) {
	var total int64

	if maxAge > 0 {
		tag, err := s.pool.Exec(ctx, queryDeleteAlertsBefore, time.Now().Add(-maxAge))
		if err != nil {
			return 0, fmt.Errorf("pruning old alerts: %w", err)
		}
		total += tag.RowsAffected()
	}

	if maxEntries > 0 {
		tag, err := s.pool.Exec(ctx, queryDeleteAlertsBeyond, maxEntries)
		if err != nil {
			return int(total), fmt.Errorf("pruning excess alerts: %w", err)
		}
		total += tag.RowsAffected()
	}

	return int(total), nil
}

// GetDedupRecord returns the dedup record for key.
func (s *PostgresStore) GetDedupRecord(ctx context.Context, key string) (domain.DedupRecord, bool, error) {
	var r domain.DedupRecord
	err := s.pool.QueryRow(ctx, queryGetDedupRecord, key).Scan(&r.Key, &r.Metric, &r.Scope, &r.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DedupRecord{}, false, nil
	}
	if err != nil {
		return domain.DedupRecord{}, false, fmt.Errorf("getting dedup record: %w", err)
	}
	return r, true, nil
}

// ClaimDedupRecord inserts rec, or replaces an existing record sent before
// notBefore. Returns false when a fresher record already holds the key.
func (s *PostgresStore) ClaimDedupRecord(
	ctx context.Context,
	rec domain.DedupRecord,
	notBefore time.Time,
) (bool, error) {
	var key string
	err := s.pool.QueryRow(ctx, queryClaimDedupRecord,
		rec.Key, string(rec.Metric), rec.Scope, rec.SentAt, notBefore,
	).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // fresher record exists; conflict not replaced
	}
	if err != nil {
		return false, fmt.Errorf("claiming dedup record: %w", err)
	}
	return true, nil
}

// DeleteDedupRecordsBefore removes records sent before cutoff.
func (s *PostgresStore) DeleteDedupRecordsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteDedupRecordsBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting dedup records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteDedupRecords removes records for scope, or all when scope is empty.
func (s *PostgresStore) DeleteDedupRecords(ctx context.Context, scope string) (int, error) {
	tag, err := s.pool.Exec(ctx, queryDeleteDedupRecordsByScope, scope)
	if err != nil {
		return 0, fmt.Errorf("deleting dedup records for scope: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListDedupRecords returns every dedup record, newest first.
func (s *PostgresStore) ListDedupRecords(ctx context.Context) ([]domain.DedupRecord, error) {
	rows, err := s.pool.Query(ctx, queryListDedupRecords)
	if err != nil {
		return nil, fmt.Errorf("listing dedup records: %w", err)
	}
	defer rows.Close()

	var out []domain.DedupRecord
	for rows.Next() {
		var r domain.DedupRecord
		if err := rows.Scan(&r.Key, &r.Metric, &r.Scope, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scanning dedup record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertJobRun records the start of a scheduled job and returns its UUID.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run as finished with the given status and metadata.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	_, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText, rowsAffected)
	if err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListJobRuns returns the most recent runs for a specific job, newest first.
func (s *PostgresStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListJobRuns, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// ListLatestJobRuns returns the single most recent run for each distinct job name.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListLatestJobRuns)
	if err != nil {
		return nil, fmt.Errorf("querying latest job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// RecoverStaleJobRuns marks any 'running' job rows older than olderThan as 'crashed',
// then deletes all rows older than 30 days. Returns the number of rows marked as crashed.
func (s *PostgresStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("marking stale job runs crashed: %w", err)
	}
	affected := int(tag.RowsAffected())

	if _, err := s.pool.Exec(ctx, queryDeleteOldJobRuns); err != nil {
		return affected, fmt.Errorf("deleting old job runs: %w", err)
	}

	return affected, nil
}

// AcquireSchedulerLock attempts to acquire a distributed lock for the given job.
// Returns true if the lock was acquired, false if another holder already owns it.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	expiresAt := time.Now().Add(ttl)

	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, expiresAt).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // lock held by another; conflict not replaced
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	_, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder)
	if err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}

// scanJobRuns scans rows from a job_runs query into a slice.
func scanJobRuns(rows pgx.Rows) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
