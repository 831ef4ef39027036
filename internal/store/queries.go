package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Alert queries.
const (
	queryInsertAlert = `
		INSERT INTO alerts (
			id, user_id, account_id, account_name, metric, kind, message,
			target_value, current_value, previous_value, change_rate,
			severity, status, created_at, check_items, improvements,
			breakdown, spend
		) VALUES (
			@id, @user_id, @account_id, @account_name, @metric, @kind, @message,
			@target_value, @current_value, @previous_value, @change_rate,
			@severity, @status, @created_at, @check_items, @improvements,
			@breakdown, @spend
		)`

	// Older active alerts for the same user, account and metric are
	// superseded by the one being appended. Alerts stamped with the same
	// instant belong to one evaluation pass and coexist.
	querySupersedeAlerts = `
		UPDATE alerts SET
			status      = 'resolved',
			resolved_at = $4
		WHERE user_id = $1
			AND account_id = $2
			AND metric = $3
			AND status = 'active'
			AND created_at < $4`

	queryResolveStaleAlerts = `
		UPDATE alerts SET
			status      = 'resolved',
			resolved_at = now()
		WHERE status = 'active' AND created_at < $1`

	queryResolveShadowedAlerts = `
		UPDATE alerts a SET
			status      = 'resolved',
			resolved_at = now()
		WHERE a.status = 'active'
			AND EXISTS (
				SELECT 1 FROM alerts b
				WHERE b.user_id = a.user_id
					AND b.account_id = a.account_id
					AND b.metric = a.metric
					AND b.created_at > a.created_at
			)`

	queryDeleteAlertsBefore = `
		DELETE FROM alerts WHERE created_at < $1`

	queryDeleteAlertsBeyond = `
		DELETE FROM alerts WHERE id IN (
			SELECT id FROM alerts
			ORDER BY created_at DESC
			OFFSET $1
		)`
)

// Dedup queries.
const (
	queryGetDedupRecord = `
		SELECT key, metric, scope, sent_at
		FROM dedup_records
		WHERE key = $1`

	queryClaimDedupRecord = `
		INSERT INTO dedup_records (key, metric, scope, sent_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
			SET sent_at = EXCLUDED.sent_at,
				metric  = EXCLUDED.metric,
				scope   = EXCLUDED.scope
			WHERE dedup_records.sent_at < $5
		RETURNING key`

	queryDeleteDedupRecordsBefore = `
		DELETE FROM dedup_records WHERE sent_at < $1`

	queryDeleteDedupRecordsByScope = `
		DELETE FROM dedup_records WHERE $1 = '' OR scope = $1`

	queryListDedupRecords = `
		SELECT key, metric, scope, sent_at
		FROM dedup_records
		ORDER BY sent_at DESC`
)

// Scheduler queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at  = now(),
			status        = $2,
			error_text    = $3,
			rows_affected = $4
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		ORDER BY job_name, started_at DESC`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldJobRuns = `
		DELETE FROM job_runs WHERE started_at < now() - interval '30 days'`

	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)
