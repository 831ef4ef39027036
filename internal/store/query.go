package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

const baseAlertsSelect = `SELECT id, user_id, account_id, account_name, metric, kind, message,
	target_value, current_value, previous_value, change_rate,
	severity, status, created_at, resolved_at,
	check_items, improvements, breakdown, spend
FROM alerts`

// ToSQL builds the filtered alert query and its positional parameters.
// Results are ordered newest first.
func (q *AlertQuery) ToSQL() (string, []any) {
	var (
		conditions []string
		args       []any
	)
	paramIdx := 1

	if q.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", paramIdx))
		args = append(args, q.UserID)
		paramIdx++
	}

	if q.AccountID != nil {
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", paramIdx))
		args = append(args, *q.AccountID)
		paramIdx++
	}

	if q.Metric != "" {
		conditions = append(conditions, fmt.Sprintf("metric = $%d", paramIdx))
		args = append(args, q.Metric)
		paramIdx++
	}

	if q.ActiveOnly {
		conditions = append(conditions, "status = 'active'")
	}

	if q.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", paramIdx))
		args = append(args, *q.Since)
		paramIdx++
	}

	if q.Until != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", paramIdx))
		args = append(args, *q.Until)
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return fmt.Sprintf(
		"%s%s ORDER BY created_at DESC LIMIT %d",
		baseAlertsSelect, whereClause, q.limit(),
	), args
}

func (q *AlertQuery) limit() int {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
