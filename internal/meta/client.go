// Package meta provides a Meta Marketing API insights client abstracted
// behind interfaces for testability.
package meta

import (
	"context"
	"time"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// AccountRequest identifies one ad account and its credentials.
type AccountRequest struct {
	AccountID   string // with or without the act_ prefix
	Token       string
	DailyBudget float64 // 0 means unknown
}

// MetricSource returns per-day metric snapshots for an ad account,
// oldest first. since and until are inclusive calendar days.
type MetricSource interface {
	DailyMetrics(ctx context.Context, req AccountRequest, since, until time.Time) ([]domain.MetricSnapshot, error)
}
