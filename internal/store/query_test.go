package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestAlertQuery_ToSQL(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	tests := []struct {
		name      string
		query     AlertQuery
		wantHas   []string
		wantNotIn []string
		wantArgs  []any
	}{
		{
			name:      "empty query uses defaults",
			query:     AlertQuery{},
			wantHas:   []string{"FROM alerts", "ORDER BY created_at DESC", "LIMIT 100"},
			wantNotIn: []string{"WHERE"},
			wantArgs:  nil,
		},
		{
			name:     "user filter",
			query:    AlertQuery{UserID: "u1"},
			wantHas:  []string{"WHERE user_id = $1"},
			wantArgs: []any{"u1"},
		},
		{
			name:     "primary account is the empty account id",
			query:    AlertQuery{UserID: "u1", AccountID: ptr("")},
			wantHas:  []string{"user_id = $1 AND account_id = $2"},
			wantArgs: []any{"u1", ""},
		},
		{
			name:      "active only adds no parameter",
			query:     AlertQuery{ActiveOnly: true},
			wantHas:   []string{"WHERE status = 'active'"},
			wantNotIn: []string{"$1"},
			wantArgs:  nil,
		},
		{
			name: "all filters",
			query: AlertQuery{
				UserID:     "u1",
				AccountID:  ptr("act_9"),
				Metric:     "ctr",
				ActiveOnly: true,
				Since:      &since,
				Until:      &until,
				Limit:      10,
			},
			wantHas: []string{
				"user_id = $1",
				"account_id = $2",
				"metric = $3",
				"status = 'active'",
				"created_at >= $4",
				"created_at < $5",
				"LIMIT 10",
			},
			wantArgs: []any{"u1", "act_9", "ctr", since, until},
		},
		{
			name:     "limit is capped",
			query:    AlertQuery{Limit: 50000},
			wantHas:  []string{"LIMIT 1000"},
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sql, args := tt.query.ToSQL()
			for _, s := range tt.wantHas {
				assert.Contains(t, sql, s)
			}
			for _, s := range tt.wantNotIn {
				assert.False(t, strings.Contains(sql, s), "unexpected %q in %s", s, sql)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
