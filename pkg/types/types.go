// Package domain defines the core business types for the ad alert tracker.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Metric is the canonical key of a measured ad-performance metric.
type Metric string

// Metric constants.
const (
	MetricBudgetRate  Metric = "budget_rate"
	MetricDailyBudget Metric = "daily_budget"
	MetricCTR         Metric = "ctr"
	MetricCPM         Metric = "cpm"
	MetricCPA         Metric = "cpa"
	MetricCPC         Metric = "cpc"
	MetricCVR         Metric = "cvr"
	MetricCV          Metric = "cv"
	MetricConversions Metric = "conversions"
	MetricFrequency   Metric = "frequency"
)

// Direction says whether a metric improves as it rises or as it falls.
type Direction string

// Direction constants.
const (
	HigherBetter Direction = "higher_better"
	LowerBetter  Direction = "lower_better"
)

// Condition is the comparison a static threshold rule applies to each day.
type Condition string

// Condition constants.
const (
	ConditionBelow Condition = "below"
	ConditionAbove Condition = "above"
	ConditionEqual Condition = "equal"
)

// Severity of a raised alert.
type Severity string

// Severity constants.
const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertStatus is the lifecycle state of a persisted alert.
type AlertStatus string

// Alert status constants.
const (
	StatusActive   AlertStatus = "active"
	StatusResolved AlertStatus = "resolved"
)

// AlertKind distinguishes the rule family that produced an alert.
type AlertKind string

// Alert kind constants.
const (
	KindThreshold  AlertKind = "threshold"
	KindDayOverDay AlertKind = "day_over_day"
)

// ConversionEvent is one entry of a per-event-type conversion breakdown.
type ConversionEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Conversions holds a conversion count that may carry a breakdown by event
// type. It decodes from either a bare JSON number or an object of the form
// {"total": n, "breakdown": [...]}.
type Conversions struct {
	Total     int               `json:"total"`
	Breakdown []ConversionEvent `json:"breakdown,omitempty"`
}

// UnmarshalJSON accepts a scalar count, a structured breakdown, or null.
func (c *Conversions) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Conversions{}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n > math.MaxInt32 {
			return fmt.Errorf("decoding conversions: count %v out of range", n)
		}
		*c = Conversions{Total: int(math.Round(n))}
		return nil
	}

	type plain Conversions
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding conversions: %w", err)
	}
	*c = Conversions(p)

	// A breakdown without an explicit total still counts.
	if c.Total == 0 {
		for _, e := range c.Breakdown {
			c.Total += e.Count
		}
	}
	return nil
}

// MetricSnapshot is one day of measured performance for one ad account.
type MetricSnapshot struct {
	Date        time.Time   `json:"date"`
	Spend       float64     `json:"spend"`
	Impressions int64       `json:"impressions"`
	Clicks      int64       `json:"clicks"`
	CTR         float64     `json:"ctr"`
	CPM         float64     `json:"cpm"`
	CPA         float64     `json:"cpa"`
	CPC         float64     `json:"cpc"`
	Conversions Conversions `json:"conversions"`
	BudgetRate  float64     `json:"budget_rate"`
	Frequency   float64     `json:"frequency"`
}

// Value returns the snapshot's value for a metric. Unknown metrics read as 0.
func (s *MetricSnapshot) Value(m Metric) float64 {
	switch m {
	case MetricBudgetRate:
		return s.BudgetRate
	case MetricDailyBudget:
		return s.Spend
	case MetricCTR:
		return s.CTR
	case MetricCPM:
		return s.CPM
	case MetricCPA:
		return s.CPA
	case MetricCPC:
		return s.CPC
	case MetricCVR:
		if s.Clicks == 0 {
			return 0
		}
		return float64(s.Conversions.Total) / float64(s.Clicks) * 100
	case MetricCV, MetricConversions:
		return float64(s.Conversions.Total)
	case MetricFrequency:
		return s.Frequency
	default:
		return 0
	}
}

// Target is a resolved threshold for one metric.
type Target struct {
	Metric        Metric    `json:"metric"`
	Threshold     float64   `json:"threshold"`
	Direction     Direction `json:"direction"`
	Condition     Condition `json:"condition"`
	RequiredDays  int       `json:"required_days"`
	CriticalRatio float64   `json:"critical_ratio"`
}

// TargetSet is the set of thresholds a user cares about for one account.
type TargetSet map[Metric]Target

// TargetOverrides holds optional per-user numeric targets. A nil field, or a
// field set to zero, means "use the goal default".
type TargetOverrides struct {
	CTR         *float64 `json:"target_ctr,omitempty"          yaml:"ctr"`
	CPA         *float64 `json:"target_cpa,omitempty"          yaml:"cpa"`
	CPM         *float64 `json:"target_cpm,omitempty"          yaml:"cpm"`
	CV          *float64 `json:"target_cv,omitempty"           yaml:"cv"`
	BudgetRate  *float64 `json:"target_budget_rate,omitempty"  yaml:"budget_rate"`
	DailyBudget *float64 `json:"target_daily_budget,omitempty" yaml:"daily_budget"`
}

// For returns the override for a metric, if one exists.
func (o *TargetOverrides) For(m Metric) *float64 {
	switch m {
	case MetricCTR:
		return o.CTR
	case MetricCPA:
		return o.CPA
	case MetricCPM:
		return o.CPM
	case MetricCV:
		return o.CV
	case MetricBudgetRate:
		return o.BudgetRate
	case MetricDailyBudget:
		return o.DailyBudget
	default:
		return nil
	}
}

// Account is an additional Meta ad account owned by a user, notified into its
// own chat room.
type Account struct {
	ID             string          `json:"id"                         yaml:"id"`
	Name           string          `json:"name"                       yaml:"name"`
	AccessToken    string          `json:"-"                          yaml:"access_token"`
	ChatworkRoomID string          `json:"chatwork_room_id,omitempty" yaml:"chatwork_room_id"`
	GoalType       string          `json:"goal_type,omitempty"        yaml:"goal_type"`
	DailyBudget    float64         `json:"daily_budget,omitempty"     yaml:"daily_budget"`
	Targets        TargetOverrides `json:"targets"                    yaml:"targets"`
}

// UserSettings is the per-user configuration the alert engine consumes.
type UserSettings struct {
	UserID                     string          `json:"user_id"                         yaml:"user_id"`
	GoalType                   string          `json:"goal_type"                       yaml:"goal_type"`
	MetaAccountID              string          `json:"meta_account_id"                 yaml:"meta_account_id"`
	MetaAccessToken            string          `json:"-"                               yaml:"meta_access_token"`
	MetaTokenExpiresAt         *time.Time      `json:"meta_token_expires_at,omitempty" yaml:"meta_token_expires_at"`
	DailyBudget                float64         `json:"daily_budget,omitempty"          yaml:"daily_budget"`
	Targets                    TargetOverrides `json:"targets"                         yaml:"targets"`
	AlertsEnabled              bool            `json:"alerts_enabled"                  yaml:"alerts_enabled"`
	DailyReportEnabled         bool            `json:"daily_report_enabled"            yaml:"daily_report_enabled"`
	UpdateNotificationsEnabled bool            `json:"update_notifications_enabled"    yaml:"update_notifications_enabled"`
	ChatworkToken              string          `json:"-"                               yaml:"chatwork_token"`
	ChatworkRoomID             string          `json:"chatwork_room_id,omitempty"      yaml:"chatwork_room_id"`
	DiscordWebhookURL          string          `json:"-"                               yaml:"discord_webhook_url"`
	AdditionalAccounts         []Account       `json:"additional_accounts,omitempty"   yaml:"additional_accounts"`
}

// PrimaryAccount returns the user's main ad account in Account form.
func (u *UserSettings) PrimaryAccount() Account {
	return Account{
		ID:             u.MetaAccountID,
		AccessToken:    u.MetaAccessToken,
		ChatworkRoomID: u.ChatworkRoomID,
		GoalType:       u.GoalType,
		DailyBudget:    u.DailyBudget,
		Targets:        u.Targets,
	}
}

// CheckItem is one diagnostic question attached to an alert.
type CheckItem struct {
	Priority    int    `json:"priority"    yaml:"priority"`
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Alert is one detected violation.
type Alert struct {
	ID            string              `json:"id"                       db:"id"`
	UserID        string              `json:"user_id"                  db:"user_id"`
	AccountID     string              `json:"account_id,omitempty"     db:"account_id"`
	AccountName   string              `json:"account_name,omitempty"   db:"account_name"`
	Metric        Metric              `json:"metric"                   db:"metric"`
	Kind          AlertKind           `json:"kind"                     db:"kind"`
	Message       string              `json:"message"                  db:"message"`
	TargetValue   float64             `json:"target_value"             db:"target_value"`
	CurrentValue  float64             `json:"current_value"            db:"current_value"`
	PreviousValue *float64            `json:"previous_value,omitempty" db:"previous_value"`
	ChangeRate    *float64            `json:"change_rate,omitempty"    db:"change_rate"`
	Severity      Severity            `json:"severity"                 db:"severity"`
	Status        AlertStatus         `json:"status"                   db:"status"`
	Timestamp     time.Time           `json:"timestamp"                db:"created_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"    db:"resolved_at"`
	CheckItems    []CheckItem         `json:"check_items"              db:"check_items"`
	Improvements  map[string][]string `json:"improvements"             db:"improvements"`
	Breakdown     []ConversionEvent   `json:"breakdown,omitempty"      db:"breakdown"`
	Spend         float64             `json:"spend,omitempty"          db:"spend"`
}

// DedupRecord is the bookkeeping entry for an already-notified alert bucket.
type DedupRecord struct {
	Key    string    `json:"key"     db:"key"`
	Metric Metric    `json:"metric"  db:"metric"`
	Scope  string    `json:"scope"   db:"scope"`
	SentAt time.Time `json:"sent_at" db:"sent_at"`
}

// JobRun is a single execution record of a scheduled job.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}

// JobStatus is the operator view of one scheduled job: its last recorded run
// and, while the scheduler is live, the next fire time and what the last run
// sent.
type JobStatus struct {
	Name        string      `json:"name"`
	Purpose     string      `json:"purpose"`
	NextRun     *time.Time  `json:"next_run,omitempty"`
	LastRun     *JobRun     `json:"last_run,omitempty"`
	LastSummary *RunSummary `json:"last_summary,omitempty"`
}

// ConfirmationItem is one check item flattened out of an alert.
type ConfirmationItem struct {
	AlertID     string   `json:"alert_id"`
	UserID      string   `json:"user_id"`
	AccountID   string   `json:"account_id,omitempty"`
	Metric      Metric   `json:"metric"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Priority    int      `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// ImprovementStrategy is one remediation category flattened out of an alert.
type ImprovementStrategy struct {
	AlertID   string   `json:"alert_id"`
	UserID    string   `json:"user_id"`
	AccountID string   `json:"account_id,omitempty"`
	Metric    Metric   `json:"metric"`
	Category  string   `json:"category"`
	Actions   []string `json:"actions"`
}

// RunSummary counts what one alert run did.
type RunSummary struct {
	Users       int `json:"users"`
	Accounts    int `json:"accounts"`
	FetchErrors int `json:"fetch_errors"`
	Generated   int `json:"generated"`
	Dispatched  int `json:"dispatched"`
	Messages    int `json:"messages"`
	SendErrors  int `json:"send_errors"`
	// Reports counts daily reports, update notices and token notices sent.
	Reports int `json:"reports"`
	// Undelivered counts messages dropped because the destination had no
	// usable chat transport.
	Undelivered int `json:"undelivered"`
}

// Add accumulates o into s. Users and Accounts keep the larger count, since
// consecutive passes of one job walk the same users.
func (s *RunSummary) Add(o *RunSummary) {
	if o == nil {
		return
	}
	s.Users = max(s.Users, o.Users)
	s.Accounts = max(s.Accounts, o.Accounts)
	s.FetchErrors += o.FetchErrors
	s.Generated += o.Generated
	s.Dispatched += o.Dispatched
	s.Messages += o.Messages
	s.SendErrors += o.SendErrors
	s.Reports += o.Reports
	s.Undelivered += o.Undelivered
}
