// Package engine runs the alert pipeline: fetch metrics, evaluate rules,
// record history, dedup and dispatch, for every configured user and account.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
	"github.com/donaldgifford/ad-alert-tracker/internal/meta"
	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
	"github.com/donaldgifford/ad-alert-tracker/internal/notify"
	"github.com/donaldgifford/ad-alert-tracker/internal/store"
	"github.com/donaldgifford/ad-alert-tracker/pkg/rules"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

const (
	defaultSendDelay    = time.Second
	defaultLookbackDays = 7
)

// UserSource lists the users the engine evaluates.
type UserSource interface {
	ListUsers(ctx context.Context) ([]domain.UserSettings, error)
}

// StaticUsers is a UserSource backed by configuration.
type StaticUsers []domain.UserSettings

// ListUsers returns a copy of the configured users.
func (s StaticUsers) ListUsers(_ context.Context) ([]domain.UserSettings, error) {
	out := make([]domain.UserSettings, len(s))
	copy(out, s)
	return out, nil
}

// JobOptions controls one alert run.
type JobOptions struct {
	// TestMode sends a marked digest even when alerts are disabled and never
	// touches history or dedup records.
	TestMode bool
	// UserID limits the run to one user when set.
	UserID string
}

// RunSummary counts what one alert run did.
type RunSummary = domain.RunSummary

// Engine orchestrates evaluation and dispatch.
type Engine struct {
	alerts   store.AlertStore
	source   meta.MetricSource
	dedup    *dedup.Manager
	notifier notify.Notifier
	users    UserSource
	table    *rules.GoalTable
	log      *slog.Logger

	now          func() time.Time
	loc          *time.Location
	sendDelay    time.Duration
	lookbackDays int
	dashboardURL string
	maxAlertAge  time.Duration
	maxAlerts    int

	// reportDedup guards the once-per-day flows; it defaults to dedup.
	reportDedup     *dedup.Manager
	tokenNoticeDays int
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	alerts store.AlertStore,
	source meta.MetricSource,
	dd *dedup.Manager,
	n notify.Notifier,
	users UserSource,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		alerts:       alerts,
		source:       source,
		dedup:        dd,
		notifier:     n,
		users:        users,
		table:        rules.Default(),
		log:          slog.Default(),
		now:          time.Now,
		loc:          time.UTC,
		sendDelay:    defaultSendDelay,
		lookbackDays: defaultLookbackDays,
		maxAlertAge:  store.DefaultMaxAlertAge,
		maxAlerts:    store.DefaultMaxAlertEntries,

		tokenNoticeDays: defaultTokenNoticeDays,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.reportDedup == nil {
		eng.reportDedup = dd
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the zone that defines calendar days.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) {
		e.loc = loc
	}
}

// WithSendDelay sets the pause between consecutive chat sends.
func WithSendDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.sendDelay = d
	}
}

// WithLookbackDays sets how many complete days of metrics are fetched.
func WithLookbackDays(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.lookbackDays = n
		}
	}
}

// WithGoalTable replaces the embedded goal table.
func WithGoalTable(t *rules.GoalTable) EngineOption {
	return func(e *Engine) {
		e.table = t
	}
}

// WithDashboardURL sets the base URL linked from chat messages.
func WithDashboardURL(u string) EngineOption {
	return func(e *Engine) {
		e.dashboardURL = u
	}
}

// WithHistoryRetention sets the history pruning limits.
func WithHistoryRetention(maxAge time.Duration, maxEntries int) EngineOption {
	return func(e *Engine) {
		e.maxAlertAge = maxAge
		e.maxAlerts = maxEntries
	}
}

// WithReportDedup sets the manager that limits daily reports and token
// notices to one per day. It should run in daily mode.
func WithReportDedup(dd *dedup.Manager) EngineOption {
	return func(e *Engine) {
		e.reportDedup = dd
	}
}

// WithTokenNoticeDays sets how far ahead of expiry the token notice starts.
func WithTokenNoticeDays(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.tokenNoticeDays = n
		}
	}
}

// Table returns the goal table in use.
func (eng *Engine) Table() *rules.GoalTable {
	return eng.table
}

// Location returns the zone that defines calendar days.
func (eng *Engine) Location() *time.Location {
	return eng.loc
}

// RunAlerts evaluates and dispatches alerts for every user and account.
// Accounts are independent: a fetch or send failure for one never stops the
// others. Send failures are joined into the returned error.
func (eng *Engine) RunAlerts(ctx context.Context, opts JobOptions) (*RunSummary, error) {
	start := time.Now()
	defer func() {
		metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	users, err := eng.users.ListUsers(ctx)
	if err != nil {
		metrics.EvaluationRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("listing users: %w", err)
	}

	run := &runState{summary: &RunSummary{}, opts: opts}
	var errs []error

	for i := range users {
		u := &users[i]
		if opts.UserID != "" && u.UserID != opts.UserID {
			continue
		}
		if !u.AlertsEnabled && !opts.TestMode {
			eng.log.Debug("alerts disabled, skipping user", "user", u.UserID)
			continue
		}
		run.summary.Users++

		accounts := append([]domain.Account{u.PrimaryAccount()}, u.AdditionalAccounts...)
		for j := range accounts {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				return eng.finish(run, errs)
			}
			if err := eng.processAccount(ctx, run, u, &accounts[j]); err != nil {
				eng.log.Error("alert dispatch failed",
					"user", u.UserID,
					"account", accounts[j].ID,
					"error", err,
				)
				errs = append(errs, err)
			}
		}
	}

	return eng.finish(run, errs)
}

func (eng *Engine) finish(run *runState, errs []error) (*RunSummary, error) {
	status := "success"
	if len(errs) > 0 {
		status = "failed"
	}
	metrics.EvaluationRunsTotal.WithLabelValues(status).Inc()
	return run.summary, errors.Join(errs...)
}

// runState carries per-run counters and the send pacing state.
type runState struct {
	summary  *RunSummary
	opts     JobOptions
	lastSend time.Time
}

// Scope is the dedup scope of one account of one user.
func Scope(userID, accountID string) string {
	if accountID == "" {
		return userID
	}
	return userID + "/" + accountID
}

func (eng *Engine) processAccount(
	ctx context.Context,
	run *runState,
	u *domain.UserSettings,
	acct *domain.Account,
) error {
	if acct.ID == "" {
		return nil
	}
	run.summary.Accounts++

	now := eng.now()
	todayStart, todayEnd := store.DayBounds(now, eng.loc)

	token := acct.AccessToken
	if token == "" {
		token = u.MetaAccessToken
	}

	// Only complete days are evaluated; today's partial numbers would trip
	// budget and volume rules every morning.
	until := todayStart.AddDate(0, 0, -1)
	since := todayStart.AddDate(0, 0, -eng.lookbackDays)

	var generated []domain.Alert
	history, err := eng.source.DailyMetrics(ctx,
		meta.AccountRequest{AccountID: acct.ID, Token: token, DailyBudget: acct.DailyBudget},
		since, until,
	)
	if err != nil {
		metrics.MetricFetchErrorsTotal.Inc()
		run.summary.FetchErrors++
		eng.log.Warn("fetching metrics failed, skipping evaluation",
			"user", u.UserID,
			"account", acct.ID,
			"error", err,
		)
	} else {
		generated = eng.evaluate(u, acct, history, now)
		run.summary.Generated += len(generated)
	}

	var candidates []domain.Alert
	if run.opts.TestMode {
		candidates = generated
		if len(candidates) == 0 {
			candidates = sampleAlerts(u.UserID, acct.ID, now)
		}
	} else {
		if len(generated) > 0 {
			if err := eng.alerts.AppendAlerts(ctx, generated); err != nil {
				eng.log.Error("recording alert history failed", "user", u.UserID, "error", err)
			}
		}
		candidates, err = eng.todaysActive(ctx, u.UserID, acctKey(u, acct), todayStart, todayEnd)
		if err != nil {
			eng.log.Error("reading alert history failed, using fresh alerts", "user", u.UserID, "error", err)
			candidates = generated
		}
	}

	return eng.dispatch(ctx, run, u, acct, dedup.Collapse(candidates), now)
}

// acctKey is the AccountID stored on alerts: empty for the primary account.
func acctKey(u *domain.UserSettings, acct *domain.Account) string {
	if acct.ID == u.MetaAccountID {
		return ""
	}
	return acct.ID
}

func (eng *Engine) evaluate(
	u *domain.UserSettings,
	acct *domain.Account,
	history []domain.MetricSnapshot,
	now time.Time,
) []domain.Alert {
	targets := rules.ResolveAccountTargets(u, acct, eng.table)
	opts := rules.Options{UserID: u.UserID, Now: now}

	alerts := rules.EvaluateStatic(targets, history, eng.table, opts)
	if n := len(history); n >= 2 {
		alerts = append(alerts, rules.EvaluateDayOverDay(history[n-1], history[n-2], eng.table, opts)...)
	}

	accountID := acctKey(u, acct)
	for i := range alerts {
		alerts[i].AccountID = accountID
		alerts[i].AccountName = acct.Name
		metrics.AlertsGeneratedTotal.WithLabelValues(string(alerts[i].Metric), string(alerts[i].Severity)).Inc()
	}
	return alerts
}

func (eng *Engine) todaysActive(
	ctx context.Context,
	userID, accountID string,
	start, end time.Time,
) ([]domain.Alert, error) {
	return eng.alerts.QueryAlerts(ctx, &store.AlertQuery{
		UserID:     userID,
		AccountID:  &accountID,
		ActiveOnly: true,
		Since:      &start,
		Until:      &end,
		Limit:      store.DefaultMaxAlertEntries,
	})
}

func (eng *Engine) dispatch(
	ctx context.Context,
	run *runState,
	u *domain.UserSettings,
	acct *domain.Account,
	candidates []domain.Alert,
	now time.Time,
) error {
	if len(candidates) == 0 {
		return nil
	}

	scope := Scope(u.UserID, acctKey(u, acct))
	fresh := candidates

	if !run.opts.TestMode {
		unlock := eng.dedup.Lock(scope)
		defer unlock()

		fresh = eng.dedup.FilterDuplicates(ctx, candidates, scope)
		if len(fresh) == 0 {
			eng.log.Debug("all alerts already sent", "scope", scope)
			return nil
		}
	}

	if err := eng.pace(ctx, run); err != nil {
		return err
	}

	msg := notify.AlertDigest(fresh, notify.FormatOptions{
		Date:         now.In(eng.loc),
		AccountName:  acct.Name,
		DashboardURL: eng.dashboardURL,
		TestMode:     run.opts.TestMode,
		Table:        eng.table,
	})
	err := eng.notifier.Send(ctx, destination(u, acct), msg)
	run.lastSend = time.Now()
	if errors.Is(err, notify.ErrNoDestination) {
		// Nothing was delivered, so nothing is marked; the alerts stay
		// eligible once the user configures a room or webhook.
		run.summary.Undelivered++
		metrics.NotificationsUndeliveredTotal.WithLabelValues("alerts").Inc()
		eng.log.Warn("no chat destination configured, alerts not sent",
			"scope", scope, "alerts", len(fresh))
		return nil
	}
	if err != nil {
		run.summary.SendErrors++
		return fmt.Errorf("sending alerts for %s: %w", scope, err)
	}
	run.summary.Messages++
	run.summary.Dispatched += len(fresh)

	if run.opts.TestMode {
		return nil
	}

	marked := make(map[domain.Metric]struct{}, len(fresh))
	for i := range fresh {
		m := fresh[i].Metric
		if _, done := marked[m]; done {
			continue
		}
		marked[m] = struct{}{}
		if _, err := eng.dedup.MarkSent(ctx, m, scope); err != nil {
			eng.log.Warn("recording sent alert failed", "scope", scope, "metric", m, "error", err)
		}
	}

	eng.log.Info("alerts dispatched", "scope", scope, "count", len(fresh))
	return nil
}

// pace waits out the send delay since the previous send of this run.
func (eng *Engine) pace(ctx context.Context, run *runState) error {
	if run.lastSend.IsZero() || eng.sendDelay <= 0 {
		return nil
	}
	wait := eng.sendDelay - time.Since(run.lastSend)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// sampleAlerts is the fixed digest sent by a test run with nothing to report.
func sampleAlerts(userID, accountID string, now time.Time) []domain.Alert {
	mk := func(m domain.Metric, target, current float64, sev domain.Severity) domain.Alert {
		return domain.Alert{
			UserID:       userID,
			AccountID:    accountID,
			Metric:       m,
			Kind:         domain.KindThreshold,
			TargetValue:  target,
			CurrentValue: current,
			Severity:     sev,
			Status:       domain.StatusActive,
			Timestamp:    now,
		}
	}
	return []domain.Alert{
		mk(domain.MetricCTR, 1.0, 0.8, domain.SeverityWarning),
		mk(domain.MetricCPM, 1800, 2100, domain.SeverityWarning),
		mk(domain.MetricCV, 1, 0, domain.SeverityCritical),
		mk(domain.MetricBudgetRate, 80, 95, domain.SeverityCritical),
	}
}

// RunMaintenance purges expired dedup records, resolves alerts from previous
// days, and prunes history. It returns the number of rows touched.
func (eng *Engine) RunMaintenance(ctx context.Context) (int, error) {
	var errs []error
	total := 0

	n, err := eng.dedup.Cleanup(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	total += n

	todayStart, _ := store.DayBounds(eng.now(), eng.loc)
	n, err = eng.alerts.ResolveSuperseded(ctx, todayStart)
	if err != nil {
		errs = append(errs, fmt.Errorf("resolving superseded alerts: %w", err))
	}
	total += n

	n, err = eng.alerts.PruneAlerts(ctx, eng.maxAlertAge, eng.maxAlerts)
	if err != nil {
		errs = append(errs, fmt.Errorf("pruning alert history: %w", err))
	}
	total += n

	return total, errors.Join(errs...)
}
