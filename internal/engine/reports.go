package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donaldgifford/ad-alert-tracker/internal/dedup"
	"github.com/donaldgifford/ad-alert-tracker/internal/meta"
	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
	"github.com/donaldgifford/ad-alert-tracker/internal/notify"
	"github.com/donaldgifford/ad-alert-tracker/internal/store"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// Dedup keys of the non-alert flows. They share the record store with alert
// metrics and never collide with a metric name.
const (
	FlowDailyReport  domain.Metric = "daily_report"
	FlowUpdateNotice domain.Metric = "update_notice"
	FlowTokenNotice  domain.Metric = "token_notice"
)

const defaultTokenNoticeDays = 7

// RunDailyReport sends each opted-in user a summary of yesterday's
// performance for every account, plus a renewal reminder when their Meta
// token expires soon. Each report goes out at most once per day.
func (eng *Engine) RunDailyReport(ctx context.Context, opts JobOptions) (*RunSummary, error) {
	users, err := eng.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	now := eng.now()
	todayStart, _ := store.DayBounds(now, eng.loc)
	yesterday := todayStart.AddDate(0, 0, -1)

	run := &runState{summary: &RunSummary{}, opts: opts}
	var errs []error

	for i := range users {
		u := &users[i]
		if opts.UserID != "" && u.UserID != opts.UserID {
			continue
		}
		if !u.DailyReportEnabled && !opts.TestMode {
			continue
		}
		run.summary.Users++

		if err := eng.tokenNotice(ctx, run, u, now); err != nil {
			errs = append(errs, err)
		}

		accounts := append([]domain.Account{u.PrimaryAccount()}, u.AdditionalAccounts...)
		for j := range accounts {
			if ctx.Err() != nil {
				return run.summary, errors.Join(append(errs, ctx.Err())...)
			}
			if err := eng.reportAccount(ctx, run, u, &accounts[j], yesterday); err != nil {
				eng.log.Error("daily report failed",
					"user", u.UserID,
					"account", accounts[j].ID,
					"error", err,
				)
				errs = append(errs, err)
			}
		}
	}

	return run.summary, errors.Join(errs...)
}

func (eng *Engine) reportAccount(
	ctx context.Context,
	run *runState,
	u *domain.UserSettings,
	acct *domain.Account,
	day time.Time,
) error {
	if acct.ID == "" {
		return nil
	}
	run.summary.Accounts++

	token := acct.AccessToken
	if token == "" {
		token = u.MetaAccessToken
	}

	history, err := eng.source.DailyMetrics(ctx,
		meta.AccountRequest{AccountID: acct.ID, Token: token, DailyBudget: acct.DailyBudget},
		day, day,
	)
	if err != nil {
		metrics.MetricFetchErrorsTotal.Inc()
		run.summary.FetchErrors++
		eng.log.Warn("fetching metrics failed, skipping daily report",
			"user", u.UserID,
			"account", acct.ID,
			"error", err,
		)
		return nil
	}

	// A day without delivery still gets a report, with zeros.
	snap := domain.MetricSnapshot{Date: day}
	if n := len(history); n > 0 {
		snap = history[n-1]
	}

	msg := notify.DailyReport(&snap, notify.FormatOptions{
		Date:         day,
		AccountName:  acct.Name,
		DashboardURL: eng.dashboardURL,
		TestMode:     run.opts.TestMode,
	})
	return eng.sendOnce(ctx, run, eng.reportDedup, FlowDailyReport,
		Scope(u.UserID, acctKey(u, acct)), destination(u, acct), msg)
}

// tokenNotice reminds the user about an expiring token on their primary room.
func (eng *Engine) tokenNotice(ctx context.Context, run *runState, u *domain.UserSettings, now time.Time) error {
	exp := u.MetaTokenExpiresAt
	if exp == nil {
		return nil
	}
	if exp.Sub(now) > time.Duration(eng.tokenNoticeDays)*24*time.Hour {
		return nil
	}

	primary := u.PrimaryAccount()
	msg := notify.TokenNotice(exp.In(eng.loc), notify.FormatOptions{
		Date:         now.In(eng.loc),
		DashboardURL: eng.dashboardURL,
		TestMode:     run.opts.TestMode,
	})
	return eng.sendOnce(ctx, run, eng.reportDedup, FlowTokenNotice, u.UserID, destination(u, &primary), msg)
}

// RunUpdateNotice tells each opted-in room that the dashboard numbers were
// refreshed. Notices are limited by the alert dedup manager, so one goes out
// per bucket.
func (eng *Engine) RunUpdateNotice(ctx context.Context, opts JobOptions) (*RunSummary, error) {
	users, err := eng.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	now := eng.now().In(eng.loc)
	run := &runState{summary: &RunSummary{}, opts: opts}
	var errs []error

	for i := range users {
		u := &users[i]
		if opts.UserID != "" && u.UserID != opts.UserID {
			continue
		}
		if !u.UpdateNotificationsEnabled && !opts.TestMode {
			continue
		}
		run.summary.Users++

		accounts := append([]domain.Account{u.PrimaryAccount()}, u.AdditionalAccounts...)
		for j := range accounts {
			acct := &accounts[j]
			if acct.ID == "" {
				continue
			}
			if ctx.Err() != nil {
				return run.summary, errors.Join(append(errs, ctx.Err())...)
			}
			run.summary.Accounts++

			msg := notify.UpdateNotice(notify.FormatOptions{
				Date:         now,
				AccountName:  acct.Name,
				DashboardURL: eng.dashboardURL,
				TestMode:     opts.TestMode,
			})
			err := eng.sendOnce(ctx, run, eng.dedup, FlowUpdateNotice,
				Scope(u.UserID, acctKey(u, acct)), destination(u, acct), msg)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	return run.summary, errors.Join(errs...)
}

func destination(u *domain.UserSettings, acct *domain.Account) notify.Destination {
	return notify.Destination{
		Token:      u.ChatworkToken,
		RoomID:     acct.ChatworkRoomID,
		WebhookURL: u.DiscordWebhookURL,
	}
}

// sendOnce delivers msg unless flow was already sent for scope in the
// current bucket of dd, and marks it sent only after delivery. Test runs
// bypass dedup entirely.
func (eng *Engine) sendOnce(
	ctx context.Context,
	run *runState,
	dd *dedup.Manager,
	flow domain.Metric,
	scope string,
	dest notify.Destination,
	msg notify.Message,
) error {
	if !run.opts.TestMode {
		unlock := dd.Lock(scope)
		defer unlock()

		sent, err := dd.IsAlreadySent(ctx, flow, scope)
		if err != nil {
			metrics.DedupStoreErrorsTotal.Inc()
			eng.log.Warn("dedup lookup failed, sending anyway", "flow", flow, "scope", scope, "error", err)
		}
		if sent {
			eng.log.Debug("already sent in this bucket", "flow", flow, "scope", scope)
			return nil
		}
	}

	if err := eng.pace(ctx, run); err != nil {
		return err
	}

	err := eng.notifier.Send(ctx, dest, msg)
	run.lastSend = time.Now()
	if errors.Is(err, notify.ErrNoDestination) {
		run.summary.Undelivered++
		metrics.NotificationsUndeliveredTotal.WithLabelValues(string(flow)).Inc()
		eng.log.Warn("no chat destination configured, message not sent", "flow", flow, "scope", scope)
		return nil
	}
	if err != nil {
		run.summary.SendErrors++
		return fmt.Errorf("sending %s for %s: %w", flow, scope, err)
	}
	run.summary.Messages++
	run.summary.Reports++
	metrics.ReportsSentTotal.WithLabelValues(string(flow)).Inc()

	if run.opts.TestMode {
		return nil
	}
	if _, err := dd.MarkSent(ctx, flow, scope); err != nil {
		eng.log.Warn("recording sent message failed", "flow", flow, "scope", scope, "error", err)
	}
	eng.log.Info("message sent", "flow", flow, "scope", scope)
	return nil
}
