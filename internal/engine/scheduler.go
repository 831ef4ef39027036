package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/ad-alert-tracker/internal/metrics"
	"github.com/donaldgifford/ad-alert-tracker/internal/store"
)

// Job names as recorded in job_runs and scheduler_locks.
const (
	JobDailyAlerts  = "daily_alerts"
	JobRepeatAlerts = "repeat_alerts"
	JobMaintenance  = "maintenance"
)

// JobNames lists the scheduled jobs in display order.
var JobNames = []string{JobDailyAlerts, JobRepeatAlerts, JobMaintenance}

// JobPurpose describes what a scheduled job sends or cleans up.
func JobPurpose(job string) string {
	switch job {
	case JobDailyAlerts:
		return "alert digests, then yesterday's report and token reminders"
	case JobRepeatAlerts:
		return "alert digests, then the dashboard update notice"
	case JobMaintenance:
		return "dedup cleanup, alert rollover and history pruning"
	default:
		return ""
	}
}

const (
	// Job run statuses.
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"

	defaultLockTTL  = 30 * time.Minute
	staleRunTimeout = 2 * time.Hour
)

// Schedule holds the cron expressions of the scheduled jobs.
type Schedule struct {
	DailyAlerts  string
	RepeatAlerts string
	Maintenance  string
}

// DefaultSchedule is the production schedule.
var DefaultSchedule = Schedule{
	DailyAlerts:  "0 9 * * *",
	RepeatAlerts: "0 12,15,17,19 * * *",
	Maintenance:  "@every 1h",
}

// Scheduler runs the engine's jobs on cron. With a JobStore, every run is
// recorded and guarded by a cross-process lock so replicas do not overlap.
type Scheduler struct {
	cron    *cron.Cron
	engine  *Engine
	jobs    store.JobStore
	log     *slog.Logger
	holder  string
	lockTTL time.Duration
	entries map[string]cron.EntryID

	mu        sync.Mutex
	summaries map[string]*RunSummary
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// WithJobStore records runs and takes scheduler locks in s.
func WithJobStore(s store.JobStore) SchedulerOption {
	return func(sc *Scheduler) {
		sc.jobs = s
	}
}

// WithLockTTL sets how long a scheduler lock is held before it expires.
func WithLockTTL(d time.Duration) SchedulerOption {
	return func(sc *Scheduler) {
		sc.lockTTL = d
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(sc *Scheduler) {
		sc.log = l
	}
}

// NewScheduler creates a Scheduler that runs engine jobs on sched, in the
// engine's location.
func NewScheduler(eng *Engine, sched Schedule, opts ...SchedulerOption) (*Scheduler, error) {
	host, _ := os.Hostname() //nolint:errcheck // best-effort label
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(eng.Location())),
		engine:  eng,
		log:     slog.Default(),
		holder:  fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		lockTTL: defaultLockTTL,
		entries: make(map[string]cron.EntryID),

		summaries: make(map[string]*RunSummary),
	}
	for _, opt := range opts {
		opt(s)
	}

	jobs := []struct {
		name string
		spec string
		fn   func(context.Context) (int, error)
	}{
		{JobDailyAlerts, sched.DailyAlerts, s.runDaily},
		{JobRepeatAlerts, sched.RepeatAlerts, s.runRepeat},
		{JobMaintenance, sched.Maintenance, eng.RunMaintenance},
	}

	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		id, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.fn))
		if err != nil {
			return nil, fmt.Errorf("scheduling %s (%q): %w", j.name, j.spec, err)
		}
		s.entries[j.name] = id
	}

	return s, nil
}

// Start recovers stale job runs and begins running scheduled jobs.
func (s *Scheduler) Start(ctx context.Context) {
	if s.jobs != nil {
		n, err := s.jobs.RecoverStaleJobRuns(ctx, staleRunTimeout)
		if err != nil {
			s.log.Warn("recovering stale job runs failed", "error", err)
		} else if n > 0 {
			s.log.Info("marked stale job runs crashed", "count", n)
		}
	}

	s.log.Info("scheduler started", "holder", s.holder)
	s.cron.Start()
	s.updateNextRuns()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next scheduled time of a job, or zero if unknown.
func (s *Scheduler) NextRun(job string) time.Time {
	id, ok := s.entries[job]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// LastSummary returns what the most recent run of job in this process sent,
// or nil before the first run.
func (s *Scheduler) LastSummary(job string) *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[job]
	if !ok {
		return nil
	}
	cp := *sum
	return &cp
}

// runDaily is the morning job: alerts first, then the daily report.
func (s *Scheduler) runDaily(ctx context.Context) (int, error) {
	return s.runPair(ctx, JobDailyAlerts, s.engine.RunAlerts, s.engine.RunDailyReport)
}

// runRepeat is the intraday job: alerts first, then the update notice.
func (s *Scheduler) runRepeat(ctx context.Context) (int, error) {
	return s.runPair(ctx, JobRepeatAlerts, s.engine.RunAlerts, s.engine.RunUpdateNotice)
}

// runPair runs the alert pass and a follow-up flow, counting alerts
// dispatched plus reports sent. A failing alert pass does not block the
// follow-up.
func (s *Scheduler) runPair(
	ctx context.Context,
	job string,
	alerts, followUp func(context.Context, JobOptions) (*RunSummary, error),
) (int, error) {
	total := &RunSummary{}
	defer func() {
		s.mu.Lock()
		s.summaries[job] = total
		s.mu.Unlock()
	}()

	summary, alertErr := alerts(ctx, JobOptions{})
	total.Add(summary)
	if ctx.Err() != nil {
		return total.Dispatched + total.Reports, errors.Join(alertErr, ctx.Err())
	}
	summary, followErr := followUp(ctx, JobOptions{})
	total.Add(summary)
	return total.Dispatched + total.Reports, errors.Join(alertErr, followErr)
}

func (s *Scheduler) wrap(name string, fn func(context.Context) (int, error)) func() {
	return func() {
		s.RunJob(context.Background(), name, fn)
		s.updateNextRuns()
	}
}

// RunJob runs fn once under the job's lock and records the run. It reports
// false when another holder owns the lock.
func (s *Scheduler) RunJob(ctx context.Context, name string, fn func(context.Context) (int, error)) bool {
	log := s.log.With("job", name)

	if s.jobs != nil {
		acquired, err := s.jobs.AcquireSchedulerLock(ctx, name, s.holder, s.lockTTL)
		if err != nil {
			log.Error("acquiring scheduler lock failed", "error", err)
			metrics.SchedulerJobRunsTotal.WithLabelValues(name, StatusFailed).Inc()
			return false
		}
		if !acquired {
			log.Info("job held by another scheduler, skipping")
			metrics.SchedulerJobRunsTotal.WithLabelValues(name, "skipped").Inc()
			return false
		}
		defer func() {
			if err := s.jobs.ReleaseSchedulerLock(context.WithoutCancel(ctx), name, s.holder); err != nil {
				log.Warn("releasing scheduler lock failed", "error", err)
			}
		}()
	}

	var runID string
	if s.jobs != nil {
		id, err := s.jobs.InsertJobRun(ctx, name)
		if err != nil {
			log.Warn("recording job start failed", "error", err)
		}
		runID = id
	}

	log.Info("scheduled job starting")
	rows, err := fn(ctx)

	status, errText := StatusSucceeded, ""
	if err != nil {
		status, errText = StatusFailed, err.Error()
		log.Error("scheduled job failed", "error", err)
	} else {
		log.Info("scheduled job finished", "rows", rows)
	}
	metrics.SchedulerJobRunsTotal.WithLabelValues(name, status).Inc()

	if runID != "" {
		if err := s.jobs.CompleteJobRun(context.WithoutCancel(ctx), runID, status, errText, rows); err != nil {
			log.Warn("recording job completion failed", "error", err)
		}
	}
	return true
}

func (s *Scheduler) updateNextRuns() {
	for name, id := range s.entries {
		if next := s.cron.Entry(id).Next; !next.IsZero() {
			metrics.SchedulerNextRunTimestamp.WithLabelValues(name).Set(float64(next.Unix()))
		}
	}
}
