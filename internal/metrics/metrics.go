// Package metrics defines Prometheus metrics for ad-alert-tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aat"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last /healthz check succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last /readyz check succeeded, 0 otherwise.",
	})
)

// Evaluation metrics.
var (
	EvaluationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "evaluation_runs_total",
		Help:      "Total number of alert evaluation runs by outcome.",
	}, []string{"status"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of full alert evaluation runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	MetricFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metric_fetch_errors_total",
		Help:      "Total number of failed per-account metric fetches.",
	})

	AlertsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_generated_total",
		Help:      "Total number of candidate alerts produced by the evaluator.",
	}, []string{"metric", "severity"})

	AlertsSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_suppressed_total",
		Help:      "Total number of alerts dropped before dispatch, by reason.",
	}, []string{"reason"})
)

// Dedup metrics.
var (
	DedupRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dedup_records",
		Help:      "Number of dedup records currently held by the store.",
	})

	DedupStoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dedup_store_errors_total",
		Help:      "Total number of dedup store read or write failures.",
	})
)

// Notification metrics.
var (
	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of chat notifications delivered, by transport.",
	}, []string{"transport"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures, by transport.",
	}, []string{"transport"})

	NotificationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of chat notification sends in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	NotificationsUndeliveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_undelivered_total",
		Help:      "Total number of messages dropped for lack of a chat destination, by flow.",
	}, []string{"flow"})

	ReportsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_sent_total",
		Help:      "Total number of daily reports and notices delivered, by flow.",
	}, []string{"flow"})
)

// Meta API metrics.
var (
	MetaAPICallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meta_api_calls_total",
		Help:      "Total cumulative Meta Graph API calls.",
	})

	MetaDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "meta_daily_usage",
		Help:      "Current Meta API call count within the rolling 24-hour window.",
	})

	MetaDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meta_daily_limit_hits_total",
		Help:      "Total number of times the daily Meta API limit was reached.",
	})
)

// Scheduler metrics.
var (
	SchedulerJobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_job_runs_total",
		Help:      "Total number of scheduled job executions, by job and status.",
	}, []string{"job", "status"})

	SchedulerNextRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_run_timestamp",
		Help:      "Unix timestamp of the next scheduled run, by job.",
	}, []string{"job"})
)
