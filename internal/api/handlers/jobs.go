package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/ad-alert-tracker/internal/engine"
	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// JobsProvider defines the store methods required by the jobs handler.
type JobsProvider interface {
	ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error)
	ListJobRuns(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error)
}

// SchedulerState is the live view of the in-process scheduler.
type SchedulerState interface {
	NextRun(job string) time.Time
	LastSummary(job string) *engine.RunSummary
}

// JobsHandler handles scheduler job status and history requests.
type JobsHandler struct {
	store JobsProvider
	sched SchedulerState
}

// JobsOption configures the JobsHandler.
type JobsOption func(*JobsHandler)

// WithSchedulerState adds next-run times and last-run send counts to the
// job list.
func WithSchedulerState(s SchedulerState) JobsOption {
	return func(h *JobsHandler) {
		h.sched = s
	}
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(s JobsProvider, opts ...JobsOption) *JobsHandler {
	h := &JobsHandler{store: s}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListJobsOutput is the response body for the job status list.
type ListJobsOutput struct {
	Body []domain.JobStatus
}

// GetJobHistoryInput is the request path for job history.
type GetJobHistoryInput struct {
	JobName string `path:"job_name" doc:"Scheduled job name"                enum:"daily_alerts,repeat_alerts,maintenance"`
	Limit   int    `query:"limit"   doc:"Number of runs (default 20)" minimum:"1" maximum:"200"`
}

// GetJobHistoryOutput is the response body for a single job's history.
type GetJobHistoryOutput struct {
	Body []domain.JobRun
}

const defaultJobHistoryLimit = 20

// ListJobs returns every scheduled job with its latest recorded run. Jobs
// that never ran are listed without one; unknown job names found in the
// store are appended.
func (h *JobsHandler) ListJobs(
	ctx context.Context,
	_ *struct{},
) (*ListJobsOutput, error) {
	runs, err := h.store.ListLatestJobRuns(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing jobs failed: " + err.Error())
	}

	latest := make(map[string]domain.JobRun, len(runs))
	for _, r := range runs {
		latest[r.JobName] = r
	}

	out := make([]domain.JobStatus, 0, len(engine.JobNames)+len(runs))
	for _, name := range engine.JobNames {
		out = append(out, h.status(name, latest))
		delete(latest, name)
	}
	for _, r := range runs {
		if _, ok := latest[r.JobName]; ok {
			out = append(out, h.status(r.JobName, latest))
			delete(latest, r.JobName)
		}
	}

	return &ListJobsOutput{Body: out}, nil
}

func (h *JobsHandler) status(name string, latest map[string]domain.JobRun) domain.JobStatus {
	st := domain.JobStatus{Name: name, Purpose: engine.JobPurpose(name)}
	if r, ok := latest[name]; ok {
		st.LastRun = &r
	}
	if h.sched != nil {
		if next := h.sched.NextRun(name); !next.IsZero() {
			st.NextRun = &next
		}
		st.LastSummary = h.sched.LastSummary(name)
	}
	return st
}

// GetJobHistory returns the run history for a specific scheduler job.
func (h *JobsHandler) GetJobHistory(
	ctx context.Context,
	input *GetJobHistoryInput,
) (*GetJobHistoryOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultJobHistoryLimit
	}

	runs, err := h.store.ListJobRuns(ctx, input.JobName, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching job history failed: " + err.Error())
	}

	if runs == nil {
		runs = []domain.JobRun{}
	}

	return &GetJobHistoryOutput{Body: runs}, nil
}

// RegisterJobRoutes registers scheduler job endpoints with the Huma API.
func RegisterJobRoutes(api huma.API, h *JobsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs",
		Summary:     "List scheduled jobs",
		Description: "Returns every scheduled alert, report and maintenance job with its latest run. " +
			"When the scheduler runs in this process, next fire times and what the last run sent are included.",
		Tags:   []string{"scheduler"},
		Errors: []int{http.StatusInternalServerError},
	}, h.ListJobs)

	huma.Register(api, huma.Operation{
		OperationID: "get-job-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{job_name}",
		Summary:     "Get scheduler job history",
		Description: "Returns the run history for a scheduled alert or maintenance job (newest first).",
		Tags:        []string{"scheduler"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.GetJobHistory)
}
