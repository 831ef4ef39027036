package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/ad-alert-tracker/pkg/types"
)

// ListJobs returns every scheduled job with its latest run and, when the
// server runs the scheduler, its next fire time and last send counts.
func (c *Client) ListJobs(ctx context.Context) ([]domain.JobStatus, error) {
	var jobs []domain.JobStatus
	if err := c.get(ctx, "/api/v1/jobs", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJobHistory returns the run history for a specific scheduled job. A zero
// limit uses the server default.
func (c *Client) GetJobHistory(ctx context.Context, jobName string, limit int) ([]domain.JobRun, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var runs []domain.JobRun
	if err := c.get(ctx, withQuery("/api/v1/jobs/"+url.PathEscape(jobName), q), &runs); err != nil {
		return nil, err
	}
	return runs, nil
}
