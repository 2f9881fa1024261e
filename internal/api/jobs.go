package api

import (
	"context"
	"net/http"
	"strconv"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
)

func jobPath(id int64) string {
	return "/jobs/" + strconv.FormatInt(id, 10)
}

// ListJobs returns the recruiter's own jobs or every job for students, in
// server order.
func (c *Client) ListJobs(ctx context.Context) ([]job.Job, error) {
	var jobs []job.Job
	if err := c.doJSON(ctx, http.MethodGet, "/jobs/", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) CreateJob(ctx context.Context, draft job.Draft) (job.CreateResult, error) {
	var result job.CreateResult
	if err := c.doJSON(ctx, http.MethodPost, "/jobs/", draft, &result); err != nil {
		return job.CreateResult{}, err
	}
	return result, nil
}

func (c *Client) GetJob(ctx context.Context, id int64) (job.Job, error) {
	var j job.Job
	if err := c.doJSON(ctx, http.MethodGet, jobPath(id), nil, &j); err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (c *Client) UpdateJob(ctx context.Context, id int64, patch job.Patch) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodPut, jobPath(id), patch, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

func (c *Client) DeleteJob(ctx context.Context, id int64) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodDelete, jobPath(id), nil, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

func (c *Client) ListJobApplications(ctx context.Context, jobID int64) ([]application.Application, error) {
	var apps []application.Application
	if err := c.doJSON(ctx, http.MethodGet, jobPath(jobID)+"/applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
