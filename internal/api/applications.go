package api

import (
	"context"
	"net/http"
	"strconv"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/resume"
)

type statusRequest struct {
	Status application.Status `json:"status"`
}

// SubmitApplication posts the job id and the resume as multipart form data.
func (c *Client) SubmitApplication(ctx context.Context, jobID int64, file resume.File) (application.SubmitResult, error) {
	var result application.SubmitResult
	fields := map[string]string{"job_id": strconv.FormatInt(jobID, 10)}
	if err := c.doMultipart(ctx, "/applications/", fields, "resume", file, &result); err != nil {
		return application.SubmitResult{}, err
	}
	return result, nil
}

func (c *Client) MyApplications(ctx context.Context) ([]application.Application, error) {
	var apps []application.Application
	if err := c.doJSON(ctx, http.MethodGet, "/applications/my-applications", nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status application.Status) (Ack, error) {
	var ack Ack
	path := "/applications/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.doJSON(ctx, http.MethodPut, path, statusRequest{Status: status}, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

// Analyze asks the backend engine to score one application.
func (c *Client) Analyze(ctx context.Context, applicationID int64) (application.Analysis, error) {
	var analysis application.Analysis
	path := "/analysis/" + strconv.FormatInt(applicationID, 10)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &analysis); err != nil {
		return application.Analysis{}, err
	}
	return analysis, nil
}

var _ application.Analyzer = (*Client)(nil)
