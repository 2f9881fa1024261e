package api

import (
	"context"
	"net/http"

	"hireflow/internal/domain/resume"
)

func (c *Client) UploadResume(ctx context.Context, file resume.File) (resume.UploadResult, error) {
	var result resume.UploadResult
	if err := c.doMultipart(ctx, "/resume/upload", nil, "resume", file, &result); err != nil {
		return resume.UploadResult{}, err
	}
	return result, nil
}

// GetResume returns the student's primary resume. A missing resume is a
// not_found error.
func (c *Client) GetResume(ctx context.Context) (resume.Resume, error) {
	var r resume.Resume
	if err := c.doJSON(ctx, http.MethodGet, "/resume/", nil, &r); err != nil {
		return resume.Resume{}, err
	}
	return r, nil
}
