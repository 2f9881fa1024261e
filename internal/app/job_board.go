package app

import (
	"context"
	"log/slog"
	"strings"

	"hireflow/internal/api"
	"hireflow/internal/domain/job"
	"hireflow/internal/remote"
)

type JobAPI interface {
	ListJobs(ctx context.Context) ([]job.Job, error)
	CreateJob(ctx context.Context, draft job.Draft) (job.CreateResult, error)
	UpdateJob(ctx context.Context, id int64, patch job.Patch) (api.Ack, error)
	DeleteJob(ctx context.Context, id int64) (api.Ack, error)
}

type JobStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Draft      int `json:"draft"`
	Closed     int `json:"closed"`
	Applicants int `json:"applicants"`
}

// JobBoard is the recruiter's manage-jobs page.
type JobBoard struct {
	api    JobAPI
	jobs   *remote.Resource[[]job.Job]
	logger *slog.Logger
}

func NewJobBoard(jobAPI JobAPI, logger *slog.Logger) *JobBoard {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobBoard{
		api:    jobAPI,
		jobs:   remote.New(jobAPI.ListJobs, "Failed to load jobs."),
		logger: logger,
	}
}

func (b *JobBoard) Load(ctx context.Context) remote.State[[]job.Job] {
	return b.jobs.Load(ctx)
}

func (b *JobBoard) State() remote.State[[]job.Job] {
	return b.jobs.Snapshot()
}

func (b *JobBoard) Close() {
	b.jobs.Close()
}

// Filter returns jobs matching status (empty for all) and a search term
// over title, company, location and skills.
func (b *JobBoard) Filter(status job.Status, term string) []job.Job {
	return filterJobs(b.jobs.Snapshot().Data, status, term)
}

func (b *JobBoard) Stats() JobStats {
	var stats JobStats
	for _, j := range b.jobs.Snapshot().Data {
		stats.Total++
		stats.Applicants += j.ApplicantsCount
		switch j.EffectiveStatus() {
		case job.StatusActive:
			stats.Active++
		case job.StatusDraft:
			stats.Draft++
		case job.StatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// Create validates the draft locally, posts it and reloads the list.
func (b *JobBoard) Create(ctx context.Context, draft job.Draft) (job.CreateResult, error) {
	if draft.Status == "" {
		draft.Status = job.StatusActive
	}
	if err := draft.Validate(); err != nil {
		return job.CreateResult{}, err
	}
	result, err := b.api.CreateJob(ctx, draft)
	if err != nil {
		return job.CreateResult{}, err
	}
	b.logger.Info("job created", slog.Int64("job_id", result.JobID), slog.String("status", string(draft.Status)))
	b.jobs.Load(ctx)
	return result, nil
}

func (b *JobBoard) Update(ctx context.Context, id int64, patch job.Patch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if _, err := b.api.UpdateJob(ctx, id, patch); err != nil {
		return err
	}
	b.jobs.Mutate(func(jobs []job.Job) []job.Job {
		out := make([]job.Job, len(jobs))
		for i, j := range jobs {
			if j.ID == id {
				j = patch.Apply(j)
			}
			out[i] = j
		}
		return out
	})
	return nil
}

func (b *JobBoard) SetStatus(ctx context.Context, id int64, status job.Status) error {
	return b.Update(ctx, id, job.Patch{Status: &status})
}

// Delete removes the job from the list before the call returns. When the
// call fails the job is put back where it was and the error is returned.
func (b *JobBoard) Delete(ctx context.Context, id int64) error {
	var removed job.Job
	index := -1
	b.jobs.Mutate(func(jobs []job.Job) []job.Job {
		out := make([]job.Job, 0, len(jobs))
		for i, j := range jobs {
			if j.ID == id && index < 0 {
				removed, index = j, i
				continue
			}
			out = append(out, j)
		}
		return out
	})

	if _, err := b.api.DeleteJob(ctx, id); err != nil {
		if index >= 0 {
			b.jobs.Mutate(func(jobs []job.Job) []job.Job {
				at := min(index, len(jobs))
				out := make([]job.Job, 0, len(jobs)+1)
				out = append(out, jobs[:at]...)
				out = append(out, removed)
				return append(out, jobs[at:]...)
			})
		}
		b.logger.Warn("job delete failed", slog.Int64("job_id", id), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func filterJobs(jobs []job.Job, status job.Status, term string) []job.Job {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if status != "" && j.EffectiveStatus() != status {
			continue
		}
		if term != "" && !matchesJob(j, term) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func matchesJob(j job.Job, term string) bool {
	fields := []string{j.Title, j.Company, j.Location, j.Type}
	fields = append(fields, j.Skills...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
