package app

import (
	"context"
	"log/slog"

	"hireflow/internal/api"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/remote"
)

type ReviewAPI interface {
	ListJobApplications(ctx context.Context, jobID int64) ([]application.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status application.Status) (api.Ack, error)
}

type ReviewStats struct {
	Total        int                        `json:"total"`
	ByStatus     map[application.Status]int `json:"by_status"`
	AverageScore float64                    `json:"average_score"`
}

// ApplicationReview is the recruiter's applicant list for one job.
type ApplicationReview struct {
	api      ReviewAPI
	analyzer application.Analyzer
	jobID    int64
	apps     *remote.Resource[[]application.Application]
	logger   *slog.Logger
}

func NewApplicationReview(reviewAPI ReviewAPI, analyzer application.Analyzer, jobID int64, logger *slog.Logger) *ApplicationReview {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ApplicationReview{api: reviewAPI, analyzer: analyzer, jobID: jobID, logger: logger}
	r.apps = remote.New(func(ctx context.Context) ([]application.Application, error) {
		apps, err := reviewAPI.ListJobApplications(ctx, jobID)
		if err != nil {
			return nil, err
		}
		for i := range apps {
			apps[i].Status = apps[i].Status.Normalize()
			if apps[i].Status == "" {
				apps[i].Status = application.StatusPending
			}
		}
		return apps, nil
	}, "Failed to load applications.")
	return r
}

func (r *ApplicationReview) JobID() int64 {
	return r.jobID
}

func (r *ApplicationReview) Load(ctx context.Context) remote.State[[]application.Application] {
	return r.apps.Load(ctx)
}

func (r *ApplicationReview) State() remote.State[[]application.Application] {
	return r.apps.Snapshot()
}

func (r *ApplicationReview) Close() {
	r.apps.Close()
}

func (r *ApplicationReview) Filter(status application.Status) []application.Application {
	apps := r.apps.Snapshot().Data
	if status == "" {
		return append([]application.Application(nil), apps...)
	}
	out := make([]application.Application, 0, len(apps))
	for _, a := range apps {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

func (r *ApplicationReview) Stats() ReviewStats {
	apps := r.apps.Snapshot().Data
	stats := ReviewStats{ByStatus: make(map[application.Status]int)}
	var scored int
	var sum float64
	for _, a := range apps {
		stats.Total++
		stats.ByStatus[a.Status]++
		if a.Score != nil {
			scored++
			sum += *a.Score
		}
	}
	if scored > 0 {
		stats.AverageScore = sum / float64(scored)
	}
	return stats
}

// UpdateStatus sends the new status and applies it locally once the server
// accepts it. Concurrent updates are not ordered: the last to resolve wins.
func (r *ApplicationReview) UpdateStatus(ctx context.Context, id int64, value string) error {
	status, ok := application.ParseStatus(value)
	if !ok {
		return common.NewValidationError("Unknown application status.", map[string]string{"status": "must be pending, reviewed, shortlisted, accepted, or rejected"})
	}
	if _, err := r.api.UpdateApplicationStatus(ctx, id, status); err != nil {
		return err
	}
	r.apps.Mutate(func(apps []application.Application) []application.Application {
		out := append([]application.Application(nil), apps...)
		for i := range out {
			if out[i].ID == id {
				out[i].Status = status
			}
		}
		return out
	})
	r.logger.Info("application status updated", slog.Int64("application_id", id), slog.String("status", string(status)))
	return nil
}

// Analyze asks the analysis engine to score one application and records
// the result locally.
func (r *ApplicationReview) Analyze(ctx context.Context, id int64) (application.Analysis, error) {
	if r.analyzer == nil {
		return application.Analysis{}, common.NewError(common.CodeInternal, "analysis is not available", nil)
	}
	result, err := r.analyzer.Analyze(ctx, id)
	if err != nil {
		return application.Analysis{}, err
	}
	r.apps.Mutate(func(apps []application.Application) []application.Application {
		out := append([]application.Application(nil), apps...)
		for i := range out {
			if out[i].ID == id {
				score := result.Score
				out[i].Score = &score
				out[i].AnalysisSummary = result.Summary
			}
		}
		return out
	})
	return result, nil
}
