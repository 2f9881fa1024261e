package app

import (
	"context"
	"errors"

	"hireflow/internal/api"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/profile"
	"hireflow/internal/domain/resume"
	"hireflow/internal/remote"
)

type MyApplicationsAPI interface {
	MyApplications(ctx context.Context) ([]application.Application, error)
}

// StudentApplicationRow is one line of the student's applications page.
type StudentApplicationRow struct {
	ID        int64              `json:"id"`
	JobTitle  string             `json:"job_title"`
	AppliedAt string             `json:"applied_at"`
	Status    application.Status `json:"status"`
	Label     string             `json:"label"`
}

type StudentApplications struct {
	apps *remote.Resource[[]application.Application]
}

func NewStudentApplications(myAPI MyApplicationsAPI) *StudentApplications {
	return &StudentApplications{apps: remote.New(myAPI.MyApplications, "Failed to load your applications.")}
}

func (s *StudentApplications) Load(ctx context.Context) remote.State[[]application.Application] {
	return s.apps.Load(ctx)
}

func (s *StudentApplications) Close() {
	s.apps.Close()
}

func (s *StudentApplications) Rows() []StudentApplicationRow {
	apps := s.apps.Snapshot().Data
	rows := make([]StudentApplicationRow, 0, len(apps))
	for _, a := range apps {
		status := a.Status.Normalize()
		if status == "" {
			status = application.StatusPending
		}
		rows = append(rows, StudentApplicationRow{
			ID:        a.ID,
			JobTitle:  a.JobTitle,
			AppliedAt: a.AppliedAt,
			Status:    status,
			Label:     status.Label(application.AudienceStudent),
		})
	}
	return rows
}

type CatalogAPI interface {
	ListJobs(ctx context.Context) ([]job.Job, error)
}

// JobCatalog is the student's job browser. Content and order come from the
// server.
type JobCatalog struct {
	jobs *remote.Resource[[]job.Job]
}

func NewJobCatalog(catalogAPI CatalogAPI) *JobCatalog {
	return &JobCatalog{jobs: remote.New(catalogAPI.ListJobs, "Failed to load jobs.")}
}

func (c *JobCatalog) Load(ctx context.Context) remote.State[[]job.Job] {
	return c.jobs.Load(ctx)
}

func (c *JobCatalog) Close() {
	c.jobs.Close()
}

func (c *JobCatalog) Search(term string) []job.Job {
	return filterJobs(c.jobs.Snapshot().Data, "", term)
}

func (c *JobCatalog) Find(id int64) (job.Job, bool) {
	for _, j := range c.jobs.Snapshot().Data {
		if j.ID == id {
			return j, true
		}
	}
	return job.Job{}, false
}

type ProfileAPI interface {
	GetProfile(ctx context.Context) (profile.Profile, error)
	UpdateProfile(ctx context.Context, update profile.Update) (api.Ack, error)
	GetResume(ctx context.Context) (resume.Resume, error)
	UploadResume(ctx context.Context, file resume.File) (resume.UploadResult, error)
}

// ProfilePage holds the profile and the single resume of the current user.
type ProfilePage struct {
	api     ProfileAPI
	profile *remote.Resource[profile.Profile]
	resume  *remote.Resource[*resume.Resume]
}

func NewProfilePage(profileAPI ProfileAPI) *ProfilePage {
	return &ProfilePage{
		api:     profileAPI,
		profile: remote.New(profileAPI.GetProfile, "Failed to load profile."),
		resume: remote.New(func(ctx context.Context) (*resume.Resume, error) {
			r, err := profileAPI.GetResume(ctx)
			if err != nil {
				if common.Is(err, common.CodeNotFound) {
					return nil, nil
				}
				return nil, err
			}
			return &r, nil
		}, "Failed to load resume."),
	}
}

func (p *ProfilePage) Load(ctx context.Context) (remote.State[profile.Profile], remote.State[*resume.Resume]) {
	return p.profile.Load(ctx), p.resume.Load(ctx)
}

func (p *ProfilePage) LoadProfile(ctx context.Context) remote.State[profile.Profile] {
	return p.profile.Load(ctx)
}

func (p *ProfilePage) LoadResume(ctx context.Context) remote.State[*resume.Resume] {
	return p.resume.Load(ctx)
}

func (p *ProfilePage) ProfileState() remote.State[profile.Profile] {
	return p.profile.Snapshot()
}

func (p *ProfilePage) Close() {
	p.profile.Close()
	p.resume.Close()
}

func (p *ProfilePage) Update(ctx context.Context, update profile.Update) error {
	if update.Empty() {
		return common.NewValidationError("Nothing to update.", nil)
	}
	if update.Name != nil && *update.Name == "" {
		return common.NewValidationError("Name cannot be empty.", map[string]string{"name": "required"})
	}
	if _, err := p.api.UpdateProfile(ctx, update); err != nil {
		return err
	}
	p.profile.Mutate(func(current profile.Profile) profile.Profile {
		return update.Apply(current)
	})
	return nil
}

// UploadResume validates the file locally before uploading it.
func (p *ProfilePage) UploadResume(ctx context.Context, file resume.File) (resume.UploadResult, error) {
	if err := file.Validate(); err != nil {
		return resume.UploadResult{}, err
	}
	result, err := p.api.UploadResume(ctx, file)
	if err != nil {
		return resume.UploadResult{}, err
	}
	p.resume.Load(ctx)
	return result, nil
}

var errNoResume = errors.New("no resume uploaded")

// CurrentResume returns the loaded resume or errNoResume.
func (p *ProfilePage) CurrentResume() (resume.Resume, error) {
	state := p.resume.Snapshot()
	if state.Phase == remote.Failed {
		return resume.Resume{}, state.Err
	}
	if state.Data == nil {
		return resume.Resume{}, errNoResume
	}
	return *state.Data, nil
}

func IsNoResume(err error) bool {
	return errors.Is(err, errNoResume)
}
