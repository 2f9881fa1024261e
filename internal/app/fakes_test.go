package app

import (
	"context"
	"sync"

	"hireflow/internal/api"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/profile"
	"hireflow/internal/domain/resume"
)

type fakeAuthAPI struct {
	creds      auth.Credentials
	loginErr   error
	registered []auth.RegisterRequest
}

func (f *fakeAuthAPI) Login(ctx context.Context, req auth.LoginRequest) (auth.Credentials, error) {
	if f.loginErr != nil {
		return auth.Credentials{}, f.loginErr
	}
	return f.creds, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, req auth.RegisterRequest) (api.Ack, error) {
	f.registered = append(f.registered, req)
	return api.Ack{Message: "User registered successfully"}, nil
}

type fakeJobAPI struct {
	mu        sync.Mutex
	jobs      []job.Job
	listErr   error
	deleteErr error
	updates   []job.Patch
	created   []job.Draft
	// deleting, when set, is closed once DeleteJob starts and DeleteJob
	// waits for release before answering.
	deleting chan struct{}
	release  chan struct{}
}

func (f *fakeJobAPI) ListJobs(ctx context.Context) ([]job.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]job.Job(nil), f.jobs...), nil
}

func (f *fakeJobAPI) CreateJob(ctx context.Context, draft job.Draft) (job.CreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, draft)
	id := int64(len(f.jobs) + 100)
	f.jobs = append(f.jobs, job.Job{ID: id, Title: draft.Title, Description: draft.Description, Status: draft.Status})
	return job.CreateResult{Message: "Job created successfully", JobID: id}, nil
}

func (f *fakeJobAPI) UpdateJob(ctx context.Context, id int64, patch job.Patch) (api.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	return api.Ack{Message: "Job updated"}, nil
}

func (f *fakeJobAPI) DeleteJob(ctx context.Context, id int64) (api.Ack, error) {
	if f.deleting != nil {
		close(f.deleting)
		<-f.release
	}
	if f.deleteErr != nil {
		return api.Ack{}, f.deleteErr
	}
	return api.Ack{Message: "Job deleted"}, nil
}

type statusCall struct {
	id     int64
	status application.Status
	reply  chan error
}

type fakeReviewAPI struct {
	apps    []application.Application
	listErr error
	calls   chan statusCall
}

func (f *fakeReviewAPI) ListJobApplications(ctx context.Context, jobID int64) ([]application.Application, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]application.Application(nil), f.apps...), nil
}

// UpdateApplicationStatus hands each call to the test, which decides when
// and how it resolves.
func (f *fakeReviewAPI) UpdateApplicationStatus(ctx context.Context, id int64, status application.Status) (api.Ack, error) {
	if f.calls == nil {
		return api.Ack{Message: "Status updated"}, nil
	}
	call := statusCall{id: id, status: status, reply: make(chan error)}
	f.calls <- call
	if err := <-call.reply; err != nil {
		return api.Ack{}, err
	}
	return api.Ack{Message: "Status updated"}, nil
}

type fakeAnalyzer struct {
	result application.Analysis
	err    error
}

func (f fakeAnalyzer) Analyze(ctx context.Context, applicationID int64) (application.Analysis, error) {
	return f.result, f.err
}

type fakeProfileAPI struct {
	profile  profile.Profile
	resume   *resume.Resume
	updates  []profile.Update
	uploaded []resume.File
}

func (f *fakeProfileAPI) GetProfile(ctx context.Context) (profile.Profile, error) {
	return f.profile, nil
}

func (f *fakeProfileAPI) UpdateProfile(ctx context.Context, update profile.Update) (api.Ack, error) {
	f.updates = append(f.updates, update)
	return api.Ack{Message: "Profile updated"}, nil
}

func (f *fakeProfileAPI) GetResume(ctx context.Context) (resume.Resume, error) {
	if f.resume == nil {
		return resume.Resume{}, common.NewStatusError(404, "No resume found")
	}
	return *f.resume, nil
}

func (f *fakeProfileAPI) UploadResume(ctx context.Context, file resume.File) (resume.UploadResult, error) {
	f.uploaded = append(f.uploaded, file)
	f.resume = &resume.Resume{ID: 9, Filename: file.Name, UploadedAt: "2026-05-04"}
	return resume.UploadResult{Message: "Resume uploaded", ResumeID: 9}, nil
}

type fakeMyApplications struct {
	apps []application.Application
}

func (f fakeMyApplications) MyApplications(ctx context.Context) ([]application.Application, error) {
	return f.apps, nil
}
