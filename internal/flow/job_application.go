package flow

import (
	"context"
	"log/slog"
	"sync"

	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/resume"
)

type ApplyStep string

const (
	StepBrowse    ApplyStep = "browse"
	StepCompose   ApplyStep = "compose"
	StepSubmitted ApplyStep = "submitted"
)

const fallbackSubmit = "Failed to submit application."

var (
	ErrInProgress     = common.NewError(common.CodeConflict, "Please wait for the current request to finish.", nil)
	ErrAlreadyApplied = common.NewError(common.CodeConflict, "You have already applied for this job.", nil)
	ErrNoResume       = common.NewValidationError("Please upload your resume.", map[string]string{"resume": "file is required"})
	errNotLoggedIn    = common.NewError(common.CodeUnauthorized, "Please log in to apply.", nil)
)

type SubmitAPI interface {
	SubmitApplication(ctx context.Context, jobID int64, file resume.File) (application.SubmitResult, error)
}

// Identity reports the current session.
type Identity interface {
	Current() (auth.Session, bool)
}

type submission struct {
	subject string
	jobID   int64
}

// JobApplication walks a student from a job listing to a submitted
// application. A job can be applied to once per session subject.
// The submit call runs without the lock held, so readers see Submitting
// while it is outstanding.
type JobApplication struct {
	api      SubmitAPI
	identity Identity
	logger   *slog.Logger

	mu        sync.Mutex
	step      ApplyStep
	job       job.Job
	file      *resume.File
	result    application.SubmitResult
	err       error
	message   string
	inFlight  bool
	seq       uint64
	submitted map[submission]bool
}

func NewJobApplication(submitAPI SubmitAPI, identity Identity, logger *slog.Logger) *JobApplication {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobApplication{
		api:       submitAPI,
		identity:  identity,
		logger:    logger,
		step:      StepBrowse,
		submitted: make(map[submission]bool),
	}
}

func (a *JobApplication) Step() ApplyStep {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step
}

// Submitting reports whether a submit call is outstanding.
func (a *JobApplication) Submitting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

func (a *JobApplication) Job() job.Job {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.job
}

func (a *JobApplication) Result() application.SubmitResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

func (a *JobApplication) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *JobApplication) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.message
}

// Select opens the compose step for j. A job already applied to in this
// session cannot be selected again.
func (a *JobApplication) Select(j job.Job) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.step == StepSubmitted {
		a.step = StepBrowse
	}
	if a.appliedLocked(j.ID) {
		return a.fail(ErrAlreadyApplied, "")
	}
	a.job = j
	a.file = nil
	a.err, a.message = nil, ""
	a.step = StepCompose
	a.seq++
	a.inFlight = false
	return nil
}

// Attach validates and holds the resume file for submission.
func (a *JobApplication) Attach(file resume.File) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.step != StepCompose {
		return ErrWrongStep
	}
	if a.inFlight {
		return ErrInProgress
	}
	if err := file.Validate(); err != nil {
		a.file = nil
		return a.fail(err, "")
	}
	a.file = &file
	a.err, a.message = nil, ""
	return nil
}

func (a *JobApplication) CanSubmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.step == StepCompose && a.file != nil && !a.inFlight && !a.appliedLocked(a.job.ID)
}

// Submit sends the application. On failure the flow stays on compose.
// A second Submit while one is outstanding gets ErrInProgress. A result
// that arrives after the user left the compose step is recorded but does
// not move the flow.
func (a *JobApplication) Submit(ctx context.Context) (application.SubmitResult, error) {
	a.mu.Lock()
	if a.step != StepCompose {
		a.mu.Unlock()
		return application.SubmitResult{}, ErrWrongStep
	}
	if a.inFlight {
		a.mu.Unlock()
		return application.SubmitResult{}, ErrInProgress
	}
	if a.file == nil {
		err := a.fail(ErrNoResume, "")
		a.mu.Unlock()
		return application.SubmitResult{}, err
	}
	if a.appliedLocked(a.job.ID) {
		err := a.fail(ErrAlreadyApplied, "")
		a.mu.Unlock()
		return application.SubmitResult{}, err
	}
	sess, ok := a.identity.Current()
	if !ok {
		err := a.fail(errNotLoggedIn, "")
		a.mu.Unlock()
		return application.SubmitResult{}, err
	}
	jobID, file, seq := a.job.ID, *a.file, a.seq
	a.inFlight = true
	a.err, a.message = nil, ""
	a.mu.Unlock()

	result, err := a.api.SubmitApplication(ctx, jobID, file)

	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.seq == seq
	if current {
		a.inFlight = false
	}
	if err != nil {
		if current {
			return application.SubmitResult{}, a.fail(err, fallbackSubmit)
		}
		return application.SubmitResult{}, err
	}
	a.submitted[submission{subject: sess.Subject, jobID: jobID}] = true
	a.logger.Info("application submitted", slog.Int64("job_id", jobID), slog.Int64("application_id", result.ApplicationID))
	if current {
		a.result = result
		a.step = StepSubmitted
		a.err, a.message = nil, ""
	}
	return result, nil
}

// Back returns to the job list, dropping any attached file.
func (a *JobApplication) Back() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.step = StepBrowse
	a.job = job.Job{}
	a.file = nil
	a.err, a.message = nil, ""
	a.seq++
	a.inFlight = false
}

func (a *JobApplication) Applied(jobID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.appliedLocked(jobID)
}

func (a *JobApplication) appliedLocked(jobID int64) bool {
	sess, ok := a.identity.Current()
	if !ok {
		return false
	}
	return a.submitted[submission{subject: sess.Subject, jobID: jobID}]
}

func (a *JobApplication) fail(err error, fallback string) error {
	a.err = err
	a.message = common.MessageOr(err, fallback)
	return err
}
