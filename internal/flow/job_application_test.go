package flow

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/resume"
)

type fakeSubmitAPI struct {
	err   error
	calls []int64
	// started, when set, is closed once the call begins and the call
	// waits for release before answering.
	started chan struct{}
	release chan struct{}
}

func (f *fakeSubmitAPI) SubmitApplication(ctx context.Context, jobID int64, file resume.File) (application.SubmitResult, error) {
	f.calls = append(f.calls, jobID)
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil {
		return application.SubmitResult{}, f.err
	}
	return application.SubmitResult{Message: "Application submitted successfully", ApplicationID: 41}, nil
}

type staticIdentity struct {
	session auth.Session
	ok      bool
}

func (s *staticIdentity) Current() (auth.Session, bool) {
	return s.session, s.ok
}

func student(subject string) *staticIdentity {
	return &staticIdentity{
		session: auth.Session{Subject: subject, Role: auth.RoleStudent, ExpiresAt: time.Now().Add(time.Hour)},
		ok:      true,
	}
}

var (
	backendJob = job.Job{ID: 5, Title: "Backend Intern"}
	goodResume = resume.File{Name: "cv.pdf", Data: []byte("%PDF-1.7")}
)

func TestSubmitBlockedWithoutResume(t *testing.T) {
	fake := &fakeSubmitAPI{}
	flow := NewJobApplication(fake, student("3"), nil)
	ctx := context.Background()

	if _, err := flow.Submit(ctx); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step from browse, got %v", err)
	}
	if err := flow.Select(backendJob); err != nil {
		t.Fatalf("select: %v", err)
	}
	if flow.CanSubmit() {
		t.Fatalf("submit must be disabled before a resume is attached")
	}
	if _, err := flow.Submit(ctx); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	for _, file := range []resume.File{
		{},
		{Name: "cv.png", Data: []byte("x")},
		{Name: "cv.docx"},
	} {
		if err := flow.Attach(file); err == nil {
			t.Fatalf("expected %q rejected", file.Name)
		}
		if flow.CanSubmit() {
			t.Fatalf("submit must stay disabled after a rejected file")
		}
	}
	if len(fake.calls) != 0 {
		t.Fatalf("no call may reach the server, got %v", fake.calls)
	}
}

func TestSubmitSuccessBlocksResubmission(t *testing.T) {
	fake := &fakeSubmitAPI{}
	flow := NewJobApplication(fake, student("3"), nil)
	ctx := context.Background()

	_ = flow.Select(backendJob)
	if err := flow.Attach(goodResume); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !flow.CanSubmit() {
		t.Fatalf("expected submit enabled")
	}
	result, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ApplicationID != 41 || flow.Step() != StepSubmitted {
		t.Fatalf("unexpected result %+v step %s", result, flow.Step())
	}

	if err := flow.Select(backendJob); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected resubmission blocked, got %v", err)
	}
	if !flow.Applied(backendJob.ID) {
		t.Fatalf("expected job marked applied")
	}
	if err := flow.Select(job.Job{ID: 6, Title: "Other"}); err != nil {
		t.Fatalf("another job must stay open: %v", err)
	}

	other := NewJobApplication(fake, student("4"), nil)
	if err := other.Select(backendJob); err != nil {
		t.Fatalf("another subject must be able to apply: %v", err)
	}
}

func TestSubmitFailureStaysOnCompose(t *testing.T) {
	fake := &fakeSubmitAPI{err: common.NewStatusError(http.StatusBadRequest, "You have already applied for this job")}
	flow := NewJobApplication(fake, student("3"), nil)
	_ = flow.Select(backendJob)
	_ = flow.Attach(goodResume)

	if _, err := flow.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if flow.Step() != StepCompose || !flow.CanSubmit() {
		t.Fatalf("expected to stay on compose with retry allowed")
	}
	if flow.Message() != "You have already applied for this job" {
		t.Fatalf("expected server message, got %q", flow.Message())
	}

	fake.err = errors.New("connection reset")
	_, _ = flow.Submit(context.Background())
	if flow.Message() != "Failed to submit application." {
		t.Fatalf("expected fallback, got %q", flow.Message())
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	fake := &fakeSubmitAPI{}
	flow := NewJobApplication(fake, &staticIdentity{}, nil)
	_ = flow.Select(backendJob)
	_ = flow.Attach(goodResume)
	if _, err := flow.Submit(context.Background()); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("no call expected")
	}
}

func TestBackDropsAttachment(t *testing.T) {
	flow := NewJobApplication(&fakeSubmitAPI{}, student("3"), nil)
	_ = flow.Select(backendJob)
	_ = flow.Attach(goodResume)
	flow.Back()
	_ = flow.Select(backendJob)
	if flow.CanSubmit() {
		t.Fatalf("attachment must not survive leaving compose")
	}
}

func TestStateReadableWhileSubmitting(t *testing.T) {
	fake := &fakeSubmitAPI{started: make(chan struct{}), release: make(chan struct{})}
	flow := NewJobApplication(fake, student("3"), nil)
	ctx := context.Background()
	_ = flow.Select(backendJob)
	_ = flow.Attach(goodResume)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(ctx)
		done <- err
	}()
	<-fake.started

	steps := make(chan ApplyStep, 1)
	go func() { steps <- flow.Step() }()
	select {
	case step := <-steps:
		if step != StepCompose {
			t.Fatalf("expected compose while the call is outstanding, got %s", step)
		}
	case <-time.After(time.Second):
		t.Fatalf("Step() blocked while the submit call was outstanding")
	}
	if !flow.Submitting() || flow.CanSubmit() {
		t.Fatalf("expected submitting state, submitting=%v canSubmit=%v", flow.Submitting(), flow.CanSubmit())
	}
	if _, err := flow.Submit(ctx); !errors.Is(err, ErrInProgress) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}

	close(fake.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if flow.Step() != StepSubmitted || flow.Submitting() {
		t.Fatalf("unexpected state after submit: %s submitting=%v", flow.Step(), flow.Submitting())
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected one call, got %v", fake.calls)
	}
}

func TestBackWhileSubmittingKeepsBrowse(t *testing.T) {
	fake := &fakeSubmitAPI{started: make(chan struct{}), release: make(chan struct{})}
	flow := NewJobApplication(fake, student("3"), nil)
	ctx := context.Background()
	_ = flow.Select(backendJob)
	_ = flow.Attach(goodResume)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(ctx)
		done <- err
	}()
	<-fake.started
	flow.Back()
	close(fake.release)

	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if flow.Step() != StepBrowse {
		t.Fatalf("expected browse after back, got %s", flow.Step())
	}
	if !flow.Applied(backendJob.ID) {
		t.Fatalf("the accepted application must still block resubmission")
	}
}
