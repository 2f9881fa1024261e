package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"hireflow/internal/app"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/export"
	"hireflow/internal/remote"
)

func (a *App) jobsList(ctx context.Context, args []string) error {
	fs := a.flags("jobs list")
	statusValue := fs.String("status", "", "active, draft or closed (recruiter)")
	term := fs.String("q", "", "search term")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	sess, _ := a.sessions.Current()
	if sess.Role == auth.RoleStudent {
		catalog := app.NewJobCatalog(a.backend)
		defer catalog.Close()
		if state := catalog.Load(ctx); state.Phase == remote.Failed {
			return loadError(state.Err, state.Message)
		}
		a.printJobs(catalog.Search(*term))
		return nil
	}

	var status job.Status
	if *statusValue != "" {
		parsed, ok := job.ParseStatus(*statusValue)
		if !ok {
			return usagef("status must be active, draft, or closed")
		}
		status = parsed
	}
	board := app.NewJobBoard(a.backend, a.logger)
	defer board.Close()
	if state := board.Load(ctx); state.Phase == remote.Failed {
		return loadError(state.Err, state.Message)
	}
	a.printJobs(board.Filter(status, *term))
	return nil
}

func (a *App) jobsShow(ctx context.Context, args []string) error {
	id, _, err := idArgs(args, 1, "job id")
	if err != nil {
		return err
	}
	j, err := a.backend.GetJob(ctx, id)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id:\t%d\n", j.ID)
	fmt.Fprintf(w, "title:\t%s\n", j.Title)
	fmt.Fprintf(w, "company:\t%s\n", j.Company)
	fmt.Fprintf(w, "location:\t%s\n", j.Location)
	fmt.Fprintf(w, "type:\t%s\n", j.Type)
	fmt.Fprintf(w, "experience:\t%s\n", j.Experience)
	fmt.Fprintf(w, "salary:\t%s\n", j.Salary)
	fmt.Fprintf(w, "skills:\t%s\n", strings.Join(j.Skills, ", "))
	fmt.Fprintf(w, "status:\t%s\n", j.EffectiveStatus())
	fmt.Fprintf(w, "deadline:\t%s\n", j.Deadline)
	fmt.Fprintf(w, "applicants:\t%d\n", j.ApplicantsCount)
	_ = w.Flush()
	fmt.Fprintf(a.out, "\n%s\n", j.Description)
	if j.Requirements != "" {
		fmt.Fprintf(a.out, "\nRequirements:\n%s\n", j.Requirements)
	}
	return nil
}

// jobFields binds the editable job fields to fs.
type jobFields struct {
	title, description, requirements, company, location string
	jobType, experience, salary, skills, status, deadline string
}

func bindJobFields(fs *flag.FlagSet) *jobFields {
	f := &jobFields{}
	fs.StringVar(&f.title, "title", "", "job title")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.requirements, "requirements", "", "requirements")
	fs.StringVar(&f.company, "company", "", "company")
	fs.StringVar(&f.location, "location", "", "location")
	fs.StringVar(&f.jobType, "type", "", "full-time, part-time, internship...")
	fs.StringVar(&f.experience, "experience", "", "experience level")
	fs.StringVar(&f.salary, "salary", "", "salary range")
	fs.StringVar(&f.skills, "skills", "", "comma separated skills")
	fs.StringVar(&f.status, "status", "", "active, draft or closed")
	fs.StringVar(&f.deadline, "deadline", "", "application deadline")
	return f
}

func (a *App) jobsCreate(ctx context.Context, args []string) error {
	fs := a.flags("jobs create")
	f := bindJobFields(fs)
	if _, err := parse(fs, args); err != nil {
		return err
	}
	draft := job.Draft{
		Title:        f.title,
		Description:  f.description,
		Requirements: f.requirements,
		Company:      f.company,
		Location:     f.location,
		Type:         f.jobType,
		Experience:   f.experience,
		Salary:       f.salary,
		Skills:       job.ParseSkills(f.skills),
		Status:       job.Status(strings.ToLower(strings.TrimSpace(f.status))),
		Deadline:     f.deadline,
	}
	board := app.NewJobBoard(a.backend, a.logger)
	defer board.Close()
	result, err := board.Create(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", orDefault(result.Message, "Job created successfully"), result.JobID)
	return nil
}

func (a *App) jobsUpdate(ctx context.Context, args []string) error {
	fs := a.flags("jobs update")
	f := bindJobFields(fs)
	rest, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, _, err := idArgs(rest, 1, "job id")
	if err != nil {
		return err
	}
	var patch job.Patch
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			patch.Title = &f.title
		case "description":
			patch.Description = &f.description
		case "requirements":
			patch.Requirements = &f.requirements
		case "company":
			patch.Company = &f.company
		case "location":
			patch.Location = &f.location
		case "type":
			patch.Type = &f.jobType
		case "experience":
			patch.Experience = &f.experience
		case "salary":
			patch.Salary = &f.salary
		case "skills":
			skills := job.ParseSkills(f.skills)
			patch.Skills = &skills
		case "status":
			status := job.Status(strings.ToLower(strings.TrimSpace(f.status)))
			patch.Status = &status
		case "deadline":
			patch.Deadline = &f.deadline
		}
	})
	if patch == (job.Patch{}) {
		return usagef("nothing to update")
	}
	board := app.NewJobBoard(a.backend, a.logger)
	defer board.Close()
	if err := board.Update(ctx, id, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Job %d updated.\n", id)
	return nil
}

func (a *App) jobsDelete(ctx context.Context, args []string) error {
	id, _, err := idArgs(args, 1, "job id")
	if err != nil {
		return err
	}
	board := app.NewJobBoard(a.backend, a.logger)
	defer board.Close()
	if state := board.Load(ctx); state.Phase == remote.Failed {
		return loadError(state.Err, state.Message)
	}
	if err := board.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Job %d deleted.\n", id)
	return nil
}

func (a *App) jobsStatus(ctx context.Context, args []string) error {
	id, rest, err := idArgs(args, 2, "job id and status")
	if err != nil {
		return err
	}
	status, ok := job.ParseStatus(rest[0])
	if !ok {
		return usagef("status must be active, draft, or closed")
	}
	board := app.NewJobBoard(a.backend, a.logger)
	defer board.Close()
	if err := board.SetStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Job %d is now %s.\n", id, status)
	return nil
}

func (a *App) applicationsList(ctx context.Context, args []string) error {
	fs := a.flags("applications list")
	statusValue := fs.String("status", "", "pending, reviewed, shortlisted, accepted or rejected")
	rest, err := parse(fs, args)
	if err != nil {
		return err
	}
	jobID, _, err := idArgs(rest, 1, "job id")
	if err != nil {
		return err
	}
	var status application.Status
	if *statusValue != "" {
		parsed, ok := application.ParseStatus(*statusValue)
		if !ok {
			return usagef("unknown application status %q", *statusValue)
		}
		status = parsed
	}
	review, err := a.loadReview(ctx, jobID)
	if err != nil {
		return err
	}
	defer review.Close()

	stats := review.Stats()
	fmt.Fprintf(a.out, "%d applications", stats.Total)
	if stats.AverageScore > 0 {
		fmt.Fprintf(a.out, ", average score %.1f", stats.AverageScore)
	}
	fmt.Fprintln(a.out)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSCORE\tSTATUS\tAPPLIED")
	for _, item := range review.Filter(status) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Email, score(item.Score), item.Status.Label(application.AudienceRecruiter), orDefault(item.AppliedAt, item.CreatedAt))
	}
	return w.Flush()
}

func (a *App) applicationsStatus(ctx context.Context, args []string) error {
	jobID, rest, err := idArgs(args, 3, "job id, application id and status")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil || id <= 0 {
		return usagef("invalid application id %q", rest[0])
	}
	review, err := a.loadReview(ctx, jobID)
	if err != nil {
		return err
	}
	defer review.Close()
	if err := review.UpdateStatus(ctx, id, rest[1]); err != nil {
		return err
	}
	status, _ := application.ParseStatus(rest[1])
	fmt.Fprintf(a.out, "Application %d is now %s.\n", id, status.Label(application.AudienceRecruiter))
	return nil
}

func (a *App) applicationsAnalyze(ctx context.Context, args []string) error {
	jobID, rest, err := idArgs(args, 2, "job id and application id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil || id <= 0 {
		return usagef("invalid application id %q", rest[0])
	}
	review, err := a.loadReview(ctx, jobID)
	if err != nil {
		return err
	}
	defer review.Close()
	result, err := review.Analyze(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Score: %.1f\n", result.Score)
	if result.Summary != "" {
		fmt.Fprintf(a.out, "%s\n", result.Summary)
	}
	return nil
}

func (a *App) applicationsExport(ctx context.Context, args []string) error {
	fs := a.flags("applications export")
	out := fs.String("out", "", "report path, .xlsx is added when missing")
	rest, err := parse(fs, args)
	if err != nil {
		return err
	}
	jobID, _, err := idArgs(rest, 1, "job id")
	if err != nil {
		return err
	}
	j, err := a.backend.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	review, err := a.loadReview(ctx, jobID)
	if err != nil {
		return err
	}
	defer review.Close()
	path := *out
	if path == "" {
		path = fmt.Sprintf("applicants-job-%d", jobID)
	}
	written, err := export.SaveApplicants(path, j, review.State().Data, a.now())
	if err != nil {
		return common.NewError(common.CodeInternal, "Failed to write the report.", err)
	}
	fmt.Fprintf(a.out, "Report written to %s\n", written)
	return nil
}

func (a *App) loadReview(ctx context.Context, jobID int64) (*app.ApplicationReview, error) {
	review := app.NewApplicationReview(a.backend, a.backend, jobID, a.logger)
	if state := review.Load(ctx); state.Phase == remote.Failed {
		review.Close()
		return nil, loadError(state.Err, state.Message)
	}
	return review, nil
}

func (a *App) printJobs(jobs []job.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(a.out, "No jobs found.")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tSTATUS\tAPPLICANTS")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n", j.ID, j.Title, j.Company, j.Location, j.Type, j.EffectiveStatus(), j.ApplicantsCount)
	}
	_ = w.Flush()
}

// idArgs parses args[0] as an id and returns the remaining want-1 arguments.
func idArgs(args []string, want int, what string) (int64, []string, error) {
	if len(args) != want {
		return 0, nil, usagef("expected %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, nil, usagef("invalid id %q", args[0])
	}
	return id, args[1:], nil
}

func score(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', 1, 64)
}

// loadError carries the text the view already chose for a failed load.
func loadError(err error, message string) error {
	return &viewError{message: message, err: err}
}

type viewError struct {
	message string
	err     error
}

func (e *viewError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *viewError) Unwrap() error { return e.err }
