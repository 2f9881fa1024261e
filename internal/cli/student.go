package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"hireflow/internal/app"
	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/profile"
	"hireflow/internal/domain/resume"
	"hireflow/internal/flow"
	"hireflow/internal/remote"
)

func (a *App) dashboard(ctx context.Context, args []string) error {
	sess, _ := a.sessions.Current()
	return a.showHome(ctx, sess.Role)
}

// showHome renders the landing view of role.
func (a *App) showHome(ctx context.Context, role auth.Role) error {
	switch role {
	case auth.RoleRecruiter:
		board := app.NewJobBoard(a.backend, a.logger)
		defer board.Close()
		if state := board.Load(ctx); state.Phase == remote.Failed {
			return loadError(state.Err, state.Message)
		}
		stats := board.Stats()
		fmt.Fprintln(a.out, "Recruiter dashboard")
		fmt.Fprintf(a.out, "jobs: %d (active %d, draft %d, closed %d), applicants: %d\n\n", stats.Total, stats.Active, stats.Draft, stats.Closed, stats.Applicants)
		a.printJobs(board.Filter("", ""))
		return nil
	case auth.RoleStudent:
		fmt.Fprintln(a.out, "Student dashboard")
		return a.myApplications(ctx, nil)
	default:
		return common.NewError(common.CodeForbidden, "Unknown role.", nil)
	}
}

func (a *App) myApplications(ctx context.Context, args []string) error {
	page := app.NewStudentApplications(a.backend)
	defer page.Close()
	if state := page.Load(ctx); state.Phase == remote.Failed {
		return loadError(state.Err, state.Message)
	}
	rows := page.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "You have not applied to any jobs yet.")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJOB\tAPPLIED\tSTATUS")
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", row.ID, row.JobTitle, row.AppliedAt, row.Label)
	}
	return w.Flush()
}

func (a *App) apply(ctx context.Context, args []string) error {
	fs := a.flags("apply")
	path := fs.String("resume", "", "resume file (pdf, doc or docx)")
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

	apply := flow.NewJobApplication(a.backend, a.sessions, a.logger)
	if err := apply.Select(j); err != nil {
		return err
	}
	if *path == "" {
		return flow.ErrNoResume
	}
	file, err := readResume(*path)
	if err != nil {
		return err
	}
	if err := apply.Attach(file); err != nil {
		return err
	}
	result, err := apply.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (application %d for %q)\n", orDefault(result.Message, "Application submitted successfully"), result.ApplicationID, j.Title)
	return nil
}

func (a *App) profileShow(ctx context.Context, args []string) error {
	page := app.NewProfilePage(a.backend)
	defer page.Close()
	state := page.LoadProfile(ctx)
	if state.Phase == remote.Failed {
		return loadError(state.Err, state.Message)
	}
	p := state.Data
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "name:\t%s\n", p.Name)
	fmt.Fprintf(w, "email:\t%s\n", p.Email)
	fmt.Fprintf(w, "phone:\t%s\n", p.Phone)
	fmt.Fprintf(w, "location:\t%s\n", p.Location)
	fmt.Fprintf(w, "company:\t%s\n", p.Company)
	fmt.Fprintf(w, "position:\t%s\n", p.Position)
	fmt.Fprintf(w, "skills:\t%s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(w, "education:\t%s\n", p.Education)
	fmt.Fprintf(w, "bio:\t%s\n", p.Bio)
	return w.Flush()
}

func (a *App) profileUpdate(ctx context.Context, args []string) error {
	fs := a.flags("profile update")
	values := map[string]*string{}
	for _, name := range []string{"name", "phone", "location", "company", "position", "bio", "skills", "education"} {
		values[name] = fs.String(name, "", name)
	}
	if _, err := parse(fs, args); err != nil {
		return err
	}
	var update profile.Update
	fs.Visit(func(fl *flag.Flag) {
		value := values[fl.Name]
		switch fl.Name {
		case "name":
			trimmed := strings.TrimSpace(*value)
			update.Name = &trimmed
		case "phone":
			update.Phone = value
		case "location":
			update.Location = value
		case "company":
			update.Company = value
		case "position":
			update.Position = value
		case "bio":
			update.Bio = value
		case "skills":
			skills := job.ParseSkills(*value)
			update.Skills = &skills
		case "education":
			update.Education = value
		}
	})
	page := app.NewProfilePage(a.backend)
	defer page.Close()
	if err := page.Update(ctx, update); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated successfully.")
	return nil
}

func (a *App) resumeShow(ctx context.Context, args []string) error {
	page := app.NewProfilePage(a.backend)
	defer page.Close()
	if state := page.LoadResume(ctx); state.Phase == remote.Failed {
		return loadError(state.Err, state.Message)
	}
	r, err := page.CurrentResume()
	if app.IsNoResume(err) {
		fmt.Fprintln(a.out, "No resume uploaded yet. Run: hireflow resume upload PATH")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (uploaded %s)\n", r.Filename, r.UploadedAt)
	if r.AnalysisSummary != "" {
		fmt.Fprintf(a.out, "\n%s\n", r.AnalysisSummary)
	}
	return nil
}

func (a *App) resumeUpload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("expected a resume path")
	}
	file, err := readResume(args[0])
	if err != nil {
		return err
	}
	page := app.NewProfilePage(a.backend)
	defer page.Close()
	result, err := page.UploadResume(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (resume %d)\n", orDefault(result.Message, "Resume uploaded successfully"), result.ResumeID)
	if result.Analysis != nil && result.Analysis.Summary != "" {
		fmt.Fprintf(a.out, "\n%s\n", result.Analysis.Summary)
	}
	return nil
}

// readResume loads a file for upload. The extension is checked before the
// file is read.
func readResume(path string) (resume.File, error) {
	file := resume.File{Name: filepath.Base(path), Data: []byte{0}}
	if err := file.Validate(); err != nil {
		return resume.File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.File{}, common.NewValidationError("Could not read the resume file.", map[string]string{"resume": err.Error()})
	}
	file.Data = data
	return file, nil
}
