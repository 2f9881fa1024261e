package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"hireflow/internal/app"
	"hireflow/internal/common"
	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
	"hireflow/internal/http/response"
	"hireflow/internal/remote"
)

type DashboardDependencies struct {
	Jobs     app.JobAPI
	Reviews  app.ReviewAPI
	Analyzer application.Analyzer
	Mine     app.MyApplicationsAPI
	Catalog  app.CatalogAPI
	Logger   *slog.Logger
}

// DashboardHandler renders the page models as JSON views. Each request
// builds its own page model and closes it when done.
type DashboardHandler struct {
	deps DashboardDependencies
}

func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &DashboardHandler{deps: deps}
}

type recruiterView struct {
	Session *sessionView `json:"session,omitempty"`
	Status  string       `json:"status"`
	Filter  string       `json:"filter,omitempty"`
	Search  string       `json:"search,omitempty"`
	Stats   app.JobStats `json:"stats"`
	Jobs    []job.Job    `json:"jobs"`
}

type applicantView struct {
	application.Application
	Label string `json:"label"`
}

type reviewView struct {
	Session      *sessionView    `json:"session,omitempty"`
	JobID        int64           `json:"job_id"`
	Status       string          `json:"status"`
	Filter       string          `json:"filter,omitempty"`
	Stats        app.ReviewStats `json:"stats"`
	Applications []applicantView `json:"applications"`
}

type studentView struct {
	Session      *sessionView                `json:"session,omitempty"`
	Status       string                      `json:"status"`
	Applications []app.StudentApplicationRow `json:"applications"`
}

type catalogView struct {
	Session *sessionView `json:"session,omitempty"`
	Status  string       `json:"status"`
	Search  string       `json:"search,omitempty"`
	Jobs    []job.Job    `json:"jobs"`
}

func (h *DashboardHandler) Recruiter(w http.ResponseWriter, r *http.Request) {
	var filter job.Status
	if value := r.URL.Query().Get("status"); value != "" {
		parsed, ok := job.ParseStatus(value)
		if !ok {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"status": "status must be active, draft, or closed"}))
			return
		}
		filter = parsed
	}
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	board := app.NewJobBoard(h.deps.Jobs, h.deps.Logger)
	defer board.Close()
	state := board.Load(r.Context())
	if state.Phase == remote.Failed {
		h.failed(w, state.Err, state.Message)
		return
	}
	response.JSON(w, http.StatusOK, recruiterView{
		Session: viewerFrom(r),
		Status:  state.Phase.String(),
		Filter:  string(filter),
		Search:  search,
		Stats:   board.Stats(),
		Jobs:    board.Filter(filter, search),
	})
}

func (h *DashboardHandler) RecruiterJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 3)
	if err != nil {
		response.Error(w, err)
		return
	}
	var filter application.Status
	if value := r.URL.Query().Get("status"); value != "" {
		parsed, ok := application.ParseStatus(value)
		if !ok {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"status": "unknown application status"}))
			return
		}
		filter = parsed
	}

	review := app.NewApplicationReview(h.deps.Reviews, h.deps.Analyzer, jobID, h.deps.Logger)
	defer review.Close()
	state := review.Load(r.Context())
	if state.Phase == remote.Failed {
		h.failed(w, state.Err, state.Message)
		return
	}
	apps := review.Filter(filter)
	views := make([]applicantView, 0, len(apps))
	for _, a := range apps {
		views = append(views, applicantView{Application: a, Label: a.Status.Label(application.AudienceRecruiter)})
	}
	response.JSON(w, http.StatusOK, reviewView{
		Session:      viewerFrom(r),
		JobID:        jobID,
		Status:       state.Phase.String(),
		Filter:       string(filter),
		Stats:        review.Stats(),
		Applications: views,
	})
}

func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	page := app.NewStudentApplications(h.deps.Mine)
	defer page.Close()
	state := page.Load(r.Context())
	if state.Phase == remote.Failed {
		h.failed(w, state.Err, state.Message)
		return
	}
	response.JSON(w, http.StatusOK, studentView{
		Session:      viewerFrom(r),
		Status:       state.Phase.String(),
		Applications: page.Rows(),
	})
}

func (h *DashboardHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	catalog := app.NewJobCatalog(h.deps.Catalog)
	defer catalog.Close()
	state := catalog.Load(r.Context())
	if state.Phase == remote.Failed {
		h.failed(w, state.Err, state.Message)
		return
	}
	response.JSON(w, http.StatusOK, catalogView{
		Session: viewerFrom(r),
		Status:  state.Phase.String(),
		Search:  search,
		Jobs:    catalog.Search(search),
	})
}

// failed answers with the load error, keeping the view's fallback text when
// the server gave none.
func (h *DashboardHandler) failed(w http.ResponseWriter, err error, message string) {
	h.deps.Logger.Warn("view load failed", slog.String("error", err.Error()))
	response.ErrorWithMessage(w, err, message)
}
