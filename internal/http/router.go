package http

import (
	"net/http"
	"strings"
	"time"

	"hireflow/internal/domain/auth"
	"hireflow/internal/guard"
	"hireflow/internal/http/handlers"
	"hireflow/internal/http/metrics"
	httpmw "hireflow/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler      *handlers.AuthHandler
	DashboardHandler *handlers.DashboardHandler
	MetricsHandler   http.Handler
	Sessions         guard.Source
	Limiter          httpmw.Limiter
	Metrics          *metrics.Collector
	RequestTimeout   time.Duration
	LoginPerMin      int
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler

	login     http.Handler
	recruiter httpmw.Middleware
	student   httpmw.Middleware
}

const maxBodyBytes = 1 << 20

const recruiterJobsPrefix = auth.RecruiterHome + "/jobs/"

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.login = httpmw.RateLimit(deps.Limiter, deps.Metrics, loginKey, deps.LoginPerMin, time.Minute)(http.HandlerFunc(deps.AuthHandler.Login))
	r.recruiter = httpmw.Guard(guard.NewGate(deps.Sessions, auth.RoleRecruiter), deps.Metrics)
	r.student = httpmw.Guard(guard.NewGate(deps.Sessions, auth.RoleStudent), deps.Metrics)
	r.handler = httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(deps.Metrics), httpmw.Timeout(deps.RequestTimeout))
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.ServeHTTP(w, req)
			return
		case req.Method == http.MethodGet && path == auth.LoginPath:
			r.deps.AuthHandler.LoginForm(w, req)
			return
		case req.Method == http.MethodPost && path == auth.LoginPath:
			r.login.ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/logout":
			r.deps.AuthHandler.Logout(w, req)
			return
		case req.Method == http.MethodGet && path == auth.RecruiterHome:
			r.recruiter(http.HandlerFunc(r.deps.DashboardHandler.Recruiter)).ServeHTTP(w, req)
			return
		case req.Method == http.MethodGet && strings.HasPrefix(path, recruiterJobsPrefix):
			r.recruiter(http.HandlerFunc(r.deps.DashboardHandler.RecruiterJob)).ServeHTTP(w, req)
			return
		case req.Method == http.MethodGet && path == auth.StudentHome:
			r.student(http.HandlerFunc(r.deps.DashboardHandler.Student)).ServeHTTP(w, req)
			return
		case req.Method == http.MethodGet && path == "/jobs":
			r.student(http.HandlerFunc(r.deps.DashboardHandler.Jobs)).ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func loginKey(req *http.Request) string {
	return "login:ip:" + httpmw.ClientIP(req)
}
