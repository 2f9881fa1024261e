package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
	"hireflow/internal/http/response"
	"hireflow/internal/session"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string, role auth.Role) (auth.Session, error)
	Logout(ctx context.Context) error
}

type SessionReader interface {
	Snapshot() session.Snapshot
}

type AuthHandler struct {
	auth     Authenticator
	sessions SessionReader
}

func NewAuthHandler(authenticator Authenticator, sessions SessionReader) *AuthHandler {
	return &AuthHandler{auth: authenticator, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type loginResponse struct {
	Subject   string `json:"subject"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
	Redirect  string `json:"redirect"`
}

type loginView struct {
	View          string       `json:"view"`
	Roles         []auth.Role  `json:"roles"`
	Authenticated bool         `json:"authenticated"`
	Session       *sessionView `json:"session,omitempty"`
	Home          string       `json:"home,omitempty"`
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	view := loginView{View: "login", Roles: []auth.Role{auth.RoleStudent, auth.RoleRecruiter}}
	snap := h.sessions.Snapshot()
	if snap.Authenticated {
		view.Authenticated = true
		view.Session = &sessionView{Subject: snap.Session.Subject, Role: string(snap.Session.Role)}
		view.Home = auth.HomeFor(snap.Session.Role)
	}
	response.JSON(w, http.StatusOK, view)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	var role auth.Role
	if value := strings.TrimSpace(req.Role); value != "" {
		parsed, ok := auth.ParseRole(value)
		if !ok {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"role": "role must be student or recruiter"}))
			return
		}
		role = parsed
	}
	sess, err := h.auth.Login(r.Context(), req.Email, req.Password, role)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, loginResponse{
		Subject:   sess.Subject,
		Role:      string(sess.Role),
		ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
		Redirect:  auth.HomeFor(sess.Role),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "logged_out", "redirect": auth.LoginPath})
}
