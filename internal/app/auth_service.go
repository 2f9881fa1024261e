package app

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"hireflow/internal/api"
	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
)

type AuthAPI interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.Credentials, error)
	Register(ctx context.Context, req auth.RegisterRequest) (api.Ack, error)
}

// Sessions is the write side of the session service.
type Sessions interface {
	Establish(ctx context.Context, token string, user *auth.User) (auth.Session, error)
	Clear(ctx context.Context) error
}

// AuthService связывает вход, регистрацию и выход с сервисом сессии.
type AuthService struct {
	api      AuthAPI
	sessions Sessions
	logger   *slog.Logger
}

func NewAuthService(authAPI AuthAPI, sessions Sessions, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{api: authAPI, sessions: sessions, logger: logger}
}

type SignupForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            auth.Role
	Company         string
	Position        string
	Phone           string
	AgreeTerms      bool
}

func (s *AuthService) Login(ctx context.Context, email, password string, role auth.Role) (auth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return auth.Session{}, common.NewValidationError("Please enter your email and password.", nil)
	}
	creds, err := s.api.Login(ctx, auth.LoginRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return auth.Session{}, err
	}
	user := creds.User
	if user == nil {
		user = &auth.User{Email: email, Role: creds.Role}
	}
	return s.sessions.Establish(ctx, creds.AccessToken, user)
}

func (s *AuthService) Signup(ctx context.Context, form SignupForm) (api.Ack, error) {
	fields := map[string]string{}
	if strings.TrimSpace(form.Name) == "" {
		fields["name"] = "name is required"
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(form.Email)); err != nil {
		fields["email"] = "a valid email is required"
	}
	if form.Password == "" {
		fields["password"] = "password is required"
	}
	role, ok := auth.ParseRole(string(form.Role))
	if !ok {
		fields["role"] = "role must be student or recruiter"
	}
	if len(fields) > 0 {
		return api.Ack{}, common.NewValidationError("Please fill in all required fields.", fields)
	}
	if form.Password != form.ConfirmPassword {
		return api.Ack{}, common.NewValidationError("Passwords do not match.", map[string]string{"confirm_password": "must match password"})
	}
	if role == auth.RoleRecruiter && !form.AgreeTerms {
		return api.Ack{}, common.NewValidationError("Please agree to the terms and conditions.", map[string]string{"agree_terms": "required"})
	}
	ack, err := s.api.Register(ctx, auth.RegisterRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Role:     role,
		Company:  strings.TrimSpace(form.Company),
		Position: strings.TrimSpace(form.Position),
		Phone:    strings.TrimSpace(form.Phone),
	})
	if err != nil {
		return api.Ack{}, err
	}
	s.logger.Info("account registered", slog.String("role", string(role)))
	return ack, nil
}

// Logout is client-local.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}
