package api

import (
	"context"
	"net/http"
	"strings"

	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
	"hireflow/internal/domain/profile"
)

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (auth.Credentials, error) {
	var creds auth.Credentials
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &creds); err != nil {
		return auth.Credentials{}, err
	}
	if creds.AccessToken == "" {
		return auth.Credentials{}, common.NewError(common.CodeServer, "Login response did not include a token.", nil)
	}
	return creds, nil
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

func (c *Client) SendOTP(ctx context.Context, email string) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodPost, "/auth/send-otp", otpRequest{Email: strings.TrimSpace(email)}, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

// VerifyOTP returns the server response as-is. AccessToken is empty when
// the address has no account yet.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (auth.Credentials, error) {
	var creds auth.Credentials
	req := otpRequest{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(code)}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/verify-otp", req, &creds); err != nil {
		return auth.Credentials{}, err
	}
	return creds, nil
}

// ResetPassword authenticates with whatever token the token source
// currently returns.
func (c *Client) ResetPassword(ctx context.Context, password string) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodPost, "/auth/reset-password", passwordRequest{Password: password}, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

func (c *Client) GetProfile(ctx context.Context) (profile.Profile, error) {
	var p profile.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update profile.Update) (Ack, error) {
	var ack Ack
	if err := c.doJSON(ctx, http.MethodPut, "/auth/profile", update, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}
