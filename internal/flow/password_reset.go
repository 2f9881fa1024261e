package flow

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"

	"hireflow/internal/api"
	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
)

type ResetStep string

const (
	StepEmail    ResetStep = "email"
	StepOTP      ResetStep = "otp"
	StepPassword ResetStep = "password"
	StepSuccess  ResetStep = "success"
)

var (
	// ErrWrongStep is returned when an action does not belong to the current step.
	ErrWrongStep = errors.New("action not allowed in the current step")
	// ErrLeftStep is returned when Back or Abandon ran while the call was
	// outstanding. Its result is dropped.
	ErrLeftStep = errors.New("step left before the request finished")
)

const (
	fallbackSendOTP   = "Failed to send OTP. Please try again."
	fallbackVerifyOTP = "Invalid OTP. Please try again."
	fallbackReset     = "Failed to reset password."
)

type ResetAPI interface {
	SendOTP(ctx context.Context, email string) (api.Ack, error)
	VerifyOTP(ctx context.Context, email, code string) (auth.Credentials, error)
	ResetPassword(ctx context.Context, password string) (api.Ack, error)
}

// TemporaryTokens holds the token issued by OTP verification for the
// duration of the flow.
type TemporaryTokens interface {
	UseTemporary(token string)
	DiscardTemporary()
	HasTemporary() bool
}

// PasswordReset ведет пользователя по шагам email → otp → password → success.
// Сетевой вызов идет без блокировки: Pending() показывает, что шаг ждет ответа.
// Ошибка шага оставляет пользователя на том же шаге.
type PasswordReset struct {
	api    ResetAPI
	tokens TemporaryTokens
	logger *slog.Logger

	mu      sync.Mutex
	step    ResetStep
	email   string
	notice  string
	err     error
	message string
	pending bool
	seq     uint64
}

func NewPasswordReset(resetAPI ResetAPI, tokens TemporaryTokens, logger *slog.Logger) *PasswordReset {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordReset{api: resetAPI, tokens: tokens, logger: logger, step: StepEmail}
}

func (p *PasswordReset) Step() ResetStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step
}

// Pending reports whether the current step waits for the server.
func (p *PasswordReset) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

func (p *PasswordReset) Email() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email
}

// Err returns the failure of the last action, or nil.
func (p *PasswordReset) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Message is the text to show for Err.
func (p *PasswordReset) Message() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

// Notice is the server acknowledgement of the last successful action.
func (p *PasswordReset) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

// SubmitEmail requests a one-time code for email.
func (p *PasswordReset) SubmitEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	seq, err := p.begin(StepEmail, func() error {
		if _, err := mail.ParseAddress(email); err != nil {
			return common.NewValidationError("Please enter a valid email address.", map[string]string{"email": "invalid"})
		}
		return nil
	})
	if err != nil {
		return err
	}

	ack, err := p.api.SendOTP(ctx, email)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finish(seq) {
		return ErrLeftStep
	}
	if err != nil {
		return p.fail(err, fallbackSendOTP)
	}
	p.email = email
	p.advance(StepOTP, ack.Message, "OTP sent successfully")
	return nil
}

// SubmitOTP verifies the code. The returned token becomes the active token
// for the password step only.
func (p *PasswordReset) SubmitOTP(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	var email string
	seq, err := p.begin(StepOTP, func() error {
		email = p.email
		if code == "" {
			return common.NewValidationError("Please enter the verification code.", map[string]string{"otp": "required"})
		}
		return nil
	})
	if err != nil {
		return err
	}

	creds, err := p.api.VerifyOTP(ctx, email, code)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finish(seq) {
		return ErrLeftStep
	}
	if err != nil {
		return p.fail(err, fallbackVerifyOTP)
	}
	if creds.AccessToken == "" {
		return p.fail(common.NewError(common.CodeServer, "Invalid OTP response.", nil), "")
	}
	p.tokens.UseTemporary(creds.AccessToken)
	p.advance(StepPassword, creds.Message, "OTP verified")
	return nil
}

// SubmitPassword sets the new password with the verified token.
func (p *PasswordReset) SubmitPassword(ctx context.Context, password, confirm string) error {
	seq, err := p.begin(StepPassword, func() error {
		if password == "" {
			return common.NewValidationError("Password is required", map[string]string{"password": "required"})
		}
		if password != confirm {
			return common.NewValidationError("Passwords do not match", map[string]string{"confirm_password": "must match password"})
		}
		if !p.tokens.HasTemporary() {
			p.step = StepEmail
			return common.NewError(common.CodeUnauthorized, "Your verification has expired. Please request a new code.", nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ack, err := p.api.ResetPassword(ctx, password)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.finish(seq) {
		return ErrLeftStep
	}
	if err != nil {
		return p.fail(err, fallbackReset)
	}
	p.tokens.DiscardTemporary()
	p.advance(StepSuccess, ack.Message, "Password updated successfully")
	p.logger.Info("password reset completed")
	return nil
}

// begin checks that step is current and no call is outstanding, runs the
// local validation and marks the step pending. check runs under the lock.
func (p *PasswordReset) begin(step ResetStep, check func() error) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.step != step {
		return 0, ErrWrongStep
	}
	if p.pending {
		return 0, ErrInProgress
	}
	if err := check(); err != nil {
		return 0, p.fail(err, "")
	}
	p.pending = true
	p.err, p.message = nil, ""
	return p.seq, nil
}

// finish clears the pending mark. It reports false when Back or Abandon
// ran in the meantime. Callers hold the lock.
func (p *PasswordReset) finish(seq uint64) bool {
	if p.seq != seq {
		return false
	}
	p.pending = false
	return true
}

// Back returns to the email step from otp or password. Any temporary
// token is discarded.
func (p *PasswordReset) Back() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.step != StepOTP && p.step != StepPassword {
		return false
	}
	p.tokens.DiscardTemporary()
	p.step = StepEmail
	p.err, p.message = nil, ""
	p.seq++
	p.pending = false
	return true
}

// Abandon leaves the flow from any step.
func (p *PasswordReset) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens.DiscardTemporary()
	p.step = StepEmail
	p.email = ""
	p.notice = ""
	p.err, p.message = nil, ""
	p.seq++
	p.pending = false
}

// LoginPath is the only destination offered once the flow has succeeded.
func (p *PasswordReset) LoginPath() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return auth.LoginPath, p.step == StepSuccess
}

func (p *PasswordReset) advance(step ResetStep, notice, fallback string) {
	p.step = step
	p.err, p.message = nil, ""
	p.notice = notice
	if p.notice == "" {
		p.notice = fallback
	}
}

func (p *PasswordReset) fail(err error, fallback string) error {
	p.err = err
	p.message = common.MessageOr(err, fallback)
	p.logger.Debug("password reset step failed", slog.String("step", string(p.step)), slog.String("error", err.Error()))
	return err
}
