package cli

import (
	"context"
	"fmt"
	"time"

	"hireflow/internal/app"
	"hireflow/internal/common"
	"hireflow/internal/domain/auth"
	"hireflow/internal/flow"
)

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password, prompted when empty")
	roleValue := fs.String("role", "", "student or recruiter")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	var role auth.Role
	if *roleValue != "" {
		parsed, ok := auth.ParseRole(*roleValue)
		if !ok {
			return usagef("role must be student or recruiter")
		}
		role = parsed
	}
	if *password == "" {
		*password, _ = a.prompt("Password: ")
	}
	sess, err := a.auth.Login(ctx, *email, *password, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (user %s) until %s.\n", sess.Role, sess.Subject, sess.ExpiresAt.Format(time.RFC1123))
	return nil
}

func (a *App) signup(ctx context.Context, args []string) error {
	fs := a.flags("signup")
	var form app.SignupForm
	var roleValue string
	fs.StringVar(&form.Name, "name", "", "full name")
	fs.StringVar(&form.Email, "email", "", "email")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm-password", "", "password again")
	fs.StringVar(&roleValue, "role", "", "student or recruiter")
	fs.StringVar(&form.Company, "company", "", "company (recruiter)")
	fs.StringVar(&form.Position, "position", "", "position (recruiter)")
	fs.StringVar(&form.Phone, "phone", "", "phone")
	fs.BoolVar(&form.AgreeTerms, "agree-terms", false, "accept the terms (recruiter)")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	if roleValue != "" {
		role, ok := auth.ParseRole(roleValue)
		if !ok {
			return usagef("role must be student or recruiter")
		}
		form.Role = role
	}
	ack, err := a.auth.Signup(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(ack.Message, "Registration successful. Please log in."))
	fmt.Fprintf(a.out, "redirect: %s\n", auth.LoginPath)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	fmt.Fprintf(a.out, "redirect: %s\n", auth.LoginPath)
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	snap := a.sessions.Snapshot()
	fmt.Fprintf(a.out, "user:    %s\n", snap.Session.Subject)
	fmt.Fprintf(a.out, "role:    %s\n", snap.Session.Role)
	fmt.Fprintf(a.out, "expires: %s\n", snap.Session.ExpiresAt.Format(time.RFC1123))
	if snap.User != nil {
		if snap.User.Name != "" {
			fmt.Fprintf(a.out, "name:    %s\n", snap.User.Name)
		}
		if snap.User.Email != "" {
			fmt.Fprintf(a.out, "email:   %s\n", snap.User.Email)
		}
	}
	fmt.Fprintf(a.out, "home:    %s\n", auth.HomeFor(snap.Session.Role))
	return nil
}

// forgotPassword walks the reset flow interactively. A failed step is shown
// and asked again; an empty code on the otp step goes back to email.
func (a *App) forgotPassword(ctx context.Context, args []string) error {
	fs := a.flags("forgot-password")
	email := fs.String("email", "", "account email")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	reset := flow.NewPasswordReset(a.backend, a.sessions, a.logger)
	abandoned := common.NewError(common.CodeValidation, "Password reset cancelled.", nil)

	for {
		switch reset.Step() {
		case flow.StepEmail:
			value := *email
			*email = ""
			if value == "" {
				var ok bool
				if value, ok = a.prompt("Email: "); !ok {
					reset.Abandon()
					return abandoned
				}
			}
			if err := reset.SubmitEmail(ctx, value); err != nil {
				fmt.Fprintln(a.errOut, reset.Message())
				continue
			}
			fmt.Fprintln(a.out, reset.Notice())
		case flow.StepOTP:
			code, ok := a.prompt("Code (empty to change email): ")
			if !ok {
				reset.Abandon()
				return abandoned
			}
			if code == "" {
				reset.Back()
				continue
			}
			if err := reset.SubmitOTP(ctx, code); err != nil {
				fmt.Fprintln(a.errOut, reset.Message())
				continue
			}
			fmt.Fprintln(a.out, reset.Notice())
		case flow.StepPassword:
			password, ok := a.prompt("New password: ")
			if !ok {
				reset.Abandon()
				return abandoned
			}
			confirm, ok := a.prompt("Confirm password: ")
			if !ok {
				reset.Abandon()
				return abandoned
			}
			if err := reset.SubmitPassword(ctx, password, confirm); err != nil {
				fmt.Fprintln(a.errOut, reset.Message())
				continue
			}
		case flow.StepSuccess:
			fmt.Fprintln(a.out, reset.Notice())
			if path, ok := reset.LoginPath(); ok {
				fmt.Fprintf(a.out, "redirect: %s\n", path)
			}
			return nil
		}
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
